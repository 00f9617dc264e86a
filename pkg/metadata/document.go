package metadata

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/flowgrid/pkg/flow"
)

// Document is one metadata document as decoded from JSON, YAML or TOML.
type Document map[string]any

// ID returns the document's "_id", or "" when it is missing or not a string.
func (d Document) ID() string {
	id, _ := d["_id"].(string)
	return id
}

// Type returns the document's "_type", or "".
func (d Document) Type() string {
	t, _ := d["_type"].(string)
	return t
}

// JSON encodes the document.
func (d Document) JSON() ([]byte, error) {
	return json.Marshal(d)
}

// Service decodes the document as service metadata.
func (d Document) Service() (flow.Service, error) {
	data, err := d.JSON()
	if err != nil {
		return flow.Service{}, fmt.Errorf("encode %s: %w", d.ID(), err)
	}
	return flow.Unmarshal(data)
}

func (d Document) clone() Document {
	return cloneValue(map[string]any(d)).(map[string]any)
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = cloneValue(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}
