package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	apperr "github.com/matzehuels/flowgrid/pkg/errors"
)

// Item types used by the form builder's service metadata.
const (
	TypeFlowPage   = "flow.page"
	TypeFlowBranch = "flow.branch"

	TypePageCheckAnswers = "page.checkanswers"
	TypePageConfirmation = "page.confirmation"
)

// Service is the subset of a form service metadata document that describes its
// pages and how they connect.
type Service struct {
	ID        string              `json:"service_id,omitempty"`
	Name      string              `json:"service_name,omitempty"`
	StartPage string              `json:"start_page,omitempty"`
	Pages     []Page              `json:"pages"`
	Flow      map[string]FlowItem `json:"flow"`
	FlowOrder []string            `json:"-"` // Key order of Flow as decoded
}

// Page is a page entry of the service metadata.
type Page struct {
	ID      string `json:"_id"`
	Type    string `json:"_type"`
	URL     string `json:"url,omitempty"`
	Heading string `json:"heading,omitempty"`
}

// FlowItem describes where a page or branching point leads.
type FlowItem struct {
	Type  string `json:"_type"`
	Title string `json:"title,omitempty"`
	Next  Next   `json:"next"`
}

// Next holds the default destination and, for branching points, the
// conditional destinations.
type Next struct {
	Default      string        `json:"default,omitempty"`
	Conditionals []Conditional `json:"conditionals,omitempty"`
}

// Conditional is one branch of a branching point.
type Conditional struct {
	Type string `json:"_type,omitempty"`
	Next string `json:"next"`
}

// Destinations returns the item's ordered destinations: conditionals first in
// document order, then the default. Empty IDs are skipped.
func (it FlowItem) Destinations() []string {
	var out []string
	for _, c := range it.Next.Conditionals {
		if c.Next != "" {
			out = append(out, c.Next)
		}
	}
	if it.Next.Default != "" {
		out = append(out, it.Next.Default)
	}
	return out
}

// UnmarshalJSON records the key order of the "flow" object so that nodes are
// added to the [Flow] in document order rather than map order.
func (s *Service) UnmarshalJSON(data []byte) error {
	type plain Service
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw struct {
		Flow json.RawMessage `json:"flow"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	keys, err := objectKeys(raw.Flow)
	if err != nil {
		return err
	}
	*s = Service(p)
	s.FlowOrder = keys
	return nil
}

func objectKeys(data json.RawMessage) ([]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected flow key %v", tok)
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// FromService builds a validated Flow from service metadata.
//
// The start node is StartPage when set, otherwise the first page. Flow items
// whose page is typed [TypePageCheckAnswers] or [TypePageConfirmation] become
// the sentinel kinds; [TypeFlowBranch] items become branching points.
func FromService(s Service) (*Flow, error) {
	pageTypes := make(map[string]string, len(s.Pages))
	titles := make(map[string]string, len(s.Pages))
	for _, p := range s.Pages {
		pageTypes[p.ID] = p.Type
		titles[p.ID] = p.Heading
	}

	f := New()
	for _, id := range s.orderedFlowIDs() {
		item := s.Flow[id]
		kind, err := itemKind(item.Type, pageTypes[id])
		if err != nil {
			return nil, fmt.Errorf("flow item %s: %w", id, err)
		}
		title := item.Title
		if title == "" {
			title = titles[id]
		}
		n := Node{ID: id, Kind: kind, Title: title, Destinations: item.Destinations()}
		if err := f.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", id, err)
		}
	}

	start := s.StartPage
	if start == "" && len(s.Pages) > 0 {
		start = s.Pages[0].ID
	}
	f.SetStart(start)

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (s Service) orderedFlowIDs() []string {
	if len(s.FlowOrder) == len(s.Flow) {
		return s.FlowOrder
	}
	// Built in code rather than decoded: fall back to page order, then any
	// remaining flow items.
	seen := make(map[string]bool, len(s.Flow))
	var ids []string
	for _, p := range s.Pages {
		if _, ok := s.Flow[p.ID]; ok && !seen[p.ID] {
			seen[p.ID] = true
			ids = append(ids, p.ID)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(s.Flow)) {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func itemKind(flowType, pageType string) (Kind, error) {
	switch flowType {
	case TypeFlowBranch:
		return KindBranch, nil
	case TypeFlowPage, "":
		switch pageType {
		case TypePageCheckAnswers:
			return KindCheckAnswers, nil
		case TypePageConfirmation:
			return KindConfirmation, nil
		}
		return KindPage, nil
	default:
		return KindPage, apperr.New(apperr.ErrCodeInvalidFormat, "unsupported flow item type %q", flowType)
	}
}

// Unmarshal decodes service metadata JSON.
func Unmarshal(data []byte) (Service, error) {
	var s Service
	if err := json.Unmarshal(data, &s); err != nil {
		return Service{}, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "decode service metadata")
	}
	return s, nil
}

// Read decodes service metadata from r and builds the flow.
func Read(r io.Reader) (*Flow, Service, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Service{}, err
	}
	s, err := Unmarshal(data)
	if err != nil {
		return nil, Service{}, err
	}
	f, err := FromService(s)
	if err != nil {
		return nil, Service{}, err
	}
	return f, s, nil
}

// ReadFile reads a service metadata JSON file and builds the flow.
func ReadFile(path string) (*Flow, Service, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, Service{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()
	return Read(fh)
}
