package grid

import (
	"encoding/json"
	"fmt"
	"os"

	apperr "github.com/matzehuels/flowgrid/pkg/errors"
)

// =============================================================================
// Layout - Serialized Grid
// =============================================================================

// Layout is the finished position map in traversal order, ready for a
// renderer. It carries each node's destinations so that diagrams can be drawn
// from a layout file without the original service metadata.
type Layout struct {
	Service     string         `json:"service,omitempty" bson:"service,omitempty"`
	Nodes       []NodePosition `json:"nodes" bson:"nodes"`
	Rows        int            `json:"rows" bson:"rows"`       // Number of rows in use
	Columns     int            `json:"columns" bson:"columns"` // Number of columns in use
	Unconnected []string       `json:"unconnected,omitempty" bson:"unconnected,omitempty"`
}

// NodePosition is one placed node.
type NodePosition struct {
	ID           string   `json:"id" bson:"id"`
	Kind         string   `json:"kind" bson:"kind"`
	Label        string   `json:"label,omitempty" bson:"label,omitempty"`
	Row          int      `json:"row" bson:"row"`
	Column       int      `json:"column" bson:"column"`
	Destinations []string `json:"destinations,omitempty" bson:"destinations,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n NodePosition) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Positions rebuilds a position map from the layout.
func (l *Layout) Positions() *Positions {
	p := NewPositions()
	for _, n := range l.Nodes {
		p.Commit(n.ID, n.Row, n.Column)
	}
	return p
}

// Node returns the placed node with the given ID.
func (l *Layout) Node(id string) (NodePosition, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodePosition{}, false
}

// Grid returns the node IDs indexed by [row][column]. Empty cells are "".
// When two nodes share a cell the one placed last wins.
func (l *Layout) Grid() [][]string {
	cells := make([][]string, l.Rows)
	for r := range cells {
		cells[r] = make([]string, l.Columns)
	}
	for _, n := range l.Nodes {
		if n.Row < 0 || n.Row >= l.Rows || n.Column < 0 || n.Column >= l.Columns {
			continue
		}
		cells[n.Row][n.Column] = n.ID
	}
	return cells
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout and checks that every
// node has a non-negative cell inside the declared bounds.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	for _, n := range l.Nodes {
		if n.Row < 0 || n.Column < 0 || n.Row >= l.Rows || n.Column >= l.Columns {
			return Layout{}, apperr.New(apperr.ErrCodeInvalidFormat,
				"node %s at (%d, %d) outside %dx%d grid", n.ID, n.Row, n.Column, l.Rows, l.Columns)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
