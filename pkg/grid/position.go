package grid

import "slices"

const (
	// RowUnset marks a position whose node has been discovered but not yet
	// given a row.
	RowUnset = -1

	// TopRow is the row sentinels and the first top-level route are pinned to.
	TopRow = 0
)

// Position is the grid cell of one node.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Unplaced returns a placeholder position in the given column.
func Unplaced(column int) Position { return Position{Row: RowUnset, Column: column} }

// Placed reports whether a row has been committed.
func (p Position) Placed() bool { return p.Row != RowUnset }

// PositionReader is the read side of a position map, as used by [AssignRow].
type PositionReader interface {
	// Get returns the position recorded for id, placed or not.
	Get(id string) (Position, bool)
	// IDs returns recorded IDs in insertion (traversal) order.
	IDs() []string
}

// Positions maps node IDs to grid positions and remembers the order in which
// nodes were first recorded. Only the planner writes to it.
//
// The zero value is not usable - use NewPositions.
type Positions struct {
	order []string
	byID  map[string]Position
}

// NewPositions creates an empty position map.
func NewPositions() *Positions {
	return &Positions{byID: make(map[string]Position)}
}

// Get returns the position of id.
func (p *Positions) Get(id string) (Position, bool) {
	pos, ok := p.byID[id]
	return pos, ok
}

// IDs returns the recorded IDs in insertion order. The returned slice should
// not be modified.
func (p *Positions) IDs() []string { return p.order }

// Len returns the number of recorded nodes, placed or not.
func (p *Positions) Len() int { return len(p.order) }

// Discover records a placeholder for id in column unless id is already known.
// It reports whether a new entry was created.
func (p *Positions) Discover(id string, column int) bool {
	if _, ok := p.byID[id]; ok {
		return false
	}
	p.order = append(p.order, id)
	p.byID[id] = Unplaced(column)
	return true
}

// Commit writes the final row and column for id.
func (p *Positions) Commit(id string, row, column int) {
	if _, ok := p.byID[id]; !ok {
		p.order = append(p.order, id)
	}
	p.byID[id] = Position{Row: row, Column: column}
}

// At returns the IDs of placed nodes occupying the cell, in insertion order.
func (p *Positions) At(row, column int) []string {
	var ids []string
	for _, id := range p.order {
		if pos := p.byID[id]; pos.Row == row && pos.Column == column {
			ids = append(ids, id)
		}
	}
	return ids
}

// Bounds returns one past the largest placed row and column, i.e. the size of
// the grid. An empty map has bounds (0, 0).
func (p *Positions) Bounds() (rows, columns int) {
	for _, pos := range p.byID {
		if !pos.Placed() {
			continue
		}
		rows = max(rows, pos.Row+1)
		columns = max(columns, pos.Column+1)
	}
	return rows, columns
}

// Clone returns an independent copy.
func (p *Positions) Clone() *Positions {
	c := &Positions{
		order: slices.Clone(p.order),
		byID:  make(map[string]Position, len(p.byID)),
	}
	for id, pos := range p.byID {
		c.byID[id] = pos
	}
	return c
}
