package grid

import "github.com/matzehuels/flowgrid/pkg/flow"

// fanOut is a branching point whose destinations are drawn beneath it.
type fanOut struct {
	id           string
	row          int
	destinations int
}

// reservedUntil is the first row below the space kept free for the branch:
// one row per destination plus a spacer.
func (b fanOut) reservedUntil() int {
	return b.row + b.destinations + 1
}

// branchAbove finds the branching point drawn on the top row of column, the
// one whose connectors run down that column. Entries are scanned from the
// most recently recorded backwards, so when several match the one nearest in
// traversal order wins.
func branchAbove(id string, column int, positions PositionReader, f FlowReader) (fanOut, bool) {
	ids := positions.IDs()
	for i := len(ids) - 1; i >= 0; i-- {
		other := ids[i]
		if other == id {
			continue
		}
		pos, ok := positions.Get(other)
		if !ok || pos.Row != TopRow || pos.Column != column {
			continue
		}
		if kind, ok := f.Kind(other); !ok || kind != flow.KindBranch {
			continue
		}
		return fanOut{id: other, row: pos.Row, destinations: len(f.Destinations(other))}, true
	}
	return fanOut{}, false
}
