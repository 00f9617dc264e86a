package grid

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowgrid/pkg/flow"
)

// Route is the path context a node is reached through.
type Route struct {
	Start       string // First node walked on this route
	StartingRow int    // Row the originating branch begins drawing at
}

// Options configures [Plan].
type Options struct {
	// Logger receives per-node debug output. Defaults to log.Default().
	Logger *log.Logger
}

// planner walks the flow once, route by route, and owns the position map and
// the cursor.
type planner struct {
	flow      *flow.Flow
	columns   map[string]int
	positions *Positions
	cursor    int
	queue     []Route
	logger    *log.Logger

	// sentinelColumns are the columns whose top cell belongs to check answers
	// or confirmation.
	sentinelColumns map[int]bool

	// onCommit, when set, sees every committed position in order.
	onCommit func(id string, pos Position)
}

// Plan validates f and positions every node reachable from its start.
//
// Routes are walked first-in first-out. The first route starts at the start
// node on [TopRow]. A branching point continues its route with its first
// destination and queues one route per further destination i, starting at
// the branch row + i. Each queued route whose first node is still unplaced
// opens a fresh row below everything placed so far. Reaching a node that
// already has a row re-runs [AssignRow] for it; the route ends there unless
// the node moved, in which case the walk carries on so the nodes after it
// follow.
//
// AssignRow decides where a node belongs; the planner then commits the first
// row at or below that decision whose cell in the node's column is free, so
// no two nodes ever share a cell. The top cell of a column that a check
// answers or confirmation page will take is never given to another node.
func Plan(f *flow.Flow, opts Options) (*Layout, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	p := newPlanner(f, opts)
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.layout(), nil
}

func newPlanner(f *flow.Flow, opts Options) *planner {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	columns := ResolveColumns(f)
	sentinelColumns := make(map[int]bool, 2)
	for _, k := range []flow.Kind{flow.KindCheckAnswers, flow.KindConfirmation} {
		if id, ok := f.Sentinel(k); ok {
			if col, reachable := columns[id]; reachable {
				sentinelColumns[col] = true
			}
		}
	}
	return &planner{
		flow:            f,
		columns:         columns,
		positions:       NewPositions(),
		logger:          logger,
		sentinelColumns: sentinelColumns,
	}
}

func (p *planner) run() error {
	start := p.flow.Start()
	p.positions.Discover(start, p.columns[start])
	p.queue = append(p.queue, Route{Start: start, StartingRow: TopRow})

	for first := true; len(p.queue) > 0; first = false {
		r := p.queue[0]
		p.queue = p.queue[1:]

		if pos, _ := p.positions.Get(r.Start); !first && !pos.Placed() {
			p.cursor = max(p.cursor+1, r.StartingRow)
		}
		p.logger.Debug("walking route", "start", r.Start, "starting_row", r.StartingRow, "cursor", p.cursor)
		if err := p.walk(r); err != nil {
			return err
		}
	}
	return nil
}

func (p *planner) walk(r Route) error {
	for id := r.Start; id != ""; {
		column := p.columns[id]
		prev, _ := p.positions.Get(id)

		row, err := AssignRow(id, column, r.StartingRow, p.cursor, p.positions, p.flow)
		if err != nil {
			return err
		}
		row = p.freeRow(id, row, column)
		if prev.Placed() && prev.Row == row {
			return nil
		}

		p.positions.Commit(id, row, column)
		p.cursor = max(p.cursor, row)
		p.logger.Debug("placed node", "id", id, "row", row, "column", column, "moved", prev.Placed())
		if p.onCommit != nil {
			p.onCommit(id, Position{Row: row, Column: column})
		}

		id = p.advance(id, row)
	}
	return nil
}

// freeRow returns the first row at or below row whose cell in column holds
// no node other than id. Sentinels keep the row they were given.
func (p *planner) freeRow(id string, row, column int) int {
	if kind, _ := p.flow.Kind(id); kind.IsSentinel() {
		return row
	}
	for ; ; row++ {
		if row == TopRow && p.sentinelColumns[column] {
			continue
		}
		if !p.occupied(id, row, column) {
			return row
		}
	}
}

func (p *planner) occupied(id string, row, column int) bool {
	for _, other := range p.positions.At(row, column) {
		if other != id {
			return true
		}
	}
	return false
}

// advance returns the node the current route continues with, queueing the
// further destinations of a branching point.
func (p *planner) advance(id string, row int) string {
	dests := p.flow.Destinations(id)
	if len(dests) == 0 {
		return ""
	}
	if kind, _ := p.flow.Kind(id); kind == flow.KindBranch {
		for i, d := range dests[1:] {
			p.positions.Discover(d, p.columns[d])
			p.queue = append(p.queue, Route{Start: d, StartingRow: row + i + 1})
		}
	}
	p.positions.Discover(dests[0], p.columns[dests[0]])
	return dests[0]
}

func (p *planner) layout() *Layout {
	l := &Layout{}
	for _, id := range p.positions.IDs() {
		pos, _ := p.positions.Get(id)
		n, _ := p.flow.Node(id)
		l.Nodes = append(l.Nodes, NodePosition{
			ID:           id,
			Kind:         n.Kind.String(),
			Label:        n.Title,
			Row:          pos.Row,
			Column:       pos.Column,
			Destinations: n.Destinations,
		})
	}
	l.Rows, l.Columns = p.positions.Bounds()

	placed := make(map[string]bool, p.positions.Len())
	for _, id := range p.positions.IDs() {
		placed[id] = true
	}
	for _, id := range p.flow.IDs() {
		if !placed[id] {
			l.Unconnected = append(l.Unconnected, id)
		}
	}
	if len(l.Unconnected) > 0 {
		p.logger.Debug("unconnected nodes", "count", len(l.Unconnected))
	}
	return l
}
