package flow

import (
	"errors"
	"fmt"
	"slices"

	apperr "github.com/matzehuels/flowgrid/pkg/errors"
)

var (
	// ErrDuplicateNodeID is returned by [Flow.AddNode] when a node with the
	// same ID already exists in the flow.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownDestination is returned by [Flow.Validate] when a node leads to
	// an ID that is not part of the flow.
	ErrUnknownDestination = errors.New("unknown destination")

	// ErrMissingStart is returned by [Flow.Validate] when no start node is set
	// or the start node does not exist.
	ErrMissingStart = errors.New("missing start node")

	// ErrDuplicateSentinel is returned by [Flow.Validate] when the flow has more
	// than one check answers or confirmation page.
	ErrDuplicateSentinel = errors.New("duplicate sentinel page")

	// ErrInvalidDestinations is returned by [Flow.Validate] when a node's
	// destination count does not fit its kind: pages lead to at most one node,
	// branching points to at least one, and the confirmation page to none.
	ErrInvalidDestinations = errors.New("invalid destinations for node kind")

	// ErrGraphHasCycle is returned by [Flow.Validate] when a cycle is detected.
	// Cycles are detected using depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("flow contains a cycle")
)

// Kind identifies what a flow node represents.
type Kind int

const (
	// KindPage is an ordinary form page with at most one destination.
	KindPage Kind = iota
	// KindBranch is a branching point that fans out to several destinations.
	KindBranch
	// KindCheckAnswers is the "check your answers" summary page.
	KindCheckAnswers
	// KindConfirmation is the confirmation page that ends the flow.
	KindConfirmation
)

var kindNames = map[Kind]string{
	KindPage:         "page",
	KindBranch:       "branch",
	KindCheckAnswers: "checkanswers",
	KindConfirmation: "confirmation",
}

// String returns the short lowercase name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsSentinel reports whether k is one of the two pages that are always drawn
// on the top row.
func (k Kind) IsSentinel() bool {
	return k == KindCheckAnswers || k == KindConfirmation
}

// ParseKind is the inverse of [Kind.String].
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return KindPage, false
}

// Node is a single element of a form flow.
type Node struct {
	ID           string   // Stable identifier, usually a UUID
	Kind         Kind     // Page, branching point or sentinel
	Title        string   // Display label (optional)
	Destinations []string // Ordered outgoing node IDs
}

// Label returns the title if set, otherwise the ID.
func (n Node) Label() string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}

// Flow is a directed, branching form flow. Nodes keep the order in which they
// were added, and each node's destinations keep their declared order, so every
// traversal over a Flow is deterministic.
//
// The zero value is not usable - use New to create a Flow.
// Flow is not safe for concurrent mutation; concurrent reads are fine.
type Flow struct {
	nodes    map[string]*Node
	order    []string
	incoming map[string][]string
	start    string
}

// New creates an empty flow.
func New() *Flow {
	return &Flow{
		nodes:    make(map[string]*Node),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node. Destinations may reference nodes that are added later;
// [Flow.Validate] checks that they all exist.
func (f *Flow) AddNode(n Node) error {
	if err := apperr.ValidateNodeID(n.ID); err != nil {
		return err
	}
	if _, exists := f.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
	}
	n.Destinations = slices.Clone(n.Destinations)
	f.nodes[n.ID] = &n
	f.order = append(f.order, n.ID)
	for _, d := range n.Destinations {
		f.incoming[d] = append(f.incoming[d], n.ID)
	}
	return nil
}

// SetStart marks the node the form begins with.
func (f *Flow) SetStart(id string) { f.start = id }

// Start returns the ID of the first node of the form.
func (f *Flow) Start() string { return f.start }

// Node returns the node with the given ID.
func (f *Flow) Node(id string) (Node, bool) {
	n, ok := f.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Kind returns the kind of the node, and false if the node does not exist.
func (f *Flow) Kind(id string) (Kind, bool) {
	n, ok := f.nodes[id]
	if !ok {
		return KindPage, false
	}
	return n.Kind, true
}

// Destinations returns the ordered outgoing node IDs. The returned slice
// should not be modified.
func (f *Flow) Destinations(id string) []string {
	if n, ok := f.nodes[id]; ok {
		return n.Destinations
	}
	return nil
}

// Predecessors returns the IDs of nodes leading to id, in the order those
// nodes were added.
func (f *Flow) Predecessors(id string) []string { return f.incoming[id] }

// IDs returns all node IDs in insertion order.
func (f *Flow) IDs() []string { return slices.Clone(f.order) }

// Len returns the number of nodes.
func (f *Flow) Len() int { return len(f.order) }

// Sentinel returns the ID of the single node of kind k, if present.
func (f *Flow) Sentinel(k Kind) (string, bool) {
	for _, id := range f.order {
		if f.nodes[id].Kind == k {
			return id, true
		}
	}
	return "", false
}

// Reachable returns the IDs reachable from the start node, in breadth-first
// order following declared destination order.
func (f *Flow) Reachable() []string {
	if _, ok := f.nodes[f.start]; !ok {
		return nil
	}
	seen := map[string]bool{f.start: true}
	queue := []string{f.start}
	var out []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, id)
		for _, d := range f.Destinations(id) {
			if _, ok := f.nodes[d]; ok && !seen[d] {
				seen[d] = true
				queue = append(queue, d)
			}
		}
	}
	return out
}

// Validate checks flow integrity and returns nil if valid. All failures are
// coded INVALID_FLOW and wrap one of the sentinel errors of this package.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (f *Flow) Validate() error {
	if _, ok := f.nodes[f.start]; !ok {
		return invalid(ErrMissingStart, "start node %q", f.start)
	}
	if err := f.validateNodes(); err != nil {
		return err
	}
	return f.detectCycles()
}

func (f *Flow) validateNodes() error {
	sentinels := map[Kind]string{}
	for _, id := range f.order {
		n := f.nodes[id]
		for _, d := range n.Destinations {
			if _, ok := f.nodes[d]; !ok {
				return invalid(ErrUnknownDestination, "%s leads to %q", id, d)
			}
		}
		if n.Kind.IsSentinel() {
			if prev, dup := sentinels[n.Kind]; dup {
				return invalid(ErrDuplicateSentinel, "%s pages %s and %s", n.Kind, prev, id)
			}
			sentinels[n.Kind] = id
		}
		switch {
		case n.Kind == KindBranch && len(n.Destinations) == 0,
			n.Kind == KindPage && len(n.Destinations) > 1,
			n.Kind == KindCheckAnswers && len(n.Destinations) > 1,
			n.Kind == KindConfirmation && len(n.Destinations) > 0:
			return invalid(ErrInvalidDestinations, "%s %s has %d destinations", n.Kind, id, len(n.Destinations))
		}
	}
	return nil
}

func (f *Flow) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(f.nodes))
	var cycleAt string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		for _, next := range f.nodes[id].Destinations {
			switch color[next] {
			case white:
				if dfs(next) {
					return true
				}
			case gray:
				cycleAt = next
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range f.order {
		if color[id] == white && dfs(id) {
			return invalid(ErrGraphHasCycle, "cycle through %s", cycleAt)
		}
	}
	return nil
}

func invalid(sentinel error, format string, args ...any) error {
	return apperr.Wrap(apperr.ErrCodeInvalidFlow, sentinel, format, args...)
}
