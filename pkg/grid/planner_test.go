package grid

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperr "github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/flow"
)

func startFlow(t *testing.T, start string, nodes ...flow.Node) *flow.Flow {
	t.Helper()
	f := buildFlow(t, append(nodes, sentinels()...)...)
	f.SetStart(start)
	return f
}

// branchingFlow has a three-way branch whose last route contains a second
// branch:
//
//	s → n → b1 ─┬─ a1 → a2 ─┐
//	            ├─ c1 ──────┤
//	            └─ d1 → b2 ─┬─ e1 ─┤→ cya → confirmation
//	                        └─ e2 ─┘
func branchingFlow(t *testing.T) *flow.Flow {
	return startFlow(t, "s",
		page("s", "n"),
		page("n", "b1"),
		branch("b1", "a1", "c1", "d1"),
		page("a1", "a2"),
		page("a2", "cya"),
		page("c1", "cya"),
		page("d1", "b2"),
		branch("b2", "e1", "e2"),
		page("e1", "cya"),
		page("e2", "cya"),
	)
}

func cells(l *Layout) map[string]Position {
	out := make(map[string]Position, len(l.Nodes))
	for _, n := range l.Nodes {
		out[n.ID] = Position{Row: n.Row, Column: n.Column}
	}
	return out
}

func checkInvariants(t *testing.T, l *Layout) {
	t.Helper()
	seen := map[Position]string{}
	for _, n := range l.Nodes {
		p := Position{Row: n.Row, Column: n.Column}
		if !p.Placed() {
			t.Errorf("%s left unplaced", n.ID)
		}
		if other, dup := seen[p]; dup {
			t.Errorf("%s and %s share cell %+v", other, n.ID, p)
		}
		seen[p] = n.ID
		if (n.Kind == flow.KindCheckAnswers.String() || n.Kind == flow.KindConfirmation.String()) && n.Row != TopRow {
			t.Errorf("sentinel %s on row %d", n.ID, n.Row)
		}
	}
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name        string
		build       func(t *testing.T) *flow.Flow
		want        map[string]Position
		wantRows    int
		wantColumns int
	}{
		{
			name:  "branching routes fan out below the first route",
			build: branchingFlow,
			want: map[string]Position{
				"s": {0, 0}, "n": {0, 1}, "b1": {0, 2},
				"a1": {0, 3}, "a2": {0, 4}, "cya": {0, 6}, "confirmation": {0, 7},
				"c1": {1, 3},
				"d1": {2, 3}, "b2": {2, 4}, "e1": {2, 5},
				"e2": {3, 5},
			},
			wantRows:    4,
			wantColumns: 8,
		},
		{
			name: "top row branch reserves rows in its column",
			build: func(t *testing.T) *flow.Flow {
				return startFlow(t, "s",
					page("s", "b1"),
					branch("b1", "p", "q"),
					page("p", "b2"),
					branch("b2", "x", "y", "z"),
					page("x", "cya"), page("y", "cya"), page("z", "cya"),
					page("q", "r"),
					page("r", "cya"),
				)
			},
			want: map[string]Position{
				"s": {0, 0}, "b1": {0, 1}, "p": {0, 2}, "b2": {0, 3}, "x": {0, 4},
				"cya": {0, 5}, "confirmation": {0, 6},
				"q": {1, 2}, "r": {4, 3},
				"y": {5, 4},
				"z": {6, 4},
			},
			wantRows:    7,
			wantColumns: 7,
		},
		{
			name: "reconverging node follows the deeper route",
			build: func(t *testing.T) *flow.Flow {
				return startFlow(t, "s",
					page("s", "b1"),
					branch("b1", "a", "b", "c"),
					page("a", "cya"),
					page("b", "m"),
					page("c", "m"),
					page("m", "cya"),
				)
			},
			want: map[string]Position{
				"s": {0, 0}, "b1": {0, 1}, "a": {0, 2}, "cya": {0, 4}, "confirmation": {0, 5},
				"b": {1, 2},
				"c": {2, 2}, "m": {2, 3},
			},
			wantRows:    3,
			wantColumns: 6,
		},
		{
			name: "join on the top row stays pinned",
			build: func(t *testing.T) *flow.Flow {
				return startFlow(t, "s",
					page("s", "b1"),
					branch("b1", "a", "b"),
					page("a", "j"),
					page("b", "j"),
					page("j", "cya"),
				)
			},
			want: map[string]Position{
				"s": {0, 0}, "b1": {0, 1}, "a": {0, 2}, "j": {0, 3},
				"cya": {0, 4}, "confirmation": {0, 5},
				"b": {1, 2},
			},
			wantRows:    2,
			wantColumns: 6,
		},
		{
			name: "moved node skips an occupied cell",
			build: func(t *testing.T) *flow.Flow {
				return startFlow(t, "n0",
					branch("n0", "cya", "n2", "n1", "n6"),
					page("n1", "n9"),
					page("n2", "n8"),
					page("n6", "n7"),
					branch("n7", "n9", "n10"),
					page("n8", "n10"),
					page("n9", "cya"),
					page("n10", "cya"),
				)
			},
			want: map[string]Position{
				"n0": {0, 0}, "cya": {0, 4}, "confirmation": {0, 5},
				"n2": {1, 1}, "n8": {1, 2},
				"n1": {2, 1},
				"n6": {3, 1}, "n7": {3, 2}, "n9": {3, 3},
				"n10": {4, 3},
			},
			wantRows:    5,
			wantColumns: 6,
		},
		{
			name: "dead end on the top row leaves sentinel cells free",
			build: func(t *testing.T) *flow.Flow {
				return startFlow(t, "s",
					page("s", "b"),
					branch("b", "p1", "q"),
					page("p1", "p2"),
					page("p2", "p3"),
					page("p3"),
					page("q", "cya"),
				)
			},
			want: map[string]Position{
				"s": {0, 0}, "b": {0, 1}, "p1": {0, 2}, "cya": {0, 3}, "confirmation": {0, 4},
				"p2": {1, 3}, "p3": {1, 4},
				"q": {2, 2},
			},
			wantRows:    3,
			wantColumns: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Plan(tt.build(t), Options{})
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, cells(l)); diff != "" {
				t.Errorf("positions mismatch (-want +got):\n%s", diff)
			}
			if l.Rows != tt.wantRows || l.Columns != tt.wantColumns {
				t.Errorf("bounds = %dx%d, want %dx%d", l.Rows, l.Columns, tt.wantRows, tt.wantColumns)
			}
			checkInvariants(t, l)
		})
	}
}

func TestPlanTraversalOrder(t *testing.T) {
	l, err := Plan(branchingFlow(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, n := range l.Nodes {
		got = append(got, n.ID)
	}
	want := []string{"s", "n", "b1", "c1", "d1", "a1", "a2", "cya", "confirmation", "b2", "e2", "e1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("node order mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanDeterministic(t *testing.T) {
	first, err := Plan(branchingFlow(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := Plan(branchingFlow(t), Options{})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestPlanUnconnected(t *testing.T) {
	f := startFlow(t, "s",
		page("s", "cya"),
		page("orphan", "cya"),
	)
	l, err := Plan(f, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"orphan"}, l.Unconnected); diff != "" {
		t.Errorf("Unconnected mismatch (-want +got):\n%s", diff)
	}
	if _, ok := l.Node("orphan"); ok {
		t.Error("orphan should not be placed")
	}
}

func TestPlanRejectsInvalidFlow(t *testing.T) {
	f := startFlow(t, "s",
		page("s", "a"),
		page("a", "b"),
		page("b", "s"),
	)
	_, err := Plan(f, Options{})
	if !apperr.Is(err, apperr.ErrCodeInvalidFlow) {
		t.Fatalf("Plan() error = %v, want INVALID_FLOW", err)
	}
	if !errors.Is(err, flow.ErrGraphHasCycle) {
		t.Errorf("Plan() error = %v, want ErrGraphHasCycle", err)
	}
}

// randomFlow builds an acyclic flow of pages and branching points in which
// every edge points to a later node or to check answers. Some pages are
// dead ends.
func randomFlow(t *testing.T, rng *rand.Rand) *flow.Flow {
	n := 2 + rng.IntN(12)
	id := func(i int) string {
		if i >= n {
			return "cya"
		}
		return fmt.Sprintf("n%d", i)
	}

	nodes := make([]flow.Node, 0, n)
	for i := 0; i < n; i++ {
		later := n - i
		switch r := rng.IntN(10); {
		case r < 3 && later >= 2:
			picks := rng.Perm(later)[:2+rng.IntN(min(3, later-1))]
			dests := make([]string, len(picks))
			for j, p := range picks {
				dests[j] = id(i + 1 + p)
			}
			nodes = append(nodes, branch(id(i), dests...))
		case r == 3 && i > 0:
			nodes = append(nodes, page(id(i)))
		default:
			nodes = append(nodes, page(id(i), id(i+1+rng.IntN(later))))
		}
	}
	return startFlow(t, "n0", nodes...)
}

func TestPlanGeneratedFlows(t *testing.T) {
	for seed := uint64(0); seed < 500; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			f := randomFlow(t, rand.New(rand.NewPCG(seed, 0)))
			if err := f.Validate(); err != nil {
				t.Fatalf("generated flow is invalid: %v", err)
			}

			p := newPlanner(f, Options{})
			rows := map[string]int{}
			p.onCommit = func(id string, pos Position) {
				if prev, ok := rows[id]; ok && pos.Row < prev {
					t.Errorf("%s moved up from row %d to %d", id, prev, pos.Row)
				}
				rows[id] = pos.Row
			}
			if err := p.run(); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			l := p.layout()

			checkInvariants(t, l)
			reachable := f.Reachable()
			if len(l.Nodes) != len(reachable) {
				t.Errorf("placed %d nodes, want %d", len(l.Nodes), len(reachable))
			}
			for _, id := range reachable {
				if _, ok := l.Node(id); !ok {
					t.Errorf("reachable node %s not placed", id)
				}
			}
		})
	}
}
