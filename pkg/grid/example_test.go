package grid_test

import (
	"fmt"

	"github.com/matzehuels/flowgrid/pkg/flow"
	"github.com/matzehuels/flowgrid/pkg/grid"
)

func ExampleAssignRow() {
	// A branching point with two destinations sits on the top row of column 3.
	f := flow.New()
	_ = f.AddNode(flow.Node{ID: "branch", Kind: flow.KindBranch, Destinations: []string{"yes", "no"}})
	_ = f.AddNode(flow.Node{ID: "yes", Kind: flow.KindPage})
	_ = f.AddNode(flow.Node{ID: "no", Kind: flow.KindPage})
	_ = f.AddNode(flow.Node{ID: "later", Kind: flow.KindPage})

	positions := grid.NewPositions()
	positions.Commit("branch", 0, 3)

	// A later page in the same column is kept below the branch's fan-out.
	row, _ := grid.AssignRow("later", 3, 1, 1, positions, f)
	fmt.Println("row:", row)
	// Output:
	// row: 3
}

func ExamplePlan() {
	f := flow.New()
	_ = f.AddNode(flow.Node{ID: "start", Kind: flow.KindPage, Destinations: []string{"branch"}})
	_ = f.AddNode(flow.Node{ID: "branch", Kind: flow.KindBranch, Destinations: []string{"yes", "no"}})
	_ = f.AddNode(flow.Node{ID: "yes", Kind: flow.KindPage, Destinations: []string{"cya"}})
	_ = f.AddNode(flow.Node{ID: "no", Kind: flow.KindPage, Destinations: []string{"cya"}})
	_ = f.AddNode(flow.Node{ID: "cya", Kind: flow.KindCheckAnswers, Destinations: []string{"done"}})
	_ = f.AddNode(flow.Node{ID: "done", Kind: flow.KindConfirmation})
	f.SetStart("start")

	layout, err := grid.Plan(f, grid.Options{})
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, n := range layout.Nodes {
		fmt.Printf("%s (%d, %d)\n", n.ID, n.Row, n.Column)
	}
	// Output:
	// start (0, 0)
	// branch (0, 1)
	// no (1, 2)
	// yes (0, 2)
	// cya (0, 3)
	// done (0, 4)
}
