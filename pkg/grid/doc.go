// Package grid places the nodes of a form flow on an integer row/column grid.
//
// # Overview
//
// [Plan] runs a single sequential pass over a [flow.Flow]:
//
//  1. [ResolveColumns] gives every reachable node a column (longest path from
//     the start node).
//  2. Routes are walked in a stable order. For each node the planner asks
//     [AssignRow] for a row, commits {row, column} to a [Positions] map and
//     advances its cursor to the deepest row reached.
//  3. The position map is returned as a [Layout].
//
// # Row Assignment
//
// [AssignRow] is a pure function over the node, its column, the route's
// starting row, the cursor, and read access to the position map and flow.
// It pins the check answers and confirmation pages to [TopRow], never pulls a
// node up or off TopRow, keeps rows below a top-row branching point free for
// that branch's fan-out, and otherwise follows the cursor.
//
// # Example
//
//	f, _, err := flow.ReadFile("service.json")
//	if err != nil {
//	    return err
//	}
//	layout, err := grid.Plan(f, grid.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	for _, n := range layout.Nodes {
//	    fmt.Printf("%s row=%d column=%d\n", n.ID, n.Row, n.Column)
//	}
//
// # Concurrency
//
// Planning is synchronous and allocates a fresh position map per call, so
// separate Plan calls may run concurrently on the same read-only flow.
package grid
