package grid

import "github.com/matzehuels/flowgrid/pkg/flow"

// ResolveColumns assigns a column to every node reachable from the flow's
// start node.
//
// ResolveColumns uses a longest-path algorithm via topological sort (Kahn's
// algorithm). The start node is column 0 and each other node is placed one
// column right of its right-most predecessor, so every connector points
// strictly rightwards and pages that several routes rejoin line up after the
// longest of them.
//
// The confirmation page is always drawn right of check answers, even when
// no route leads from one to the other, so the two sentinels never compete
// for the same top cell.
//
// Nodes not reachable from the start are absent from the result. The flow
// must be acyclic; nodes on a cycle would never be released from the queue
// and would keep column 0.
func ResolveColumns(f *flow.Flow) map[string]int {
	reachable := f.Reachable()
	inFlow := make(map[string]bool, len(reachable))
	for _, id := range reachable {
		inFlow[id] = true
	}

	inDegree := make(map[string]int, len(reachable))
	for _, id := range reachable {
		for _, d := range f.Destinations(id) {
			inDegree[d]++
		}
	}

	columns := make(map[string]int, len(reachable))
	queue := make([]string, 0, len(reachable))
	for _, id := range reachable {
		columns[id] = 0
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, next := range f.Destinations(curr) {
			if !inFlow[next] {
				continue
			}
			if col := columns[curr] + 1; col > columns[next] {
				columns[next] = col
			}
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	cya, ok1 := f.Sentinel(flow.KindCheckAnswers)
	done, ok2 := f.Sentinel(flow.KindConfirmation)
	if ok1 && ok2 {
		cyaCol, reached := columns[cya]
		if doneCol, ok := columns[done]; reached && ok && doneCol <= cyaCol {
			columns[done] = cyaCol + 1
		}
	}

	return columns
}
