package grid

import (
	apperr "github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/flow"
)

// FlowReader is the part of the flow graph the row assigner queries.
// [*flow.Flow] implements it.
type FlowReader interface {
	Kind(id string) (flow.Kind, bool)
	Destinations(id string) []string
}

// AssignRow decides the row for node id, whose column is already resolved.
//
// startingRow is the row the current route's originating branch begins at and
// cursor is the row the placement pass has reached so far. The rules, in
// precedence order:
//
//  1. Check answers and confirmation pages always go on [TopRow].
//  2. A node that already has a row keeps TopRow if it is on it, and otherwise
//     moves down to cursor if the pass has gone deeper, never up.
//  3. A fresh node on a route starting at TopRow goes on TopRow.
//  4. A fresh node sharing its column with a branching point on TopRow goes
//     below that branch's fan-out: branch row + destinations + 1, or cursor if
//     that is further down.
//  5. Anything else goes on cursor.
//
// AssignRow does not modify positions. It returns an UNKNOWN_NODE error when
// the flow does not contain id, and INVALID_INPUT for negative arguments.
func AssignRow(id string, column, startingRow, cursor int, positions PositionReader, f FlowReader) (int, error) {
	if err := validateArgs(column, startingRow, cursor); err != nil {
		return 0, err
	}
	kind, ok := f.Kind(id)
	if !ok {
		return 0, apperr.UnknownNode(id)
	}

	if kind.IsSentinel() {
		return TopRow, nil
	}

	if pos, ok := positions.Get(id); ok && pos.Placed() {
		if pos.Row == TopRow {
			return TopRow, nil
		}
		return max(pos.Row, cursor), nil
	}

	if startingRow == TopRow {
		return startingRow, nil
	}

	if branch, ok := branchAbove(id, column, positions, f); ok {
		return max(branch.reservedUntil(), cursor), nil
	}

	return cursor, nil
}

func validateArgs(column, startingRow, cursor int) error {
	if err := apperr.ValidateRow("cursor", cursor); err != nil {
		return err
	}
	if err := apperr.ValidateRow("route starting row", startingRow); err != nil {
		return err
	}
	if column < 0 {
		return apperr.InvalidInput("column must not be negative, got %d", column)
	}
	return nil
}
