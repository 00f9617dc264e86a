package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowgrid/pkg/flow"
	"github.com/matzehuels/flowgrid/pkg/grid"
	"github.com/matzehuels/flowgrid/pkg/observability"
)

// GenerateLayout places the flow on the grid and names the layout after the
// service.
func GenerateLayout(ctx context.Context, f *flow.Flow, svc flow.Service, logger *log.Logger) (*grid.Layout, error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, svc.Name, f.Len())
	start := time.Now()

	l, err := grid.Plan(f, grid.Options{Logger: logger})
	if err != nil {
		hooks.OnLayoutComplete(ctx, svc.Name, 0, 0, time.Since(start), err)
		return nil, err
	}
	l.Service = svc.Name

	hooks.OnLayoutComplete(ctx, svc.Name, l.Rows, l.Columns, time.Since(start), nil)
	return l, nil
}
