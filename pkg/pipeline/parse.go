package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/flowgrid/pkg/flow"
	"github.com/matzehuels/flowgrid/pkg/observability"
)

// Parse decodes service metadata and builds its validated flow graph.
func Parse(ctx context.Context, source string, data []byte) (*flow.Flow, flow.Service, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, source)
	start := time.Now()

	f, svc, err := flow.Read(bytes.NewReader(data))

	nodes := 0
	if f != nil {
		nodes = f.Len()
	}
	hooks.OnParseComplete(ctx, svc.Name, nodes, time.Since(start), err)
	return f, svc, err
}
