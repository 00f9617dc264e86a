package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/flowgrid/pkg/grid"
	"github.com/matzehuels/flowgrid/pkg/observability"
	"github.com/matzehuels/flowgrid/pkg/render"
	"github.com/matzehuels/flowgrid/pkg/render/dot"
	"github.com/matzehuels/flowgrid/pkg/render/text"
)

// RenderFromLayout draws the layout in every format of opts.Formats.
func RenderFromLayout(ctx context.Context, l grid.Layout, opts Options) (map[render.Format][]byte, error) {
	names := make([]string, len(opts.Formats))
	for i, f := range opts.Formats {
		names[i] = string(f)
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, names)
	start := time.Now()

	out, err := renderFormats(ctx, l, opts)
	hooks.OnRenderComplete(ctx, names, time.Since(start), err)
	return out, err
}

func renderFormats(ctx context.Context, l grid.Layout, opts Options) (map[render.Format][]byte, error) {
	out := make(map[render.Format][]byte, len(opts.Formats))

	var src string
	dotSource := func() string {
		if src == "" {
			src = dot.ToDOT(l, dot.Options{Detailed: opts.Detailed})
		}
		return src
	}

	for _, f := range opts.Formats {
		switch f {
		case render.FormatDOT:
			out[f] = []byte(dotSource())
		case render.FormatSVG:
			svg, err := dot.RenderSVG(ctx, dotSource())
			if err != nil {
				return nil, err
			}
			out[f] = svg
		case render.FormatText:
			out[f] = []byte(text.Render(l, text.Options{Labels: opts.Labels}))
		}
	}
	return out, nil
}
