package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgrid/pkg/grid"
	"github.com/matzehuels/flowgrid/pkg/pipeline"
	"github.com/matzehuels/flowgrid/pkg/render"
)

// stdoutPath as -o writes a single artifact to standard output.
const stdoutPath = "-"

// renderCommand creates the render command for drawing diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		refresh    bool
		detailed   bool
		labels     bool
	)

	cmd := &cobra.Command{
		Use:   "render [service.json|layout.json]",
		Short: "Draw a service or a computed layout",
		Long: `Draw a service or a computed layout.

Input may be service metadata, which is laid out first, or a layout.json file
written by 'layout'. Formats:

  dot   Graphviz source with every node pinned to its cell
  svg   the DOT source drawn by Graphviz
  txt   a terminal table with one column per grid column

Use -o - to print a single format to standard output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatsStr == "" {
				formatsStr = c.settings().Render.Formats
			}
			formats, err := render.ParseFormats(formatsStr)
			if err != nil {
				return err
			}
			if output == stdoutPath && len(formats) != 1 {
				return fmt.Errorf("-o %s needs exactly one format, got %d", stdoutPath, len(formats))
			}

			opts := c.renderDefaults()
			opts.Formats = formats
			opts.Refresh = refresh
			if cmd.Flags().Changed("detailed") {
				opts.Detailed = detailed
			}
			if cmd.Flags().Changed("labels") {
				opts.Labels = labels
			}
			return c.runRender(cmd.Context(), args[0], output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): dot, svg, txt (comma-separated, default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add node IDs and cells to diagram labels")
	cmd.Flags().BoolVar(&labels, "labels", false, "show page titles instead of IDs in text output")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, output string, noCache bool, opts pipeline.Options) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	spinner := newSpinner(ctx, "Rendering...")
	spinner.Start()

	var (
		artifacts map[render.Format][]byte
		cached    bool
	)
	if isLayout(data) {
		l, lerr := grid.UnmarshalLayout(data)
		if lerr != nil {
			spinner.Stop()
			return fmt.Errorf("load layout %s: %w", input, lerr)
		}
		artifacts, cached, err = runner.RenderWithCacheInfo(ctx, l, opts)
	} else {
		opts.Service, opts.Source = data, input
		var result *pipeline.Result
		result, err = runner.Execute(ctx, opts)
		if result != nil {
			artifacts, cached = result.Artifacts, result.CacheInfo.RenderHit
		}
	}
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == stdoutPath {
		_, err := c.out.Write(artifacts[opts.Formats[0]])
		return err
	}
	return c.writeArtifacts(artifacts, opts.Formats, input, output, cached)
}

// writeArtifacts writes one file per format. A single format goes to output
// as given; multiple formats share output (or the input) as base path.
func (c *CLI) writeArtifacts(artifacts map[render.Format][]byte, formats []render.Format, input, output string, cached bool) error {
	p := printer{c.out}
	var paths []string
	for _, f := range formats {
		path := artifactPath(input, output, f, len(formats))
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	status := iconFresh
	if cached {
		status = iconCached
	}
	p.success("Rendered %d format(s) %s", len(formats), StyleDim.Render("("+status+")"))
	for _, path := range paths {
		p.file(path)
	}
	return nil
}

// artifactPath picks the output path of one format.
func artifactPath(input, output string, f render.Format, count int) string {
	if output != "" && count == 1 {
		return output
	}
	return basePath(output, input) + f.Ext()
}

// basePath derives the base output path. Without an output it strips the
// input's ".layout.json" or extension; a known format extension is stripped
// from an explicit output.
func basePath(output, input string) string {
	if output == "" {
		if base, ok := strings.CutSuffix(input, ".layout.json"); ok {
			return base
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormats(strings.TrimPrefix(ext, ".")); err == nil && ext != "" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// isLayout reports whether data looks like a layout file rather than
// service metadata.
func isLayout(data []byte) bool {
	var probe struct {
		Nodes   json.RawMessage `json:"nodes"`
		Rows    *int            `json:"rows"`
		Columns *int            `json:"columns"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Nodes != nil && probe.Rows != nil && probe.Columns != nil
}
