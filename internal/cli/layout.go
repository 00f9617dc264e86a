package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgrid/pkg/grid"
	"github.com/matzehuels/flowgrid/pkg/pipeline"
)

// layoutCommand creates the layout command for computing grid layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout [service.json]",
		Short: "Compute the grid layout of a service's form flow",
		Long: `Compute the grid layout of a service's form flow.

The layout command reads service metadata, walks its flow from the start page
and places every reachable page and branching point in a row and column. The
output is a layout.json file that can be drawn with 'render' or browsed with
'inspect'.

Results are cached for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output string, noCache, refresh bool) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read service %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Computing layout...")
	spinner.Start()
	result, err := runner.Layout(ctx, pipeline.Options{
		Service: data,
		Source:  input,
		Refresh: refresh,
		Logger:  c.Logger,
	})
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "" {
		output = layoutPath(input)
	}
	if err := grid.WriteLayoutFile(*result.Layout, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	p := printer{c.out}
	p.success("Layout complete")
	p.file(output)
	p.stats(result.Stats.NodeCount, result.Layout.Rows, result.Layout.Columns, result.CacheInfo.LayoutHit)
	if n := len(result.Layout.Unconnected); n > 0 {
		p.warning("%d unconnected: %s", n, strings.Join(result.Layout.Unconnected, ", "))
	}
	p.nextStep("Render", "flowgrid render "+output)
	return nil
}

// layoutPath derives <base>.layout.json from a service file path.
func layoutPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
}
