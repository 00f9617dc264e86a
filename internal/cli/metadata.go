package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgrid/pkg/grid"
	"github.com/matzehuels/flowgrid/pkg/pipeline"
)

// metadataCommand creates the default metadata commands.
func (c *CLI) metadataCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "List and show the default metadata documents",
	}

	cmd.AddCommand(c.metadataListCommand())
	cmd.AddCommand(c.metadataShowCommand())
	cmd.AddCommand(c.metadataLayoutCommand())

	return cmd
}

func (c *CLI) metadataListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List default metadata IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.loadMetadata(cmd.Context())
			if err != nil {
				return err
			}
			p := printer{c.out}
			p.info("%d documents from %s", reg.Len(), reg.Source())
			for _, id := range reg.IDs() {
				doc, _ := reg.Get(id)
				p.keyValue(doc.Type(), id)
			}
			return nil
		},
	}
}

func (c *CLI) metadataShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show [id]",
		Short:             "Print one default metadata document as JSON",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMetadataIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.loadMetadata(cmd.Context())
			if err != nil {
				return err
			}
			doc, err := reg.Lookup(args[0])
			if err != nil {
				return err
			}
			return writeJSON(c.out, doc)
		},
	}
}

func (c *CLI) metadataLayoutCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:               "layout [id]",
		Short:             "Lay out a service stored as default metadata",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMetadataIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMetadataLayout(cmd.Context(), args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func (c *CLI) runMetadataLayout(ctx context.Context, id, output string) error {
	reg, err := c.loadMetadata(ctx)
	if err != nil {
		return err
	}
	doc, err := reg.Lookup(id)
	if err != nil {
		return err
	}
	data, err := doc.JSON()
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Layout(ctx, pipeline.Options{Service: data, Source: "metadata:" + id, Logger: c.Logger})
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	if output == "" {
		return writeJSON(c.out, result.Layout)
	}
	if err := grid.WriteLayoutFile(*result.Layout, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	p := printer{c.out}
	p.success("Layout of %s complete", strconv.Quote(id))
	p.file(output)
	p.stats(result.Stats.NodeCount, result.Layout.Rows, result.Layout.Columns, result.CacheInfo.LayoutHit)
	return nil
}

// completeMetadataIDs offers the registry's IDs for shell completion.
func (c *CLI) completeMetadataIDs(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	reg, err := c.loadMetadata(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []cobra.Completion
	for _, id := range reg.IDs() {
		if !strings.HasPrefix(id, toComplete) {
			continue
		}
		doc, _ := reg.Get(id)
		out = append(out, cobra.CompletionWithDesc(id, doc.Type()))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
