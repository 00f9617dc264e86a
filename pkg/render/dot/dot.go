package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowgrid/pkg/flow"
	"github.com/matzehuels/flowgrid/pkg/grid"
)

// Default cell spacing in inches.
const (
	DefaultColumnWidth = 2.5
	DefaultRowHeight   = 1.25
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the node ID and cell to each label.
	Detailed bool
	// ColumnWidth and RowHeight set the cell size in inches. Zero uses the
	// defaults.
	ColumnWidth float64
	RowHeight   float64
}

func (o Options) cell() (w, h float64) {
	w, h = o.ColumnWidth, o.RowHeight
	if w <= 0 {
		w = DefaultColumnWidth
	}
	if h <= 0 {
		h = DefaultRowHeight
	}
	return w, h
}

// ToDOT converts a layout to Graphviz DOT source with every node pinned to
// its cell. Edges to nodes missing from the layout are skipped.
func ToDOT(l grid.Layout, opts Options) string {
	w, h := opts.cell()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if l.Service != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", l.Service)
	}
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, width=2.2, height=0.6, fixedsize=true];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("\n")

	placed := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		placed[n.ID] = true
	}

	for _, n := range l.Nodes {
		attrs := fmtAttrs(n, opts.Detailed)
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", inches(float64(n.Column)*w), inches(float64(-n.Row)*h)))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range l.Nodes {
		for _, d := range n.Destinations {
			if placed[d] {
				fmt.Fprintf(&buf, "  %q -> %q;\n", n.ID, d)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func inches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fmtLabel(n grid.NodePosition, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\n%s (%d, %d)", label, n.ID, n.Row, n.Column)
}

func fmtAttrs(n grid.NodePosition, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	kind, _ := flow.ParseKind(n.Kind)
	switch kind {
	case flow.KindBranch:
		attrs = append(attrs, "shape=diamond", "style=filled", "fillcolor=lightyellow")
	case flow.KindCheckAnswers, flow.KindConfirmation:
		attrs = append(attrs, "peripheries=2", "fillcolor=honeydew")
	}
	return attrs
}

// RenderSVG lays out DOT source with neato, honouring pinned positions, and
// returns the SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized root element with one
// that scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
