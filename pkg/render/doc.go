// Package render turns a placed [grid.Layout] into diagrams.
//
// # Formats
//
// Three output formats are supported, selected with [ParseFormats]:
//
//   - dot: Graphviz source with every node pinned to its grid cell ([dot] subpackage)
//   - svg: the DOT source laid out in-process by Graphviz ([dot] subpackage)
//   - txt: a terminal table of the grid ([text] subpackage)
//
// The renderers never move nodes. Row and column come straight from the
// layout, so what the planner decided is what gets drawn.
//
//	l, _ := grid.Plan(f, grid.Options{})
//	src := dot.ToDOT(*l, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//
// [grid.Layout]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/grid#Layout
// [dot]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/render/dot
// [text]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/render/text
package render
