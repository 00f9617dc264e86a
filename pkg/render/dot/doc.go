// Package dot renders a placed flow as a Graphviz diagram.
//
// # Usage
//
// Convert a layout to DOT source, then render it to SVG:
//
//	src := dot.ToDOT(layout, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//
// # Pinned positions
//
// Every node carries a pos attribute ending in "!", so the neato engine keeps
// it on its grid cell instead of computing its own layout. Columns run left
// to right and rows top to bottom, matching the planner's grid.
//
// # Shapes
//
//   - Pages are rounded boxes
//   - Branching points are diamonds
//   - Check answers and confirmation pages are boxes with a double outline
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package dot
