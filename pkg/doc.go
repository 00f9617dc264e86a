// Package pkg provides the core libraries for flowgrid form-flow layout.
//
// # Overview
//
// Flowgrid places the pages and branching points of a form service on a grid
// of rows and columns so that the flow can be drawn as a diagram. The pkg
// directory is organized as:
//
//  1. [flow] - The flow graph and the service metadata reader
//  2. [grid] - Row assignment, column resolution and the layout planner
//  3. [render] - DOT, SVG and text renderers for a finished layout
//  4. [pipeline] - Orchestration (parse → layout → render) with caching
//  5. [metadata] - The default metadata registry
//  6. [server] - The HTTP API
//
// Supporting packages: [cache], [config], [errors], [observability] and
// [buildinfo].
//
// # Architecture
//
//	Service metadata (JSON)
//	         ↓
//	    [flow] package (nodes, destinations, start page, validation)
//	         ↓
//	    [grid] package (columns by longest path, rows by AssignRow)
//	         ↓
//	    [render] packages (DOT, SVG, text)
//
// # Quick Start
//
// Lay out a service file and print its grid:
//
//	import (
//	    "fmt"
//	    "github.com/matzehuels/flowgrid/pkg/flow"
//	    "github.com/matzehuels/flowgrid/pkg/grid"
//	    "github.com/matzehuels/flowgrid/pkg/render/text"
//	)
//
//	f, svc, err := flow.ReadFile("service.json")
//	if err != nil {
//	    return err
//	}
//	l, err := grid.Plan(f, grid.Options{})
//	if err != nil {
//	    return err
//	}
//	l.Service = svc.Name
//	fmt.Println(text.Render(*l, text.Options{Labels: true}))
//
// For cached runs with every output format, use [pipeline.Runner].
//
// [flow]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/flow
// [grid]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/grid
// [render]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/pipeline#Runner
// [metadata]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/metadata
// [server]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/buildinfo
package pkg
