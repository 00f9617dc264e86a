// Package pipeline runs the parse → layout → render pipeline shared by the
// CLI and the HTTP API.
//
// # Stages
//
//  1. Parse: decode service metadata and build a validated [flow.Flow]
//  2. Layout: place every reachable node on the grid with [grid.Plan]
//  3. Render: draw the layout in the requested formats
//
// Layouts and artifacts are cached by content hash, so re-running on an
// unchanged document skips straight to the stored output.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Service: data,
//	    Formats: []render.Format{render.FormatSVG},
//	})
//	svg := result.Artifacts[render.FormatSVG]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowgrid/pkg/cache"
	apperr "github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/flow"
	"github.com/matzehuels/flowgrid/pkg/grid"
	"github.com/matzehuels/flowgrid/pkg/render"
)

// PlannerVersion is part of every layout cache key. Bump it whenever
// placement rules change so cached layouts are recomputed.
const PlannerVersion = "1"

// Options configures a pipeline run.
type Options struct {
	// Service is the raw service metadata JSON.
	Service []byte `json:"-"`
	// Source names where Service came from, for logs.
	Source string `json:"source,omitempty"`

	Formats  []render.Format `json:"formats,omitempty"`
	Detailed bool            `json:"detailed,omitempty"` // Add IDs and cells to diagram labels
	Labels   bool            `json:"labels,omitempty"`   // Show page titles in text output

	// Refresh ignores cached layouts and artifacts and overwrites them.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Service     flow.Service
	Flow        *flow.Flow
	ServiceHash string

	Layout    *grid.Layout
	Artifacts map[render.Format][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	NodeCount   int
	Rows        int
	Columns     int
	Unconnected int
	ParseTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks which stages were served from the cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // All requested artifacts came from the cache
}

// ValidateAndSetDefaults checks required fields and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Service) == 0 {
		return apperr.InvalidInput("service metadata is required")
	}
	if o.Source == "" {
		o.Source = "input"
	}
	return o.SetRenderDefaults()
}

// SetRenderDefaults defaults Formats to SVG and checks each format.
func (o *Options) SetRenderDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []render.Format{render.FormatSVG}
	}
	for _, f := range o.Formats {
		if _, err := render.ParseFormats(string(f)); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Version: PlannerVersion}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format render.Format) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   string(format),
		Detailed: o.Detailed,
		Labels:   o.Labels,
	}
}
