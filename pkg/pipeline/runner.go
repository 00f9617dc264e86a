package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowgrid/pkg/cache"
	"github.com/matzehuels/flowgrid/pkg/flow"
	"github.com/matzehuels/flowgrid/pkg/grid"
	"github.com/matzehuels/flowgrid/pkg/observability"
	"github.com/matzehuels/flowgrid/pkg/render"
)

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner may serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// LayoutTTL and ArtifactTTL default to the cache package's TTLs.
	LayoutTTL   time.Duration
	ArtifactTTL time.Duration
}

// NewRunner creates a runner. A nil keyer uses [cache.DefaultKeyer], a nil
// cache disables caching and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:       c,
		Keyer:       keyer,
		Logger:      logger,
		LayoutTTL:   cache.LayoutTTL,
		ArtifactTTL: cache.ArtifactTTL,
	}
}

// Execute runs parse → layout → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	result, err := r.Layout(ctx, opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, *result.Layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// Layout runs parse → layout without rendering. The layout is looked up in
// the cache by the hash of the service document before planning.
func (r *Runner) Layout(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{ServiceHash: cache.Hash(opts.Service)}

	parseStart := time.Now()
	f, svc, err := Parse(ctx, opts.Source, opts.Service)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", opts.Source, err)
	}
	result.Flow, result.Service = f, svc
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = f.Len()

	r.Logger.Info("parsed service",
		"service", svc.Name,
		"nodes", f.Len(),
		"duration", result.Stats.ParseTime)

	layoutStart := time.Now()
	l, hit, err := r.GenerateLayoutWithCacheInfo(ctx, f, svc, result.ServiceHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Rows, result.Stats.Columns = l.Rows, l.Columns
	result.Stats.Unconnected = len(l.Unconnected)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"rows", l.Rows,
		"columns", l.Columns,
		"cached", hit,
		"duration", result.Stats.LayoutTime)
	if len(l.Unconnected) > 0 {
		r.Logger.Warn("nodes not reachable from the start page", "ids", l.Unconnected)
	}
	return result, nil
}

// GenerateLayoutWithCacheInfo plans a layout, consulting the cache first, and
// reports whether it was a cache hit.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, f *flow.Flow, svc flow.Service, serviceHash string, opts Options) (*grid.Layout, bool, error) {
	key := r.Keyer.LayoutKey(serviceHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cached, err := grid.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return &cached, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	l, err := GenerateLayout(ctx, f, svc, opts.Logger)
	if err != nil {
		return nil, false, err
	}

	if data, err := grid.MarshalLayout(*l); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.LayoutTTL); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return l, false, nil
}

// RenderWithCacheInfo renders every requested format, serving them from the
// cache when all are present.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l grid.Layout, opts Options) (map[render.Format][]byte, bool, error) {
	if err := opts.SetRenderDefaults(); err != nil {
		return nil, false, err
	}

	layoutData, err := grid.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	if !opts.Refresh {
		artifacts := make(map[render.Format][]byte, len(opts.Formats))
		for _, f := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(f)))
			if err != nil || !hit {
				break
			}
			artifacts[f] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := RenderFromLayout(ctx, l, opts)
	if err != nil {
		return nil, false, err
	}
	for f, data := range rendered {
		if err := r.Cache.Set(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(f)), data, r.ArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
