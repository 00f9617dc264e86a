// Package cli implements the flowgrid command-line interface.
//
// # Commands
//
//   - layout: Compute the grid layout of a service's form flow
//   - render: Draw a service or layout as DOT, SVG or a text grid
//   - inspect: Browse a layout interactively
//   - metadata: List and show the default metadata documents
//   - serve: Run the HTTP API
//   - cache: Manage the layout and artifact cache
//
// # Configuration
//
// Settings come from built-in defaults, then ./flowgrid.yml or the --config
// file, then FLOWGRID_* environment variables. Flags win over all three.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgrid/pkg/buildinfo"
	"github.com/matzehuels/flowgrid/pkg/cache"
	"github.com/matzehuels/flowgrid/pkg/config"
	"github.com/matzehuels/flowgrid/pkg/metadata"
	"github.com/matzehuels/flowgrid/pkg/pipeline"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	out        io.Writer
	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "flowgrid",
		Short: "Flowgrid lays out form flows on a grid",
		Long: `Flowgrid positions the pages and branching points of a form service on a
grid of rows and columns, so that the flow can be drawn as a diagram.`,
		Version:           buildinfo.Get().Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+config.DefaultPath+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.metadataCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and applies its log level.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	level, err := parseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	c.Logger.Debug("loaded config", "metadata_dir", cfg.MetadataDir, "cache_dir", cfg.Cache.Dir, "redis", cfg.Cache.RedisURL != "")
	return nil
}

// settings returns the loaded configuration, or the defaults when setup has
// not run.
func (c *CLI) settings() *config.Config {
	if c.Config == nil {
		cfg, err := config.Load("")
		if err != nil {
			c.Logger.Warn("using built-in config", "error", err)
			cfg = config.Builtin()
		}
		c.Config = cfg
	}
	return c.Config
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if ns := c.settings().Cache.Namespace; ns != "" {
		keyer = cache.NewScopedKeyer(nil, ns)
	}
	runner := pipeline.NewRunner(cc, keyer, c.Logger)
	if ttl := c.settings().Cache.TTL; ttl > 0 {
		runner.LayoutTTL = ttl
		runner.ArtifactTTL = ttl
	}
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.settings().Cache
	switch {
	case noCache || cfg.Disabled:
		return cache.NewNullCache(), nil
	case cfg.RedisURL != "":
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the configured cache directory or the user cache dir
// (~/.cache/flowgrid on Linux).
func (c *CLI) cacheDir() (string, error) {
	if dir := c.settings().Cache.Dir; dir != "" {
		return dir, nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Metadata
// =============================================================================

// loadMetadata reads the default metadata from MongoDB when configured,
// otherwise from the metadata directory, and installs it as the process
// default.
func (c *CLI) loadMetadata(ctx context.Context) (*metadata.Registry, error) {
	cfg := c.settings()
	var src metadata.Source = metadata.DirSource{Dir: cfg.MetadataDir}
	if cfg.Mongo.URI != "" {
		src = metadata.MongoSource{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		}
	}
	reg, err := metadata.Load(ctx, src, c.Logger)
	if err != nil {
		return nil, err
	}
	metadata.SetDefault(reg)
	return reg, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// renderDefaults returns the configured render options.
func (c *CLI) renderDefaults() pipeline.Options {
	r := c.settings().Render
	return pipeline.Options{Detailed: r.Detailed, Labels: r.Labels}
}
