// Package config loads flowgrid settings with koanf.
//
// Values are layered, later sources winning:
//
//  1. built-in defaults ([Defaults])
//  2. a YAML file: the --config path, or ./flowgrid.yml when it exists
//  3. FLOWGRID_* environment variables, e.g. FLOWGRID_CACHE_TTL=24h sets
//     cache.ttl and FLOWGRID_METADATA_DIR sets metadata_dir
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	apperr "github.com/matzehuels/flowgrid/pkg/errors"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "FLOWGRID_"

// DefaultPath is the config file read when no path is given.
const DefaultPath = "flowgrid.yml"

// Config is the complete flowgrid configuration.
type Config struct {
	// MetadataDir holds the default metadata documents (<dir>/*/*).
	MetadataDir string       `koanf:"metadata_dir"`
	Mongo       MongoConfig  `koanf:"mongo"`
	Cache       CacheConfig  `koanf:"cache"`
	Server      ServerConfig `koanf:"server"`
	Render      RenderConfig `koanf:"render"`
	Log         LogConfig    `koanf:"log"`
}

// MongoConfig selects MongoDB as the metadata source when URI is set.
type MongoConfig struct {
	URI        string `koanf:"uri"`
	Database   string `koanf:"database"`
	Collection string `koanf:"collection"`
}

// CacheConfig configures layout and artifact caching.
type CacheConfig struct {
	Dir       string        `koanf:"dir"`       // File cache directory; empty uses the user cache dir
	TTL       time.Duration `koanf:"ttl"`       // Entry lifetime; 0 never expires
	RedisURL  string        `koanf:"redis_url"` // Use Redis instead of files when set
	Namespace string        `koanf:"namespace"` // Key prefix shared by every entry
	Disabled  bool          `koanf:"disabled"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `koanf:"addr"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	MaxBodyBytes   int64         `koanf:"max_body_bytes"`
}

// RenderConfig holds rendering defaults.
type RenderConfig struct {
	Formats  string `koanf:"formats"` // Comma-separated: dot, svg, txt
	Detailed bool   `koanf:"detailed"`
	Labels   bool   `koanf:"labels"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn or error
}

// Defaults returns the built-in values keyed by config path.
func Defaults() map[string]any {
	return map[string]any{
		"metadata_dir":           "default_metadata",
		"mongo.uri":              "",
		"mongo.database":         "flowgrid",
		"mongo.collection":       "default_metadata",
		"cache.dir":              "",
		"cache.ttl":              "168h",
		"cache.redis_url":        "",
		"cache.namespace":        "",
		"cache.disabled":         false,
		"server.addr":            ":8080",
		"server.request_timeout": "30s",
		"server.max_body_bytes":  int64(4 << 20),
		"render.formats":         "svg",
		"render.detailed":        false,
		"render.labels":          false,
		"log.level":              "info",
	}
}

// Builtin returns the configuration that [Load] yields with no file and no
// environment overrides.
func Builtin() *Config {
	return &Config{
		MetadataDir: "default_metadata",
		Mongo:       MongoConfig{Database: "flowgrid", Collection: "default_metadata"},
		Cache:       CacheConfig{TTL: 168 * time.Hour},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 30 * time.Second,
			MaxBodyBytes:   4 << 20,
		},
		Render: RenderConfig{Formats: "svg"},
		Log:    LogConfig{Level: "info"},
	}
}

// sections are the nested config groups; env names starting with one of
// them followed by "_" address a key inside the group.
var sections = []string{"mongo", "cache", "server", "render", "log"}

// Load reads the configuration. An explicit path must exist; with an empty
// path, ./flowgrid.yml is read if present.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	for key, value := range Defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "set default %s", key)
		}
	}

	if err := loadFile(k, path); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "load environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "unmarshal config")
	}
	cfg.MetadataDir = expandHomePath(cfg.MetadataDir)
	cfg.Cache.Dir = expandHomePath(cfg.Cache.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if path == "" {
		if _, err := os.Stat(DefaultPath); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = DefaultPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "load config file %s", path)
	}
	return nil
}

// envTransform maps FLOWGRID_CACHE_REDIS_URL to cache.redis_url and
// FLOWGRID_METADATA_DIR to metadata_dir.
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

func expandHomePath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
