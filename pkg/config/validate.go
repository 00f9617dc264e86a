package config

import (
	"slices"
	"strings"

	apperr "github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/render"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks value ranges. It returns an INVALID_CONFIG error naming
// the first offending key.
func (c *Config) Validate() error {
	if c.MetadataDir == "" && c.Mongo.URI == "" {
		return invalid("metadata_dir", "must be set unless mongo.uri is")
	}
	if c.Cache.TTL < 0 {
		return invalid("cache.ttl", "must not be negative")
	}
	if c.Cache.RedisURL != "" && !strings.HasPrefix(c.Cache.RedisURL, "redis://") && !strings.HasPrefix(c.Cache.RedisURL, "rediss://") {
		return invalid("cache.redis_url", "must start with redis:// or rediss://")
	}
	if c.Server.Addr == "" {
		return invalid("server.addr", "must not be empty")
	}
	if c.Server.RequestTimeout <= 0 {
		return invalid("server.request_timeout", "must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return invalid("server.max_body_bytes", "must be positive")
	}
	if _, err := render.ParseFormats(c.Render.Formats); err != nil {
		return invalid("render.formats", err.Error())
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return invalid("log.level", "must be one of debug, info, warn, error")
	}
	return nil
}

func invalid(key, msg string) error {
	return apperr.New(apperr.ErrCodeInvalidConfig, "%s %s", key, msg)
}
