// Package cache stores computed layouts and rendered artifacts.
//
// Layout planning is fast, but rendering SVG through Graphviz is not, and the
// HTTP server answers the same service documents repeatedly. Entries are raw
// bytes with an optional TTL; callers decide the encoding.
//
// Three backends are provided:
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: a shared Redis instance, for server deployments
//   - [NullCache]: stores nothing, for tests and --no-cache
//
// Keys are built by a [Keyer] from content hashes, so an edited service
// document never hits a stale entry.
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey identifies the layout planned from a service document.
	LayoutKey(serviceHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered diagram of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the inputs besides the document that change a layout.
type LayoutKeyOpts struct {
	// Version is the planner version; bumping it invalidates old layouts.
	Version string `json:"version,omitempty"`
}

// ArtifactKeyOpts holds the rendering inputs that change an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
	Labels   bool   `json:"labels,omitempty"`
}

// DefaultKeyer builds "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(serviceHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", serviceHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
