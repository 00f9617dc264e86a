package metadata

import (
	"context"
	"io"
	"slices"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	apperr "github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/observability"
)

// Source produces the raw documents of a registry.
type Source interface {
	// Documents returns every document. Parse failures are returned as
	// errors, not skipped.
	Documents(ctx context.Context) ([]Document, error)
	// String describes the source for logs.
	String() string
}

// Registry maps document IDs to documents. It is safe for concurrent use and
// never changes after [Load] returns it.
type Registry struct {
	docs   map[string]Document
	ids    []string
	source string
}

// Load reads every document of src and indexes it by "_id", logging each ID
// and the total at info level.
func Load(ctx context.Context, src Source, logger *log.Logger) (*Registry, error) {
	if logger == nil {
		logger = log.Default()
	}
	start := time.Now()
	reg, err := load(ctx, src, logger)
	observability.Metadata().OnMetadataLoaded(ctx, src.String(), reg.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func load(ctx context.Context, src Source, logger *log.Logger) (*Registry, error) {
	logger.Info("loading default metadata", "source", src.String())

	docs, err := src.Documents(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeMetadataLoad, err, "read %s", src)
	}

	reg := &Registry{docs: make(map[string]Document, len(docs)), source: src.String()}
	for i, d := range docs {
		id := d.ID()
		if id == "" {
			return nil, apperr.New(apperr.ErrCodeMetadataLoad, "document %d from %s has no string _id", i, src)
		}
		if _, dup := reg.docs[id]; dup {
			return nil, apperr.New(apperr.ErrCodeMetadataLoad, "duplicate _id %q in %s", id, src)
		}
		logger.Info(id)
		reg.docs[id] = d.clone()
		reg.ids = append(reg.ids, id)
	}
	slices.Sort(reg.ids)

	logger.Info("total loaded default metadata", "count", len(reg.docs))
	return reg, nil
}

// NewRegistry builds a registry from in-memory documents, applying the same
// checks as [Load] without logging.
func NewRegistry(docs ...Document) (*Registry, error) {
	return load(context.Background(), staticSource(docs), log.New(io.Discard))
}

// Get returns a copy of the document with the given ID.
func (r *Registry) Get(id string) (Document, bool) {
	if r == nil {
		return nil, false
	}
	d, ok := r.docs[id]
	if !ok {
		return nil, false
	}
	return d.clone(), true
}

// Lookup is like Get but returns a NOT_FOUND error for unknown IDs.
func (r *Registry) Lookup(id string) (Document, error) {
	d, ok := r.Get(id)
	if !ok {
		return nil, apperr.New(apperr.ErrCodeNotFound, "no default metadata with _id %q", id)
	}
	return d, nil
}

// IDs returns every document ID in sorted order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.ids)
}

// Len returns the number of documents.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.docs)
}

// Source describes where the registry was loaded from.
func (r *Registry) Source() string {
	if r == nil {
		return ""
	}
	return r.source
}

var defaultRegistry atomic.Pointer[Registry]

// SetDefault installs the process-wide registry. Call it once during
// startup.
func SetDefault(r *Registry) { defaultRegistry.Store(r) }

// Default returns the process-wide registry, or an empty one if none was
// installed.
func Default() *Registry {
	if r := defaultRegistry.Load(); r != nil {
		return r
	}
	return &Registry{docs: map[string]Document{}}
}

type staticSource []Document

func (s staticSource) Documents(context.Context) ([]Document, error) { return s, nil }
func (s staticSource) String() string                               { return "memory" }
