package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperr "github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/grid"
	"github.com/matzehuels/flowgrid/pkg/pipeline"
	"github.com/matzehuels/flowgrid/pkg/render"
)

// HeaderCache reports whether the response came from the cache.
const HeaderCache = "X-Flowgrid-Cache"

type layoutResponse struct {
	RequestID   string       `json:"request_id"`
	ServiceHash string       `json:"service_hash"`
	Cached      bool         `json:"cached"`
	Layout      *grid.Layout `json:"layout"`
}

type metadataListResponse struct {
	Source string   `json:"source"`
	Count  int      `json:"count"`
	IDs    []string `json:"ids"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"metadata": s.registry.Len(),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.layout(w, r, pipeline.Options{Service: body, Source: "request"})
}

func (s *Server) handleMetadataLayout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.registry.Lookup(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := doc.JSON()
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.layout(w, r, pipeline.Options{Service: data, Source: "metadata:" + id})
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	opts.Refresh = r.URL.Query().Has("refresh")
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))

	result, err := s.runner.Layout(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set(HeaderCache, cacheStatus(result.CacheInfo.LayoutHit))
	writeJSON(w, http.StatusOK, layoutResponse{
		RequestID:   RequestID(r.Context()),
		ServiceHash: result.ServiceHash,
		Cached:      result.CacheInfo.LayoutHit,
		Layout:      result.Layout,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := render.FormatSVG
	if v := q.Get("format"); v != "" {
		formats, err := render.ParseFormats(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if len(formats) != 1 {
			writeError(w, r, apperr.InvalidInput("render takes exactly one format, got %q", v))
			return
		}
		format = formats[0]
	}

	body, err := s.readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Service:  body,
		Source:   "request",
		Formats:  []render.Format{format},
		Detailed: q.Has("detailed"),
		Labels:   q.Has("labels"),
		Refresh:  q.Has("refresh"),
		Logger:   s.logger.With("request_id", RequestID(r.Context())),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set(HeaderCache, cacheStatus(result.CacheInfo.RenderHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) handleMetadataList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, metadataListResponse{
		Source: s.registry.Source(),
		Count:  s.registry.Len(),
		IDs:    s.registry.IDs(),
	})
}

func (s *Server) handleMetadataGet(w http.ResponseWriter, r *http.Request) {
	doc, err := s.registry.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any(doc))
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, apperr.InvalidInput("request body is empty")
	}
	return data, nil
}

func contentType(f render.Format) string {
	switch f {
	case render.FormatSVG:
		return "image/svg+xml"
	case render.FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

