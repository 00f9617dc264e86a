package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/matzehuels/flowgrid/pkg/cache"
	apperr "github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/metadata"
	"github.com/matzehuels/flowgrid/pkg/pipeline"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const serviceJSON = `{
	"service_name": "Juggling licence",
	"pages": [
		{"_id": "start", "_type": "page.start", "heading": "Start"},
		{"_id": "cya", "_type": "page.checkanswers", "heading": "Check your answers"},
		{"_id": "done", "_type": "page.confirmation"}
	],
	"flow": {
		"start": {"_type": "flow.page", "next": {"default": "branch"}},
		"branch": {"_type": "flow.branch", "next": {"default": "no", "conditionals": [{"_type": "if", "next": "yes"}]}},
		"yes": {"_type": "flow.page", "next": {"default": "cya"}},
		"no": {"_type": "flow.page", "next": {"default": "cya"}},
		"cya": {"_type": "flow.page", "next": {"default": "done"}},
		"done": {"_type": "flow.page", "next": {}}
	}
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	var svc map[string]any
	require.NoError(t, json.Unmarshal([]byte(serviceJSON), &svc))
	svc["_id"] = "service.juggling"
	svc["_type"] = "service"

	reg, err := metadata.NewRegistry(
		metadata.Document(svc),
		metadata.Document{"_id": "page.start", "_type": "page.start", "heading": "Start"},
	)
	require.NoError(t, err)

	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	logger := log.New(io.Discard)

	return New(Options{
		Runner:       pipeline.NewRunner(fc, nil, logger),
		Registry:     reg,
		Logger:       logger,
		MaxBodyBytes: 1 << 16,
	})
}

func do(t *testing.T, s *Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","metadata":2}`, rec.Body.String())
}

func TestLayout(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/layout", serviceJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "miss", rec.Header().Get(HeaderCache))

	var resp layoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, rec.Header().Get(HeaderRequestID), resp.RequestID)
	assert.NotEmpty(t, resp.ServiceHash)
	assert.False(t, resp.Cached)
	require.NotNil(t, resp.Layout)
	assert.Equal(t, "Juggling licence", resp.Layout.Service)
	assert.Equal(t, 2, resp.Layout.Rows)
	assert.Equal(t, 5, resp.Layout.Columns)

	no, ok := resp.Layout.Node("no")
	require.True(t, ok)
	assert.Equal(t, 1, no.Row)
	assert.Equal(t, 2, no.Column)

	rec = do(t, s, http.MethodPost, "/v1/layout", serviceJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hit", rec.Header().Get(HeaderCache))

	rec = do(t, s, http.MethodPost, "/v1/layout?refresh", serviceJSON)
	assert.Equal(t, "miss", rec.Header().Get(HeaderCache))
}

func TestLayoutErrors(t *testing.T) {
	unknown := strings.Replace(serviceJSON, `"default": "done"`, `"default": "nowhere"`, 1)

	tests := []struct {
		name   string
		body   string
		status int
		code   apperr.Code
	}{
		{"empty body", "", http.StatusBadRequest, apperr.ErrCodeInvalidInput},
		{"malformed json", "{", http.StatusBadRequest, apperr.ErrCodeInvalidFormat},
		{"unknown destination", unknown, http.StatusUnprocessableEntity, apperr.ErrCodeInvalidFlow},
		{"too large", `{"service_name": "` + strings.Repeat("x", 1<<16) + `"}`, http.StatusRequestEntityTooLarge, apperr.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t), http.MethodPost, "/v1/layout", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			detail := decodeError(t, rec)
			assert.Equal(t, tt.code, detail.Code)
			assert.Equal(t, rec.Header().Get(HeaderRequestID), detail.RequestID)
		})
	}
}

func TestRender(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/render?format=txt&labels", serviceJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Juggling licence")
	assert.Contains(t, rec.Body.String(), "Check your answers")

	rec = do(t, s, http.MethodPost, "/v1/render?format=dot", serviceJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "digraph"), rec.Body.String())
	assert.Equal(t, "miss", rec.Header().Get(HeaderCache))

	rec = do(t, s, http.MethodPost, "/v1/render?format=dot", serviceJSON)
	assert.Equal(t, "hit", rec.Header().Get(HeaderCache))
}

func TestRenderRejectsFormats(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/render?format=pdf", serviceJSON)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.ErrCodeUnsupported, decodeError(t, rec).Code)

	rec = do(t, s, http.MethodPost, "/v1/render?format=dot,txt", serviceJSON)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.ErrCodeInvalidInput, decodeError(t, rec).Code)
}

func TestMetadata(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/v1/metadata", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list metadataListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, []string{"page.start", "service.juggling"}, list.IDs)

	rec = do(t, s, http.MethodGet, "/v1/metadata/page.start", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"_id":"page.start","_type":"page.start","heading":"Start"}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/v1/metadata/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperr.ErrCodeNotFound, decodeError(t, rec).Code)
}

func TestMetadataLayout(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/v1/metadata/service.juggling/layout", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp layoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Layout.Columns)

	rec = do(t, s, http.MethodGet, "/v1/metadata/nope/layout", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	_, err := uuid.Parse(rec.Header().Get(HeaderRequestID))
	assert.NoError(t, err, "generated request id should be a uuid")

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, id)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "not a uuid")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.NotEqual(t, "not a uuid", rec.Header().Get(HeaderRequestID))
}

func TestNotFoundRoute(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/v2/anything", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperr.ErrCodeNotFound, decodeError(t, rec).Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code apperr.Code
		want int
	}{
		{apperr.ErrCodeInvalidInput, http.StatusBadRequest},
		{apperr.ErrCodeInvalidFormat, http.StatusBadRequest},
		{apperr.ErrCodeUnsupported, http.StatusBadRequest},
		{apperr.ErrCodeInvalidFlow, http.StatusUnprocessableEntity},
		{apperr.ErrCodeUnknownNode, http.StatusUnprocessableEntity},
		{apperr.ErrCodeNotFound, http.StatusNotFound},
		{apperr.ErrCodeMetadataLoad, http.StatusInternalServerError},
		{apperr.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.code), tt.code)
	}
}

func TestInternalErrorsAreMasked(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	writeError(rec, req, io.ErrUnexpectedEOF)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decodeError(t, rec).Message)
	assert.False(t, bytes.Contains(rec.Body.Bytes(), []byte("unexpected EOF")))
}
