package devproxy

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thushan/llamadeck/internal/core/constants"
	"github.com/thushan/llamadeck/internal/logger"
)

var isolationHeaders = map[string]string{
	"Cross-Origin-Embedder-Policy": "require-corp",
	"Cross-Origin-Opener-Policy":   "same-origin",
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Backend-Path", r.URL.Path)
		w.Header().Set("X-Backend-Query", r.URL.RawQuery)
		w.Header().Set("X-Backend-Host", r.Host)
		w.Header().Set("X-Backend-Forwarded-Host", r.Header.Get("X-Forwarded-Host"))
		w.Header().Set("Cross-Origin-Opener-Policy", "unsafe-none")
		_, _ = w.Write([]byte("backend"))
	}))
	t.Cleanup(backend.Close)
	return backend
}

func newServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Headers == nil {
		opts.Headers = isolationHeaders
	}
	s, err := New(opts, logger.NewDiscard())
	require.NoError(t, err)
	return s
}

func TestServer_ProxiesPrefixedPaths(t *testing.T) {
	backend := newBackend(t)
	s := newServer(t, Options{Target: backend.URL})

	paths := []string{
		"/v1/chat/completions",
		"/props",
		"/slots?id=1",
		"/json-schema-to-grammar.mjs",
		"/v1beta/anything",
		"/api/tags",
		"/health",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://dev.local:5173"+path, nil)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "backend", rec.Body.String())
			assert.Equal(t, req.URL.Path, rec.Header().Get("X-Backend-Path"))
			assert.Equal(t, req.URL.RawQuery, rec.Header().Get("X-Backend-Query"))
			assert.Equal(t, "dev.local:5173", rec.Header().Get("X-Backend-Host"))
			assert.Equal(t, "dev.local:5173", rec.Header().Get("X-Backend-Forwarded-Host"))
		})
	}
}

func TestServer_IsolationHeadersOnEveryResponse(t *testing.T) {
	backend := newBackend(t)
	s := newServer(t, Options{Target: backend.URL})

	for _, path := range []string{"/props", "/", "/unknown"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, []string{"require-corp"}, rec.Header().Values("Cross-Origin-Embedder-Policy"), path)
		assert.Equal(t, []string{"same-origin"}, rec.Header().Values("Cross-Origin-Opener-Policy"), path)
	}
}

func TestServer_NonPrefixedPathsServeEmbeddedUI(t *testing.T) {
	backend := newBackend(t)
	s := newServer(t, Options{Target: backend.URL})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Backend-Path"))
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestServer_StaticDir(t *testing.T) {
	backend := newBackend(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	s := newServer(t, Options{Target: backend.URL, StaticDir: dir})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_BackendDown(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	target := backend.URL
	backend.Close()

	s := newServer(t, Options{Target: target})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/props", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "require-corp", rec.Header().Get("Cross-Origin-Embedder-Policy"))
}

func TestNew_Defaults(t *testing.T) {
	s := newServer(t, Options{})
	assert.Equal(t, constants.DefaultProxyTarget, s.Target().String())
	assert.Equal(t, len(constants.DevProxyPrefixes), s.Routes().ProxyCount())
}

func TestNew_InvalidTarget(t *testing.T) {
	_, err := New(Options{Target: "localhost:8080"}, logger.NewDiscard())
	assert.Error(t, err)

	_, err = New(Options{Target: "http://[::1"}, logger.NewDiscard())
	assert.Error(t, err)
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	backend := newBackend(t)
	s := newServer(t, Options{Target: backend.URL, ShutdownTimeout: time.Second})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/props")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "backend", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
