// Package webui serves the gzipped single file web UI produced by the bundler.
package webui

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/thushan/llamadeck/internal/core/constants"
)

//go:embed index.html.gz
var indexGz []byte

// Handler serves the embedded bundle
func Handler() http.Handler {
	return NewHandler(indexGz)
}

// NewHandler serves compressed as the HTML shell for "/" and "/index.html".
// Clients that accept gzip receive the bytes as they are, others get them
// decompressed.
func NewHandler(compressed []byte) http.Handler {
	sum := sha256.Sum256(compressed)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != "/index.html" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		h := w.Header()
		h.Set(constants.ContentTypeHeader, constants.ContentTypeHTML)
		h.Add(constants.HeaderVary, constants.HeaderAcceptEncoding)
		h.Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		if acceptsGzip(r) {
			h.Set(constants.HeaderContentEncoding, "gzip")
			h.Set("Content-Length", strconv.Itoa(len(compressed)))
			w.WriteHeader(http.StatusOK)
			if r.Method != http.MethodHead {
				_, _ = w.Write(compressed)
			}
			return
		}

		zr, err := gzip.NewReader(bytes.NewReader(compressed))
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		defer func() { _ = zr.Close() }()

		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = io.Copy(w, zr)
	})
}

func acceptsGzip(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get(constants.HeaderAcceptEncoding), ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if !strings.EqualFold(strings.TrimSpace(name), "gzip") && strings.TrimSpace(name) != "*" {
			continue
		}
		if q := strings.ReplaceAll(strings.TrimSpace(params), " ", ""); q == "q=0" || q == "q=0.0" {
			return false
		}
		return true
	}
	return false
}
