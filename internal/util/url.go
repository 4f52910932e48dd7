package util

import (
	"net/url"
	"path"
	"strings"
)

// DefaultServerOrigin is used when no API base is configured. In the browser an
// empty base means same-origin, which for the shell is the llama.cpp server itself.
const DefaultServerOrigin = "http://localhost:8080"

// ResolveURLPath joins pathOrURL onto baseURL, keeping any path prefix the
// base carries. Absolute URLs are returned untouched.
//
//   - ResolveURLPath("http://localhost:8080/llama/", "/v1/upload") -> "http://localhost:8080/llama/v1/upload"
//   - ResolveURLPath("http://localhost:8080", "http://other:9000/props") -> "http://other:9000/props"
func ResolveURLPath(baseURL, pathOrURL string) string {
	if baseURL == "" {
		return pathOrURL
	}
	if pathOrURL == "" {
		return baseURL
	}

	if parsed, err := url.Parse(pathOrURL); err == nil && parsed.IsAbs() {
		return pathOrURL
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return pathOrURL
	}

	// path.Join rather than ResolveReference, a leading "/" would drop the base prefix
	base.Path = path.Join(base.Path, pathOrURL)
	return base.String()
}

// APIEndpoint builds the URL of an inference server endpoint from the
// configured API base, falling back to DefaultServerOrigin.
func APIEndpoint(apiBase, endpoint string) string {
	base := strings.TrimSpace(apiBase)
	if base == "" {
		base = DefaultServerOrigin
	}
	return ResolveURLPath(base, endpoint)
}
