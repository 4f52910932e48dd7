package constants

// llama.cpp server endpoints used by the control panel
const (
	PathUpload = "/v1/upload"
	PathProps  = "/props"

	UploadFormField = "file"
)

// DevProxyPrefixes are forwarded to the backend by the dev server. Matching is
// a plain string prefix, same as the Vite dev proxy.
var DevProxyPrefixes = []string{
	"/v1",
	"/config",
	"/props",
	"/models",
	"/slots",
	"/tokenize",
	"/detokenize",
	"/embedding",
	"/completion",
	"/health",
	"/json-schema-to-grammar.mjs",
	"/lora-adapters",
	"/metrics",
	"/api",
}
