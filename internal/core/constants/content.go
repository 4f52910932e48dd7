package constants

const (
	ContentTypeJSON   = "application/json"
	ContentTypeHTML   = "text/html; charset=utf-8"
	ContentTypeHeader = "Content-Type"

	HeaderAccept          = "Accept"
	HeaderAuthorization   = "Authorization"
	HeaderUserAgent       = "User-Agent"
	HeaderContentEncoding = "Content-Encoding"
	HeaderAcceptEncoding  = "Accept-Encoding"
	HeaderVary            = "Vary"

	HeaderCrossOriginEmbedderPolicy = "Cross-Origin-Embedder-Policy"
	HeaderCrossOriginOpenerPolicy   = "Cross-Origin-Opener-Policy"
)
