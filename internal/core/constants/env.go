package constants

// Environment variables shared with the Vite based frontend build
const (
	EnvAPIBaseURL  = "VITE_API_BASE_URL"
	EnvProxyTarget = "VITE_PROXY_TARGET"

	EnvPrefix     = "LLAMADECK"
	EnvConfigFile = "LLAMADECK_CONFIG_FILE"

	DefaultProxyTarget = "http://localhost:8080"
)
