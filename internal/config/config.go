package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/thushan/llamadeck/internal/core/constants"
)

const (
	DefaultHost = "localhost"
	DefaultPort = 5173

	DefaultMaxBundleSize = 5000 * 1024
	DefaultMaxAssetSize  = 32000

	// Vite writes the SvelteKit build into ../public relative to the webui folder
	DefaultIndexPath   = "../public/index.html"
	DefaultOutputPath  = "../public/index.html.gz"
	DefaultFaviconPath = "static/favicon.svg"
)

// loggingEnvAliases keep the short logger variables, e.g. LLAMADECK_LOG_LEVEL
var loggingEnvAliases = map[string]string{
	"logging.level":       "LOG_LEVEL",
	"logging.dir":         "LOG_DIR",
	"logging.theme":       "THEME",
	"logging.file_output": "FILE_OUTPUT",
	"logging.max_size":    "MAX_SIZE",
	"logging.max_backups": "MAX_BACKUPS",
	"logging.max_age":     "MAX_AGE",
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Timeout: 30 * time.Second,
		},
		Bundle: BundleConfig{
			IndexPath:     DefaultIndexPath,
			OutputPath:    DefaultOutputPath,
			FaviconPath:   DefaultFaviconPath,
			MaxBundleSize: DefaultMaxBundleSize,
			MaxAssetSize:  DefaultMaxAssetSize,
		},
		Dev: DevConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			ProxyTarget: constants.DefaultProxyTarget,
			Headers: map[string]string{
				constants.HeaderCrossOriginEmbedderPolicy: "require-corp",
				constants.HeaderCrossOriginOpenerPolicy:   "same-origin",
			},
			PropsInterval:   30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Dir:        "./logs",
			Theme:      "default",
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
		},
	}
}

// Load reads defaults, an optional yaml file and the environment. An explicit
// configFile wins over LLAMADECK_CONFIG_FILE which wins over the search path.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// the frontend build uses VITE_* names, keep them working unprefixed
	if err := v.BindEnv("api.base_url", "LLAMADECK_API_BASE_URL", constants.EnvAPIBaseURL); err != nil {
		return nil, err
	}
	if err := v.BindEnv("dev.proxy_target", "LLAMADECK_DEV_PROXY_TARGET", constants.EnvProxyTarget); err != nil {
		return nil, err
	}
	for key, short := range loggingEnvAliases {
		envKey := constants.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, constants.EnvPrefix+"_"+short); err != nil {
			return nil, err
		}
	}

	if configFile == "" {
		configFile = os.Getenv(constants.EnvConfigFile)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("llamadeck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")

		if err := v.ReadInConfig(); err != nil {
			// a missing file is fine, defaults and env still apply
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	// a configured header set replaces the defaults, viper lowercases the keys
	if v.IsSet("dev.headers") {
		cfg.Dev.Headers = canonicalHeaders(v.GetStringMapString("dev.headers"))
	}
	cfg.Filename = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func canonicalHeaders(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[http.CanonicalHeaderKey(k)] = v
	}
	return out
}

// setDefaults registers every scalar key so AutomaticEnv can override them during
// Unmarshal. dev.headers is left to DefaultConfig, viper would fold its keys.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.key", d.API.Key)
	v.SetDefault("api.timeout", d.API.Timeout)

	v.SetDefault("bundle.index_path", d.Bundle.IndexPath)
	v.SetDefault("bundle.output_path", d.Bundle.OutputPath)
	v.SetDefault("bundle.favicon_path", d.Bundle.FaviconPath)
	v.SetDefault("bundle.banner", d.Bundle.Banner)
	v.SetDefault("bundle.max_bundle_size", d.Bundle.MaxBundleSize)
	v.SetDefault("bundle.max_asset_size", d.Bundle.MaxAssetSize)

	v.SetDefault("dev.host", d.Dev.Host)
	v.SetDefault("dev.port", d.Dev.Port)
	v.SetDefault("dev.proxy_target", d.Dev.ProxyTarget)
	v.SetDefault("dev.static_dir", d.Dev.StaticDir)
	v.SetDefault("dev.props_interval", d.Dev.PropsInterval)
	v.SetDefault("dev.shutdown_timeout", d.Dev.ShutdownTimeout)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.dir", d.Logging.Dir)
	v.SetDefault("logging.theme", d.Logging.Theme)
	v.SetDefault("logging.file_output", d.Logging.FileOutput)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age", d.Logging.MaxAge)
}

func (c *Config) Validate() error {
	if c.Bundle.MaxBundleSize <= 0 {
		return fmt.Errorf("bundle.max_bundle_size must be positive, got %d", c.Bundle.MaxBundleSize)
	}
	if c.Bundle.IndexPath == "" || c.Bundle.OutputPath == "" {
		return errors.New("bundle.index_path and bundle.output_path are required")
	}
	if c.Dev.Port <= 0 || c.Dev.Port > 65535 {
		return fmt.Errorf("dev.port out of range: %d", c.Dev.Port)
	}
	if c.Dev.ProxyTarget == "" {
		c.Dev.ProxyTarget = constants.DefaultProxyTarget
	}
	return nil
}
