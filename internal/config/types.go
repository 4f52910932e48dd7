package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all configuration for llamadeck
type Config struct {
	Filename string        `mapstructure:"-" yaml:"-"`
	API      APIConfig     `mapstructure:"api" yaml:"api"`
	Bundle   BundleConfig  `mapstructure:"bundle" yaml:"bundle"`
	Dev      DevConfig     `mapstructure:"dev" yaml:"dev"`
	Logging  LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// APIConfig is shared by the upload and props clients
type APIConfig struct {
	// BaseURL mirrors VITE_API_BASE_URL, empty means the default server origin
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Key     string        `mapstructure:"key" yaml:"key"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// BundleConfig drives the post-build asset bundler
type BundleConfig struct {
	IndexPath     string `mapstructure:"index_path" yaml:"index_path"`
	OutputPath    string `mapstructure:"output_path" yaml:"output_path"`
	FaviconPath   string `mapstructure:"favicon_path" yaml:"favicon_path"`
	Banner        string `mapstructure:"banner" yaml:"banner"`
	MaxBundleSize int64  `mapstructure:"max_bundle_size" yaml:"max_bundle_size"`
	MaxAssetSize  int64  `mapstructure:"max_asset_size" yaml:"max_asset_size"`
}

// DevConfig drives the development proxy server
type DevConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	// ProxyTarget mirrors VITE_PROXY_TARGET
	ProxyTarget     string            `mapstructure:"proxy_target" yaml:"proxy_target"`
	StaticDir       string            `mapstructure:"static_dir" yaml:"static_dir"`
	Headers         map[string]string `mapstructure:"headers" yaml:"headers"`
	Port            int               `mapstructure:"port" yaml:"port"`
	PropsInterval   time.Duration     `mapstructure:"props_interval" yaml:"props_interval"`
	ShutdownTimeout time.Duration     `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// GetAddress returns the listen address in host:port format
func (d *DevConfig) GetAddress() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Dir        string `mapstructure:"dir" yaml:"dir"`
	Theme      string `mapstructure:"theme" yaml:"theme"`
	FileOutput bool   `mapstructure:"file_output" yaml:"file_output"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
}
