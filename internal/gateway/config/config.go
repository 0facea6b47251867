// Package config loads the proxy's TOML configuration and fills in defaults.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ConfigFormatVersion is the current version of the configuration file format
const ConfigFormatVersion = "0.1.0"

// Defaults applied by ValidateConfig.
const (
	DefaultServerPort     = "3000"
	DefaultMetricsPort    = "9090"
	DefaultUpstreamURL    = "https://pc.woozooo.com"
	DefaultShareBaseURL   = "https://wwp.lanzouw.com"
	DefaultUpstreamTO     = "30s"
	DefaultAcceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `toml:"level"`  // zerolog level name
	Pretty bool   `toml:"pretty"` // console output instead of JSON
}

// UpstreamConfig holds the portal connection settings
type UpstreamConfig struct {
	BaseURL        string `toml:"base_url"`        // portal origin, e.g. https://pc.woozooo.com
	ShareBaseURL   string `toml:"share_base_url"`  // fallback origin for share links
	UserAgent      string `toml:"user_agent"`      // sent on every outbound call
	AcceptLanguage string `toml:"accept_language"` // sent on every outbound call
	Timeout        string `toml:"timeout"`         // per-request timeout, Go duration syntax
}

// GetTimeout returns the upstream timeout as time.Duration
func (u *UpstreamConfig) GetTimeout() (time.Duration, error) {
	return time.ParseDuration(u.Timeout)
}

// GetTimeoutOrDefault returns the upstream timeout as time.Duration
// or panics if the value is invalid
func (u *UpstreamConfig) GetTimeoutOrDefault() time.Duration {
	d, err := u.GetTimeout()
	if err != nil {
		panic(fmt.Sprintf("invalid upstream timeout: %v", err))
	}
	return d
}

// MetricsConfig holds Prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Port    string `toml:"port"`
}

// ConfigParam holds all configuration parameters for the proxy
type ConfigParam struct {
	FormatVersion string `toml:"format_version"` // Version of this configuration file format

	ServerHostName string `toml:"server_hostname"` // Interface the API and metrics listen on, 0.0.0.0 for all
	ServerPort     string `toml:"server_port"`     // Port for the API
	HandleCORS     bool   `toml:"handle_cors"`     // Whether to handle CORS

	Log      LogConfig      `toml:"log"`
	Upstream UpstreamConfig `toml:"upstream"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

var cfg *ConfigParam

// Config returns the current configuration
func Config() *ConfigParam {
	return cfg
}

// SetConfig installs c as the current configuration after validating it.
func SetConfig(c *ConfigParam) error {
	if err := ValidateConfig(c); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}
	cfg = c
	return nil
}

// DefaultConfig returns a configuration with every default filled in.
func DefaultConfig() *ConfigParam {
	c := &ConfigParam{
		FormatVersion: ConfigFormatVersion,
		HandleCORS:    true,
		Metrics:       MetricsConfig{Enabled: true},
	}
	if err := ValidateConfig(c); err != nil {
		panic(err)
	}
	return c
}

// ListenAddr is the address the API listens on.
func (c *ConfigParam) ListenAddr() string {
	return net.JoinHostPort(c.ServerHostName, c.ServerPort)
}

// MetricsAddr is the address the metrics endpoint listens on.
func (c *ConfigParam) MetricsAddr() string {
	return net.JoinHostPort(c.ServerHostName, c.Metrics.Port)
}

// ValidateConfig checks required values and fills in defaults
func ValidateConfig(cfg *ConfigParam) error {
	if cfg.FormatVersion != ConfigFormatVersion {
		return fmt.Errorf("unsupported config file format version: %s", cfg.FormatVersion)
	}

	if cfg.ServerHostName == "" {
		cfg.ServerHostName = "localhost"
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = DefaultServerPort
	}

	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = DefaultUpstreamURL
	}
	if err := validateOrigin(cfg.Upstream.BaseURL); err != nil {
		return fmt.Errorf("invalid upstream.base_url: %v", err)
	}
	cfg.Upstream.BaseURL = strings.TrimRight(cfg.Upstream.BaseURL, "/")

	if cfg.Upstream.ShareBaseURL == "" {
		cfg.Upstream.ShareBaseURL = DefaultShareBaseURL
	}
	if err := validateOrigin(cfg.Upstream.ShareBaseURL); err != nil {
		return fmt.Errorf("invalid upstream.share_base_url: %v", err)
	}
	cfg.Upstream.ShareBaseURL = strings.TrimRight(cfg.Upstream.ShareBaseURL, "/")

	if cfg.Upstream.UserAgent == "" {
		cfg.Upstream.UserAgent = DefaultUserAgent
	}
	if cfg.Upstream.AcceptLanguage == "" {
		cfg.Upstream.AcceptLanguage = DefaultAcceptLanguage
	}
	if cfg.Upstream.Timeout == "" {
		cfg.Upstream.Timeout = DefaultUpstreamTO
	}
	if d, err := cfg.Upstream.GetTimeout(); err != nil {
		return fmt.Errorf("invalid upstream.timeout: %v", err)
	} else if d < 0 {
		return fmt.Errorf("invalid upstream.timeout: must not be negative")
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port == "" {
			cfg.Metrics.Port = DefaultMetricsPort
		}
		if cfg.Metrics.Port == cfg.ServerPort {
			return fmt.Errorf("metrics.port must differ from server_port")
		}
	}

	return nil
}

func validateOrigin(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

// LoadConfig loads configuration from a file
func LoadConfig(filename string) error {
	if filename == "" {
		return fmt.Errorf("config filename is required")
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	c := &ConfigParam{}
	if _, err := toml.Decode(string(content), c); err != nil {
		return fmt.Errorf("error parsing config file: %v", err)
	}

	return SetConfig(c)
}
