package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "lanzouproxy.conf")
	require.NoError(t, os.WriteFile(p, []byte(content), 0600))
	return p
}

func TestLoadConfig(t *testing.T) {
	p := writeConfig(t, `
format_version = "0.1.0"
server_hostname = "0.0.0.0"
server_port = "8080"
handle_cors = true

[log]
level = "debug"
pretty = true

[upstream]
base_url = "https://portal.example.com/"
timeout = "5s"

[metrics]
enabled = true
port = "9100"
`)
	require.NoError(t, LoadConfig(p))
	c := Config()
	require.NotNil(t, c)
	assert.Equal(t, "8080", c.ServerPort)
	assert.True(t, c.HandleCORS)
	assert.Equal(t, "debug", c.Log.Level)
	assert.True(t, c.Log.Pretty)
	assert.Equal(t, "https://portal.example.com", c.Upstream.BaseURL)
	assert.Equal(t, DefaultShareBaseURL, c.Upstream.ShareBaseURL)
	assert.Equal(t, DefaultUserAgent, c.Upstream.UserAgent)
	assert.Equal(t, 5*time.Second, c.Upstream.GetTimeoutOrDefault())
	assert.Equal(t, "9100", c.Metrics.Port)
	assert.Equal(t, "0.0.0.0:8080", c.ListenAddr())
	assert.Equal(t, "0.0.0.0:9100", c.MetricsAddr())
}

func TestLoadConfigErrors(t *testing.T) {
	assert.Error(t, LoadConfig(""))
	assert.Error(t, LoadConfig(filepath.Join(t.TempDir(), "missing.conf")))
	assert.Error(t, LoadConfig(writeConfig(t, `format_version = `)))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ConfigParam)
		wantErr string
	}{
		{"wrong version", func(c *ConfigParam) { c.FormatVersion = "9.9.9" }, "unsupported config file format version"},
		{"bad scheme", func(c *ConfigParam) { c.Upstream.BaseURL = "ftp://portal" }, "invalid upstream.base_url"},
		{"no host", func(c *ConfigParam) { c.Upstream.ShareBaseURL = "https://" }, "invalid upstream.share_base_url"},
		{"bad timeout", func(c *ConfigParam) { c.Upstream.Timeout = "soon" }, "invalid upstream.timeout"},
		{"negative timeout", func(c *ConfigParam) { c.Upstream.Timeout = "-1s" }, "must not be negative"},
		{"port clash", func(c *ConfigParam) { c.Metrics.Enabled = true; c.Metrics.Port = "3000" }, "metrics.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &ConfigParam{FormatVersion: ConfigFormatVersion}
			tt.mutate(c)
			err := ValidateConfig(c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, DefaultServerPort, c.ServerPort)
	assert.Equal(t, DefaultMetricsPort, c.Metrics.Port)
	assert.Equal(t, DefaultUpstreamURL, c.Upstream.BaseURL)
	assert.Equal(t, 30*time.Second, c.Upstream.GetTimeoutOrDefault())
	assert.True(t, c.HandleCORS)
	assert.Equal(t, "localhost:"+DefaultServerPort, c.ListenAddr())
}

func TestSampleConfig(t *testing.T) {
	require.NoError(t, LoadConfig(filepath.Join("..", "..", "..", "conf", "lanzouproxy.conf")))
	c := Config()
	assert.Equal(t, "3000", c.ServerPort)
	assert.Equal(t, DefaultUpstreamURL, c.Upstream.BaseURL)
	assert.Equal(t, DefaultUserAgent, c.Upstream.UserAgent)
	assert.Equal(t, "9090", c.Metrics.Port)
}
