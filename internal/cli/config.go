package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// configVersion is the current config file format version
const configVersion = "0.1.0"

// defaultTimeout bounds each request to the proxy.
const defaultTimeout = 60 * time.Second

// Config is the lzcli configuration. It only records where the proxy is; the
// portal session lives in the proxy.
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version"`
	// ServerURL is the URL and port of the proxy
	ServerURL string `yaml:"server_url"`
	// Timeout for each request, Go duration syntax
	Timeout string `yaml:"timeout,omitempty"`
}

var config *Config

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/lzcli on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "lzcli", DefaultConfigFile), nil
}

// LoadConfig loads the configuration from the specified file
// If no file is specified, it uses the default config location
func LoadConfig(file string) error {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	yamlStr, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("unable to read config file: %w", err)
	}

	var c Config
	if err = yaml.Unmarshal(yamlStr, &c); err != nil {
		return fmt.Errorf("unable to parse config file: %w", err)
	}
	if err := c.ValidateConfig(); err != nil {
		return err
	}

	// Morph the server URL before storing
	c.ServerURL = MorphServer(c.ServerURL)

	config = &c
	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// WriteConfig writes the configuration to the specified file
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), os.ModePerm)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	err = os.WriteFile(file, yamlStr, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// ValidateConfig checks for required fields and proper formatting
func (cfg *Config) ValidateConfig() error {
	if cfg.ServerURL == "" {
		return errors.New("server:port is required")
	}
	if !strings.Contains(strings.TrimPrefix(strings.TrimPrefix(cfg.ServerURL, "http://"), "https://"), ":") {
		return errors.New("server:port must include port number")
	}
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			return fmt.Errorf("invalid timeout: %v", err)
		}
	}
	return nil
}

// Print prints the configuration in a human-readable format
func (cfg *Config) Print(w io.Writer) {
	fmt.Fprintf(w, "Server:  %s\n", cfg.ServerURL)
	fmt.Fprintf(w, "Timeout: %s\n", cfg.GetTimeout())
}

// MorphServer ensures the server URL is properly formatted.
// Adds http:// prefix if missing and removes trailing slashes.
func MorphServer(server string) string {
	if server == "" {
		return server
	}

	server = strings.TrimRight(server, "/")

	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "http://" + server
	}

	return server
}

// GetServerURL returns the properly formatted server URL
func (cfg *Config) GetServerURL() string {
	return MorphServer(cfg.ServerURL)
}

// GetUserAgent identifies lzcli to the proxy
func (cfg *Config) GetUserAgent() string {
	return "lzcli/" + getCLIVersion()
}

// GetTimeout returns the request timeout
func (cfg *Config) GetTimeout() time.Duration {
	if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
		return d
	}
	return defaultTimeout
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  `Manage CLI configuration settings like the proxy server address.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Set the proxy server address",
		Long: `Set the proxy server address. The server must include a port.

Example:
  lzcli config set --server localhost:3000
  lzcli config set --server https://proxy.example.com:443 --timeout 2m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			timeout, _ := cmd.Flags().GetString("timeout")
			return setServerConfig(cmd, server, timeout)
		},
	}
	setCmd.Flags().String("server", "", "Proxy server URL and port (e.g., localhost:3000)")
	setCmd.Flags().String("timeout", "", "Request timeout (e.g., 60s)")
	setCmd.MarkFlagRequired("server")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := LoadConfig(configFile); err != nil {
				return err
			}
			cfg := GetConfig()
			return printResult(cmd, map[string]string{
				"server":      cfg.ServerURL,
				"timeout":     cfg.GetTimeout().String(),
				"config_file": configFile,
			}, func(w io.Writer) {
				cfg.Print(w)
				fmt.Fprintf(w, "Config file: %s\n", configFile)
			})
		},
	}

	configCmd.AddCommand(setCmd, showCmd)
	return configCmd
}

// setServerConfig writes a fresh config file pointing at server
func setServerConfig(cmd *cobra.Command, server, timeout string) error {
	cfg := &Config{
		Version:   configVersion,
		ServerURL: MorphServer(server),
		Timeout:   timeout,
	}
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}

	if err := cfg.WriteConfig(configFile); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return printResult(cmd, map[string]string{
		"server":      cfg.ServerURL,
		"config_file": configFile,
	}, func(w io.Writer) {
		fmt.Fprintf(w, "Server configured: %s\n", cfg.ServerURL)
		fmt.Fprintf(w, "Config file: %s\n", configFile)
	})
}
