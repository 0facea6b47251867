package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"

	"github.com/lanzouproxy/lanzouproxy/internal/gateway/server"
	"github.com/lanzouproxy/lanzouproxy/internal/gateway/session"
)

// healthPollInterval is the delay between health probes while waiting.
var healthPollInterval = 500 * time.Millisecond

var errNotLoggedIn = errors.New("proxy is not logged in")

func newHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the proxy is up",
		Long: `Query the proxy's health endpoint and report whether it holds a portal session.

With --wait, keep probing until the proxy answers or the wait elapses. Combined
with --logged-in, also wait until the proxy is logged in.

Examples:
  lzcli health
  lzcli health --wait 30s --logged-in`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wait, _ := cmd.Flags().GetDuration("wait")
			loggedIn, _ := cmd.Flags().GetBool("logged-in")
			h, err := waitForHealth(cmd.Context(), newAPIClient(GetConfig()), wait, loggedIn)
			if err != nil {
				return fmt.Errorf("proxy is not healthy: %w", err)
			}
			return printResult(cmd, h, func(w io.Writer) {
				printHealth(w, h)
			})
		},
	}
	cmd.Flags().Duration("wait", 0, "Keep probing for up to this long")
	cmd.Flags().Bool("logged-in", false, "Also require the proxy to hold a session")
	return cmd
}

// waitForHealth probes the proxy once, or until wait elapses when wait is
// positive.
func waitForHealth(ctx context.Context, c *apiClient, wait time.Duration, requireLogin bool) (*session.Health, error) {
	probe := func() (*session.Health, error) {
		h, err := c.Health(ctx)
		if err != nil {
			return nil, err
		}
		if requireLogin && !h.IsLoggedIn {
			return h, errNotLoggedIn
		}
		return h, nil
	}
	if wait <= 0 {
		return probe()
	}

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	var h *session.Health
	err := retry.Do(
		func() error {
			var err error
			h, err = probe()
			return err
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(healthPollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func printHealth(w io.Writer, h *session.Health) {
	fmt.Fprintf(w, "Status:    %s\n", h.Status)
	fmt.Fprint(w, "Session:   ")
	if h.IsLoggedIn {
		okLabel.Fprintln(w, "logged in")
	} else {
		errorLabel.Fprintln(w, "logged out")
	}
	fmt.Fprintf(w, "Timestamp: %s\n", h.Timestamp)
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of lzcli and, if configured, of the proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := map[string]any{
				"version":     getCLIVersion(),
				"config_file": configFile,
			}
			var warning string
			if err := LoadConfig(configFile); err == nil {
				v, err := newAPIClient(GetConfig()).Version(cmd.Context())
				if err != nil {
					warning = fmt.Sprintf("proxy unreachable: %v", err)
				} else {
					out["server_version"] = v.ServerVersion
					out["api_version"] = v.ApiVersion
					out["api_compatible"] = server.IsApiVersionCompatible(v.ApiVersion)
					if !server.IsApiVersionCompatible(v.ApiVersion) {
						warning = fmt.Sprintf("proxy API version %s is not supported by this lzcli (expects %s)", v.ApiVersion, server.ApiVersion)
					}
				}
			}
			if warning != "" {
				out["warning"] = warning
			}
			return printResult(cmd, out, func(w io.Writer) {
				fmt.Fprintf(w, "lzcli %s\n", getCLIVersion())
				fmt.Fprintf(w, "Config file: %s\n", configFile)
				if sv, ok := out["server_version"]; ok {
					fmt.Fprintf(w, "Proxy: %s (API %s)\n", sv, out["api_version"])
				}
				if warning != "" {
					errorLabel.Fprintf(w, "Warning: %s\n", warning)
				}
			})
		},
	}
}
