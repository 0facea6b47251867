package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log the proxy in to the Lanzou portal",
		Long: `Log the proxy in with a portal username and password. The proxy keeps the
session; lzcli stores nothing.

Credentials not given as flags are read from LANZOU_USERNAME and
LANZOU_PASSWORD, in the environment or in a .env file in the current directory.

Example:
  lzcli login -u alice -p secret
  lzcli login  # uses LANZOU_USERNAME and LANZOU_PASSWORD`,
		RunE: runLogin,
	}

	cmd.Flags().StringP("username", "u", "", "Portal username")
	cmd.Flags().StringP("password", "p", "", "Portal password")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	username, password, err := resolveCredentials(username, password)
	if err != nil {
		return err
	}

	msg, err := newAPIClient(GetConfig()).Login(cmd.Context(), username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return printResult(cmd, map[string]string{"message": msg, "username": username}, func(w io.Writer) {
		okLabel.Fprint(w, "✓ ")
		fmt.Fprintf(w, "Logged in as %s\n", username)
	})
}

func newLoginCookieCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login-cookie [COOKIE]",
		Short: "Adopt an existing portal session cookie",
		Long: `Hand the proxy a Cookie header copied from a logged-in browser session.
The proxy checks it by listing folders before adopting it.

Without an argument the cookie is read from LANZOU_COOKIE.

Example:
  lzcli login-cookie "ylogin=123; phpdisk_info=abc"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			cookie, err := resolveCookie(arg)
			if err != nil {
				return err
			}
			msg, err := newAPIClient(GetConfig()).LoginWithCookie(cmd.Context(), cookie)
			if err != nil {
				return fmt.Errorf("cookie login failed: %w", err)
			}
			return printResult(cmd, map[string]string{"message": msg}, func(w io.Writer) {
				okLabel.Fprint(w, "✓ ")
				fmt.Fprintln(w, "Session cookie adopted")
			})
		},
	}
}
