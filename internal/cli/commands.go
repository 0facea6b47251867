package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var (
	// Global flags
	jsonOutput   bool
	outputFormat string
	configFile   string
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)
var dimLabel = color.New(color.FgHiBlack)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lzcli [command] [flags]",
	Short: "lzcli - a command line client for the Lanzou proxy",
	Long: `lzcli talks to a running lanzouproxy server. The proxy holds one Lanzou
portal session; lzcli logs it in and browses, shares and downloads files
through it.

Examples:
  # Point lzcli at a proxy
  lzcli config set --server localhost:3000

  # Log the proxy in, reading LANZOU_USERNAME and LANZOU_PASSWORD from .env
  lzcli login

  # List folders and the files in one of them
  lzcli folders
  lzcli files --folder 1234567

  # Fetch a direct download link as JSON
  lzcli download 7654321 --link-only -j`,
	PersistentPreRunE: preRunHandlePersistents,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	// Set up persistent flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "Output format: json or yaml")

	// Add commands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLoginCookieCmd())
	rootCmd.AddCommand(newFoldersCmd())
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newMkdirCmd())
	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newShareCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newRecycleCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error

	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		if structuredOutput() {
			printStructured(os.Stdout, map[string]any{
				"result": 0,
				"error":  err.Error(),
			})
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// preRunHandlePersistents validates the output flags and loads the config
// file for every command except config and version.
func preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	switch outputFormat {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q, use json or yaml", outputFormat)
	}
	if outputFormat == "json" {
		jsonOutput = true
	}

	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}

	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" || c.Name() == "version" {
			return nil
		}
	}

	if err := LoadConfig(configFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errors.New("lzcli config file not found. Configure lzcli with \"lzcli config set --server host:port\" first")
		}
		return err
	}
	return nil
}

// structuredOutput reports whether output should be JSON or YAML.
func structuredOutput() bool {
	return jsonOutput || outputFormat == "yaml"
}

// printStructured writes v as YAML when -o yaml is set, otherwise as
// indented JSON.
func printStructured(w io.Writer, v any) error {
	if outputFormat == "yaml" {
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to format YAML output: %v", err)
		}
		_, err = w.Write(out)
		return err
	}
	out, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to format JSON output: %v", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// printResult prints value wrapped in {result, value} for structured output,
// or calls human otherwise.
func printResult(cmd *cobra.Command, value any, human func(w io.Writer)) error {
	if structuredOutput() {
		out := map[string]any{"result": 1}
		if value != nil {
			out["value"] = value
		}
		return printStructured(cmd.OutOrStdout(), out)
	}
	human(cmd.OutOrStdout())
	return nil
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.1.0"
}
