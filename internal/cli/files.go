package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lanzouproxy/lanzouproxy/internal/gateway/session"
)

func newFoldersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "List the account's folders",
		Long: `List every folder of the logged-in account.

Examples:
  lzcli folders
  lzcli folders -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			folders, err := newAPIClient(GetConfig()).Folders(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd, folders, func(w io.Writer) {
				printFolders(w, folders)
			})
		},
	}
}

func newFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List the files in a folder",
		Long: `List the files in a folder. Without --folder the root folder is listed.

Examples:
  lzcli files
  lzcli files --folder 1234567 -j`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, _ := cmd.Flags().GetString("folder")
			files, err := newAPIClient(GetConfig()).Files(cmd.Context(), folder)
			if err != nil {
				return err
			}
			return printResult(cmd, files, func(w io.Writer) {
				printFiles(w, files)
			})
		},
	}
	cmd.Flags().StringP("folder", "f", "", "Folder ID to list")
	return cmd
}

func newMkdirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mkdir NAME",
		Short: "Create a folder",
		Long: `Create a folder, by default at the root.

Examples:
  lzcli mkdir reports
  lzcli mkdir 2024 --parent 1234567 --desc "yearly reports"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, _ := cmd.Flags().GetString("parent")
			desc, _ := cmd.Flags().GetString("desc")
			created, err := newAPIClient(GetConfig()).CreateFolder(cmd.Context(), &session.CreateFolderRequest{
				Name:        args[0],
				ParentID:    parent,
				Description: desc,
			})
			if err != nil {
				return err
			}
			return printResult(cmd, created, func(w io.Writer) {
				printDone(w, "created", fmt.Sprintf("folder %s (%s)", args[0], rawText(created.FolderID)))
			})
		},
	}
	cmd.Flags().String("parent", "", "Parent folder ID")
	cmd.Flags().String("desc", "", "Folder description")
	return cmd
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm FILE_ID...",
		Short: "Move files to the recycle bin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newAPIClient(GetConfig())
			for _, id := range args {
				if err := c.DeleteFile(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to delete %s: %w", id, err)
				}
			}
			return printResult(cmd, map[string]any{"deleted": args}, func(w io.Writer) {
				for _, id := range args {
					printDone(w, "deleted", id)
				}
			})
		},
	}
}

func newShareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share FILE_ID",
		Short: "Show a file's public share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := newAPIClient(GetConfig()).Share(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, link, func(w io.Writer) {
				fmt.Fprintf(w, "URL:      %s\n", link.URL)
				if link.Password != "" {
					fmt.Fprintf(w, "Password: %s\n", link.Password)
				}
			})
		},
	}
}

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download FILE_ID",
		Short: "Download a file",
		Long: `Resolve a file's direct download link and save the file.

The destination defaults to the name in the download URL. Use --dest - to write
to standard output, or --link-only to print the link without downloading.

Examples:
  lzcli download 7654321
  lzcli download 7654321 --dest report.pdf
  lzcli download 7654321 --link-only`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, _ := cmd.Flags().GetString("dest")
			linkOnly, _ := cmd.Flags().GetBool("link-only")

			c := newAPIClient(GetConfig())
			link, err := c.DownloadLink(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if linkOnly {
				return printResult(cmd, link, func(w io.Writer) {
					fmt.Fprintln(w, link.URL)
				})
			}

			if dest == "" {
				dest = destinationName(link.URL, args[0])
			}
			n, err := saveDownload(cmd.Context(), c, link.URL, dest, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if dest == "-" {
				return nil
			}
			return printResult(cmd, map[string]any{"url": link.URL, "file": dest, "bytes": n}, func(w io.Writer) {
				printDone(w, "saved", printer.Sprintf("%s (%d bytes)", dest, n))
			})
		},
	}
	cmd.Flags().StringP("dest", "d", "", "Destination file, - for standard output")
	cmd.Flags().Bool("link-only", false, "Print the direct link without downloading")
	return cmd
}

// destinationName picks a local file name from the last segment of the
// download URL, falling back to the file ID.
func destinationName(rawURL, id string) string {
	if u, err := url.Parse(rawURL); err == nil {
		base := path.Base(u.Path)
		if base != "" && base != "." && base != "/" && !strings.HasPrefix(base, "?") {
			return base
		}
	}
	return "lanzou-" + id
}

// saveDownload streams rawURL into dest, or into stdout when dest is "-".
func saveDownload(ctx context.Context, c *apiClient, rawURL, dest string, stdout io.Writer) (int64, error) {
	body, _, err := c.Fetch(ctx, rawURL)
	if err != nil {
		return 0, fmt.Errorf("download failed: %w", err)
	}
	defer body.Close()

	if dest == "-" {
		return io.Copy(stdout, body)
	}

	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("unable to create %s: %w", dest, err)
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return 0, fmt.Errorf("download failed: %w", err)
	}
	return n, nil
}

func newRecycleCmd() *cobra.Command {
	recycleCmd := &cobra.Command{
		Use:   "recycle",
		Short: "Manage the recycle bin",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the recycle bin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := newAPIClient(GetConfig()).RecycleBin(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd, entries, func(w io.Writer) {
				printRecycled(w, entries)
			})
		},
	}

	restoreCmd := &cobra.Command{
		Use:   "restore FILE_ID...",
		Short: "Restore files from the recycle bin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newAPIClient(GetConfig())
			for _, id := range args {
				if err := c.Restore(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to restore %s: %w", id, err)
				}
			}
			return printResult(cmd, map[string]any{"restored": args}, func(w io.Writer) {
				for _, id := range args {
					printDone(w, "restored", id)
				}
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the recycle bin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return fmt.Errorf("emptying the recycle bin cannot be undone, pass --yes to confirm")
			}
			if err := newAPIClient(GetConfig()).ClearRecycleBin(cmd.Context()); err != nil {
				return err
			}
			return printResult(cmd, nil, func(w io.Writer) {
				printDone(w, "emptied", "recycle bin")
			})
		},
	}
	clearCmd.Flags().Bool("yes", false, "Confirm emptying the recycle bin")

	recycleCmd.AddCommand(listCmd, restoreCmd, clearCmd)
	return recycleCmd
}
