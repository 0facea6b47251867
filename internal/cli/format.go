package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lanzouproxy/lanzouproxy/internal/gateway/session"
)

var (
	titleCaser = cases.Title(language.English)
	printer    = message.NewPrinter(language.English)
)

// rawText renders a raw JSON scalar for display. Strings lose their quotes;
// numbers and other literals print as they are.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// plural returns "1 entry" or "1,234 entries".
func plural(n int, one, many string) string {
	if n == 1 {
		return printer.Sprintf("%d %s", n, one)
	}
	return printer.Sprintf("%d %s", n, many)
}

func newTable(w io.Writer, columns ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cells ...string) {
	fmt.Fprintln(tw, strings.Join(cells, "\t"))
}

func kind(isFolder bool) string {
	if isFolder {
		return "folder"
	}
	return "file"
}

func printFolders(w io.Writer, folders []session.Folder) {
	if len(folders) == 0 {
		dimLabel.Fprintln(w, "No folders")
		return
	}
	tw := newTable(w, "id", "parent", "name")
	for _, f := range folders {
		row(tw, rawText(f.FolderID), rawText(f.ParentID), f.Name)
	}
	tw.Flush()
	dimLabel.Fprintln(w, plural(len(folders), "folder", "folders"))
}

func printFiles(w io.Writer, files []session.FileEntry) {
	if len(files) == 0 {
		dimLabel.Fprintln(w, "No files")
		return
	}
	tw := newTable(w, "id", "type", "size", "time", "downloads", "name")
	for _, f := range files {
		row(tw, rawText(f.ID), kind(f.IsFolder), rawText(f.Size), rawText(f.Time), rawText(f.Downs), f.Name)
	}
	tw.Flush()
	dimLabel.Fprintln(w, plural(len(files), "entry", "entries"))
}

func printRecycled(w io.Writer, entries []session.RecycledEntry) {
	if len(entries) == 0 {
		dimLabel.Fprintln(w, "Recycle bin is empty")
		return
	}
	tw := newTable(w, "id", "type", "size", "time", "name")
	for _, e := range entries {
		row(tw, rawText(e.ID), kind(e.IsFolder), rawText(e.Size), rawText(e.Time), e.Name)
	}
	tw.Flush()
	dimLabel.Fprintln(w, plural(len(entries), "entry", "entries"))
}

// printDone prints "✓ <Action> <subject>".
func printDone(w io.Writer, action, subject string) {
	okLabel.Fprint(w, "✓ ")
	fmt.Fprintf(w, "%s %s\n", titleCaser.String(action), subject)
}
