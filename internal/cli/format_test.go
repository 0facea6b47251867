package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/lanzouproxy/lanzouproxy/internal/gateway/session"
)

func TestRawText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{``, ""},
		{`null`, ""},
		{`"123"`, "123"},
		{`123`, "123"},
		{`"2 KB"`, "2 KB"},
		{`true`, "true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rawText(json.RawMessage(tt.raw)), tt.raw)
	}
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 entry", plural(1, "entry", "entries"))
	assert.Equal(t, "0 entries", plural(0, "entry", "entries"))
	assert.Equal(t, "1,234 folders", plural(1234, "folder", "folders"))
}

func TestPrintFolders(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	printFolders(&buf, []session.Folder{
		{Name: "docs", FolderID: json.RawMessage(`100`), ParentID: json.RawMessage(`"0"`)},
		{Name: "photos", FolderID: json.RawMessage(`"101"`), ParentID: json.RawMessage(`100`)},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, []string{"ID", "PARENT", "NAME"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"100", "0", "docs"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"101", "100", "photos"}, strings.Fields(lines[2]))
	assert.Equal(t, "2 folders", lines[3])
}

func TestPrintEmptyListings(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	printFolders(&buf, nil)
	printFiles(&buf, nil)
	printRecycled(&buf, nil)
	assert.Equal(t, "No folders\nNo files\nRecycle bin is empty\n", buf.String())
}

func TestPrintRecycled(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	printRecycled(&buf, []session.RecycledEntry{
		{Name: "old.zip", ID: json.RawMessage(`5`), Size: json.RawMessage(`"1 MB"`), Time: json.RawMessage(`"yesterday"`)},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, []string{"5", "file", "1", "MB", "yesterday", "old.zip"}, strings.Fields(lines[1]))
	assert.Equal(t, "1 entry", lines[2])
}
