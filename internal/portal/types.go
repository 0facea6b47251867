package portal

import (
	"encoding/json"
	"fmt"
)

// RootFolderID is the portal's sentinel for the root folder, and the
// folder_id value of records that are not folders.
const RootFolderID = "-1"

// Operation names used in logs and metrics.
const (
	OpLanding      = "landing"
	OpLogin        = "login"
	OpListFolders  = "list_folders"
	OpListFiles    = "list_files"
	OpCreateFolder = "create_folder"
	OpDeleteFile   = "delete_file"
	OpShareLink    = "share_link"
	OpDownloadPage = "download_page"
	OpDownloadLink = "download_link"
	OpRecycleBin   = "recycle_bin"
	OpRestoreFile  = "restore_file"
	OpClearRecycle = "clear_recycle"
)

// Folder is one record of a folder listing. Identifiers keep the JSON
// encoding the portal used.
type Folder struct {
	Name     string
	FolderID json.RawMessage
	ParentID json.RawMessage
}

// FileEntry is one record of a file or recycle-bin listing. Size, Time and
// Downs are forwarded as the portal encoded them.
type FileEntry struct {
	Name     string
	ID       json.RawMessage
	Size     json.RawMessage
	Time     json.RawMessage
	Downs    json.RawMessage
	IsFolder bool
}

// Share is a public share link for a file.
type Share struct {
	URL      string
	Password string
}

// RejectedError reports a reply whose zt discriminator was not 1. Info is
// the portal's message, possibly empty.
type RejectedError struct {
	Op     string
	Status int64
	Info   string
}

func (e *RejectedError) Error() string {
	if e.Info == "" {
		return fmt.Sprintf("portal %s rejected (zt=%d)", e.Op, e.Status)
	}
	return fmt.Sprintf("portal %s rejected (zt=%d): %s", e.Op, e.Status, e.Info)
}
