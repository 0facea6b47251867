package session

import (
	"encoding/json"
)

// Result is the envelope of every gateway response except health.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Health is the health check response.
type Health struct {
	Status     string `json:"status"`
	IsLoggedIn bool   `json:"isLoggedIn"`
	Timestamp  string `json:"timestamp"`
}

// Folder is a folder listing record. Identifiers keep the portal's encoding.
type Folder struct {
	Name     string          `json:"name"`
	FolderID json.RawMessage `json:"fol_id"`
	ParentID json.RawMessage `json:"pid"`
}

// FileEntry is a file listing record.
type FileEntry struct {
	Name     string          `json:"name"`
	ID       json.RawMessage `json:"id"`
	Size     json.RawMessage `json:"size"`
	Time     json.RawMessage `json:"time"`
	Downs    json.RawMessage `json:"downs"`
	IsFolder bool            `json:"is_folder"`
}

// RecycledEntry is a recycle bin record.
type RecycledEntry struct {
	Name     string          `json:"name"`
	ID       json.RawMessage `json:"id"`
	Size     json.RawMessage `json:"size"`
	Time     json.RawMessage `json:"time"`
	IsFolder bool            `json:"is_folder"`
}

// CreatedFolder is the result of creating a folder.
type CreatedFolder struct {
	FolderID json.RawMessage `json:"fol_id"`
}

// ShareLink is a public link to a file.
type ShareLink struct {
	URL      string `json:"url"`
	Password string `json:"password,omitempty"`
}

// DownloadLink is a direct download URL.
type DownloadLink struct {
	URL string `json:"url"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CookieLoginRequest is the body of POST /api/login/cookie.
type CookieLoginRequest struct {
	Cookie string `json:"cookie" validate:"required"`
}

// CreateFolderRequest is the body of POST /api/folders.
type CreateFolderRequest struct {
	Name        string `json:"name" validate:"required"`
	ParentID    string `json:"parent_id"`
	Description string `json:"description"`
}
