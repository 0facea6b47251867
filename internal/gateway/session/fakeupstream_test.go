package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/lanzouproxy/lanzouproxy/internal/portal"
)

// fakeUpstream counts calls per operation and remembers the Cookie header
// each one was made with.
type fakeUpstream struct {
	mu      sync.Mutex
	calls   map[string]int
	cookies map[string][]string

	landingCookies []*http.Cookie
	landingErr     error
	login          func(cookie, username, password string) ([]*http.Cookie, error)
	folders        func(cookie string) ([]portal.Folder, error)
	files          func(cookie, folderID string) ([]portal.FileEntry, error)
	opErr          error
	share          *portal.Share
	download       string
	recycled       []portal.FileEntry
	created        json.RawMessage
	lastArgs       []string
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		calls:          make(map[string]int),
		cookies:        make(map[string][]string),
		landingCookies: []*http.Cookie{{Name: "PHPSESSID", Value: "landing"}},
		login: func(cookie, username, password string) ([]*http.Cookie, error) {
			return []*http.Cookie{
				{Name: "phpdisk_info", Value: "token-" + username},
				{Name: "ylogin", Value: "42"},
			}, nil
		},
		folders: func(cookie string) ([]portal.Folder, error) {
			return []portal.Folder{{Name: "docs", FolderID: json.RawMessage(`"100"`), ParentID: json.RawMessage(`"0"`)}}, nil
		},
		files: func(cookie, folderID string) ([]portal.FileEntry, error) {
			return []portal.FileEntry{{
				Name:  "a.txt",
				ID:    json.RawMessage(`1`),
				Size:  json.RawMessage(`"10B"`),
				Time:  json.RawMessage(`"t"`),
				Downs: json.RawMessage(`0`),
			}}, nil
		},
		share:    &portal.Share{URL: "https://share.example/9", Password: "1234"},
		download: "https://dl.example/file/abc",
		created:  json.RawMessage(`"555"`),
	}
}

func (f *fakeUpstream) record(op, cookie string, args ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	f.cookies[op] = append(f.cookies[op], cookie)
	f.lastArgs = args
}

func (f *fakeUpstream) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeUpstream) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeUpstream) lastCookie(op string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := f.cookies[op]
	if len(seen) == 0 {
		return ""
	}
	return seen[len(seen)-1]
}

func (f *fakeUpstream) args() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastArgs
}

func (f *fakeUpstream) Landing(ctx context.Context) ([]*http.Cookie, error) {
	f.record(portal.OpLanding, "")
	return f.landingCookies, f.landingErr
}

func (f *fakeUpstream) Login(ctx context.Context, cookie, username, password string) ([]*http.Cookie, error) {
	f.record(portal.OpLogin, cookie, username)
	return f.login(cookie, username, password)
}

func (f *fakeUpstream) ListFolders(ctx context.Context, cookie string) ([]portal.Folder, error) {
	f.record(portal.OpListFolders, cookie)
	return f.folders(cookie)
}

func (f *fakeUpstream) ListFiles(ctx context.Context, cookie, folderID string) ([]portal.FileEntry, error) {
	f.record(portal.OpListFiles, cookie, folderID)
	return f.files(cookie, folderID)
}

func (f *fakeUpstream) CreateFolder(ctx context.Context, cookie, name, parentID, description string) (json.RawMessage, error) {
	f.record(portal.OpCreateFolder, cookie, name, parentID, description)
	if f.opErr != nil {
		return nil, f.opErr
	}
	return f.created, nil
}

func (f *fakeUpstream) DeleteFile(ctx context.Context, cookie, fileID string) error {
	f.record(portal.OpDeleteFile, cookie, fileID)
	return f.opErr
}

func (f *fakeUpstream) ShareLink(ctx context.Context, cookie, fileID string) (*portal.Share, error) {
	f.record(portal.OpShareLink, cookie, fileID)
	if f.opErr != nil {
		return nil, f.opErr
	}
	return f.share, nil
}

func (f *fakeUpstream) DownloadLink(ctx context.Context, cookie, fileID string) (string, error) {
	f.record(portal.OpDownloadLink, cookie, fileID)
	if f.opErr != nil {
		return "", f.opErr
	}
	return f.download, nil
}

func (f *fakeUpstream) RecycleBin(ctx context.Context, cookie string) ([]portal.FileEntry, error) {
	f.record(portal.OpRecycleBin, cookie)
	if f.opErr != nil {
		return nil, f.opErr
	}
	return f.recycled, nil
}

func (f *fakeUpstream) RestoreFile(ctx context.Context, cookie, fileID string) error {
	f.record(portal.OpRestoreFile, cookie, fileID)
	return f.opErr
}

func (f *fakeUpstream) ClearRecycleBin(ctx context.Context, cookie string) error {
	f.record(portal.OpClearRecycle, cookie)
	return f.opErr
}
