package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lanzouproxy/lanzouproxy/internal/common/apperrors"
	"github.com/lanzouproxy/lanzouproxy/internal/metrics"
	"github.com/lanzouproxy/lanzouproxy/internal/portal"
)

// healthTimeFormat is ISO-8601 UTC with millisecond precision.
const healthTimeFormat = "2006-01-02T15:04:05.000Z"

// Upstream is the portal as seen by the gateway. *portal.Client implements it.
type Upstream interface {
	Landing(ctx context.Context) ([]*http.Cookie, error)
	Login(ctx context.Context, cookie, username, password string) ([]*http.Cookie, error)
	ListFolders(ctx context.Context, cookie string) ([]portal.Folder, error)
	ListFiles(ctx context.Context, cookie, folderID string) ([]portal.FileEntry, error)
	CreateFolder(ctx context.Context, cookie, name, parentID, description string) (json.RawMessage, error)
	DeleteFile(ctx context.Context, cookie, fileID string) error
	ShareLink(ctx context.Context, cookie, fileID string) (*portal.Share, error)
	DownloadLink(ctx context.Context, cookie, fileID string) (string, error)
	RecycleBin(ctx context.Context, cookie string) ([]portal.FileEntry, error)
	RestoreFile(ctx context.Context, cookie, fileID string) error
	ClearRecycleBin(ctx context.Context, cookie string) error
}

var _ Upstream = (*portal.Client)(nil)

// Gateway mediates every operation against the shared portal session.
type Gateway struct {
	upstream   Upstream
	store      *Store
	now        func() time.Time
	lastHealth atomic.Int64
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithClock sets the clock used for health timestamps and login times.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// WithStore sets the session store.
func WithStore(s *Store) Option {
	return func(g *Gateway) {
		g.store = s
	}
}

// NewGateway returns a logged-out gateway in front of upstream.
func NewGateway(upstream Upstream, opts ...Option) *Gateway {
	g := &Gateway{
		upstream: upstream,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.store == nil {
		g.store = NewStore()
	}
	metrics.SetLoggedIn(g.store.Load().LoggedIn())
	return g
}

// Session returns the current session snapshot.
func (g *Gateway) Session() *Snapshot {
	return g.store.Load()
}

// upstreamError classifies a portal client error. Rejections carry the
// portal's info, or fallback when it sent none; everything else is a
// transport failure carrying the transport's message.
func upstreamError(err error, fallback string) apperrors.Error {
	if rej, ok := portal.IsRejected(err); ok {
		msg := rej.Info
		if msg == "" {
			msg = fallback
		}
		return ErrUpstreamRejected.MsgErr(msg, err)
	}
	return ErrTransportFailure.MsgErr(err.Error(), err)
}

// authenticated loads the snapshot an operation will use throughout.
func (g *Gateway) authenticated() (*Snapshot, apperrors.Error) {
	snap := g.store.Load()
	if !snap.LoggedIn() {
		return nil, ErrNotAuthenticated
	}
	return snap, nil
}

func (g *Gateway) loginFailed(ctx context.Context, method string, err apperrors.Error) apperrors.Error {
	metrics.RecordLoginAttempt(method, false)
	log.Ctx(ctx).Info().Str("method", method).Str("reason", err.Error()).Msg("login failed")
	return err
}

// Login authenticates with username and password. On success the cookies set
// by the authentication reply replace the session. On any failure the
// current session is left as it was.
func (g *Gateway) Login(ctx context.Context, req *LoginRequest) apperrors.Error {
	if err := validateRequest(req); err != nil {
		return err
	}

	landing, err := g.upstream.Landing(ctx)
	if err != nil {
		return g.loginFailed(ctx, MethodPassword, upstreamError(err, msgLoginFailed))
	}

	cookies, err := g.upstream.Login(ctx, NewCookieJar(landing).Header(), req.Username, req.Password)
	if err != nil {
		return g.loginFailed(ctx, MethodPassword, upstreamError(err, msgLoginFailed))
	}

	jar := NewCookieJar(cookies)
	if jar.Len() == 0 {
		return g.loginFailed(ctx, MethodPassword, ErrUpstreamRejected.Msg(msgNoSessionCookies))
	}

	g.store.install(jar, req.Username, MethodPassword, g.now())
	metrics.RecordLoginAttempt(MethodPassword, true)
	metrics.SetLoggedIn(true)
	log.Ctx(ctx).Info().Str("username", req.Username).Int("cookies", jar.Len()).Msg("logged in")
	return nil
}

// LoginWithCookie installs an existing portal cookie header as the session
// after checking it with a folder listing.
func (g *Gateway) LoginWithCookie(ctx context.Context, req *CookieLoginRequest) apperrors.Error {
	if err := validateRequest(req); err != nil {
		return err
	}
	jar, aerr := ParseCookieHeader(req.Cookie)
	if aerr != nil {
		return aerr
	}
	if jar.Len() == 0 {
		return ErrInvalidRequest.Msg("cookie is required")
	}

	if _, err := g.upstream.ListFolders(ctx, jar.Header()); err != nil {
		return g.loginFailed(ctx, MethodCookie, upstreamError(err, msgLoginFailed))
	}

	g.store.install(jar, "", MethodCookie, g.now())
	metrics.RecordLoginAttempt(MethodCookie, true)
	metrics.SetLoggedIn(true)
	log.Ctx(ctx).Info().Int("cookies", jar.Len()).Msg("logged in with cookie")
	return nil
}

// ListFolders lists the folders under the root.
func (g *Gateway) ListFolders(ctx context.Context) ([]Folder, apperrors.Error) {
	snap, aerr := g.authenticated()
	if aerr != nil {
		return nil, aerr
	}
	records, err := g.upstream.ListFolders(ctx, snap.Cookies().Header())
	if err != nil {
		return nil, upstreamError(err, msgFoldersFailed)
	}
	folders := make([]Folder, 0, len(records))
	for _, r := range records {
		folders = append(folders, Folder{Name: r.Name, FolderID: r.FolderID, ParentID: r.ParentID})
	}
	return folders, nil
}

// ListFiles lists the files in folderID. An empty folderID lists the root.
func (g *Gateway) ListFiles(ctx context.Context, folderID string) ([]FileEntry, apperrors.Error) {
	snap, aerr := g.authenticated()
	if aerr != nil {
		return nil, aerr
	}
	records, err := g.upstream.ListFiles(ctx, snap.Cookies().Header(), folderID)
	if err != nil {
		return nil, upstreamError(err, msgFilesFailed)
	}
	files := make([]FileEntry, 0, len(records))
	for _, r := range records {
		files = append(files, FileEntry{
			Name:     r.Name,
			ID:       r.ID,
			Size:     r.Size,
			Time:     r.Time,
			Downs:    r.Downs,
			IsFolder: r.IsFolder,
		})
	}
	return files, nil
}

// HealthCheck reports the login state. It never contacts the portal and its
// timestamps never go backwards, even if the wall clock does.
func (g *Gateway) HealthCheck() Health {
	ts := g.now().UnixMilli()
	for {
		last := g.lastHealth.Load()
		if ts <= last {
			ts = last
			break
		}
		if g.lastHealth.CompareAndSwap(last, ts) {
			break
		}
	}
	return Health{
		Status:     "ok",
		IsLoggedIn: g.store.Load().LoggedIn(),
		Timestamp:  time.UnixMilli(ts).UTC().Format(healthTimeFormat),
	}
}

// CreateFolder creates a folder under req.ParentID, the root when empty.
func (g *Gateway) CreateFolder(ctx context.Context, req *CreateFolderRequest) (*CreatedFolder, apperrors.Error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	snap, aerr := g.authenticated()
	if aerr != nil {
		return nil, aerr
	}
	parentID := req.ParentID
	if parentID == "" {
		parentID = "0"
	}
	id, err := g.upstream.CreateFolder(ctx, snap.Cookies().Header(), req.Name, parentID, req.Description)
	if err != nil {
		return nil, upstreamError(err, msgMkdirFailed)
	}
	log.Ctx(ctx).Info().Str("name", req.Name).RawJSON("fol_id", id).Msg("folder created")
	return &CreatedFolder{FolderID: id}, nil
}

// DeleteFile moves a file to the recycle bin.
func (g *Gateway) DeleteFile(ctx context.Context, fileID string) apperrors.Error {
	if fileID == "" {
		return ErrInvalidRequest.Msg("file id is required")
	}
	snap, aerr := g.authenticated()
	if aerr != nil {
		return aerr
	}
	if err := g.upstream.DeleteFile(ctx, snap.Cookies().Header(), fileID); err != nil {
		return upstreamError(err, msgDeleteFailed)
	}
	return nil
}

// ShareLink returns a file's public link.
func (g *Gateway) ShareLink(ctx context.Context, fileID string) (*ShareLink, apperrors.Error) {
	if fileID == "" {
		return nil, ErrInvalidRequest.Msg("file id is required")
	}
	snap, aerr := g.authenticated()
	if aerr != nil {
		return nil, aerr
	}
	share, err := g.upstream.ShareLink(ctx, snap.Cookies().Header(), fileID)
	if err != nil {
		return nil, upstreamError(err, msgShareFailed)
	}
	return &ShareLink{URL: share.URL, Password: share.Password}, nil
}

// DownloadLink resolves a file's direct download URL.
func (g *Gateway) DownloadLink(ctx context.Context, fileID string) (*DownloadLink, apperrors.Error) {
	if fileID == "" {
		return nil, ErrInvalidRequest.Msg("file id is required")
	}
	snap, aerr := g.authenticated()
	if aerr != nil {
		return nil, aerr
	}
	link, err := g.upstream.DownloadLink(ctx, snap.Cookies().Header(), fileID)
	if err != nil {
		return nil, upstreamError(err, msgDownloadFailed)
	}
	return &DownloadLink{URL: link}, nil
}

// RecycleBin lists the recycle bin.
func (g *Gateway) RecycleBin(ctx context.Context) ([]RecycledEntry, apperrors.Error) {
	snap, aerr := g.authenticated()
	if aerr != nil {
		return nil, aerr
	}
	records, err := g.upstream.RecycleBin(ctx, snap.Cookies().Header())
	if err != nil {
		return nil, upstreamError(err, msgRecycleFailed)
	}
	entries := make([]RecycledEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, RecycledEntry{
			Name:     r.Name,
			ID:       r.ID,
			Size:     r.Size,
			Time:     r.Time,
			IsFolder: r.IsFolder,
		})
	}
	return entries, nil
}

// RestoreFile restores a file from the recycle bin.
func (g *Gateway) RestoreFile(ctx context.Context, fileID string) apperrors.Error {
	if fileID == "" {
		return ErrInvalidRequest.Msg("file id is required")
	}
	snap, aerr := g.authenticated()
	if aerr != nil {
		return aerr
	}
	if err := g.upstream.RestoreFile(ctx, snap.Cookies().Header(), fileID); err != nil {
		return upstreamError(err, msgRestoreFailed)
	}
	return nil
}

// ClearRecycleBin empties the recycle bin.
func (g *Gateway) ClearRecycleBin(ctx context.Context) apperrors.Error {
	snap, aerr := g.authenticated()
	if aerr != nil {
		return aerr
	}
	if err := g.upstream.ClearRecycleBin(ctx, snap.Cookies().Header()); err != nil {
		return upstreamError(err, msgClearFailed)
	}
	return nil
}
