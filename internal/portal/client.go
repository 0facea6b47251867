// Package portal is a client for the Lanzou cloud-storage web portal. It
// speaks the portal's browser-facing endpoints: the landing page that hands
// out initial cookies, /ajaxm.php for authentication and download links, and
// /doupload.php for listings and file tasks. Every reply carries a zt
// discriminator; zt == 1 is success and anything else is a *RejectedError.
//
// The client is stateless. Callers pass the Cookie header to use on each call.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lanzouproxy/lanzouproxy/internal/common/httpclient"
	"github.com/lanzouproxy/lanzouproxy/internal/metrics"
)

const (
	pathLanding  = "/"
	pathAjax     = "/ajaxm.php"
	pathUpload   = "/doupload.php"
	pathMyDisk   = "/mydisk.php"
	acceptJSON   = "application/json, text/javascript, */*; q=0.01"
	acceptHTML   = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	ajaxMarker   = "XMLHttpRequest"
	firstPage    = "1"
	taskFolders  = "47"
	taskFiles    = "5"
	taskMkdir    = "2"
	taskDelete   = "6"
	taskShare    = "22"
	taskRecycle  = "recycle_bin"
	taskRestore  = "restore"
	taskCleanBin = "clean_recycle"
)

var signPattern = regexp.MustCompile(`sign\s*=\s*'([^']+)'`)

// Options configures a Client.
type Options struct {
	BaseURL        string            // portal origin
	ShareBaseURL   string            // origin for share links the portal does not spell out
	UserAgent      string            // fixed for the client's lifetime
	AcceptLanguage string            // sent on every call
	Timeout        time.Duration     // per-request timeout, 0 for none
	Transport      http.RoundTripper // nil means http.DefaultTransport
	Now            func() time.Time  // cache-busting timestamps, defaults to time.Now
}

func (o *Options) GetServerURL() string      { return o.BaseURL }
func (o *Options) GetUserAgent() string      { return o.UserAgent }
func (o *Options) GetTimeout() time.Duration { return o.Timeout }

// Client talks to the portal.
type Client struct {
	opts Options
	http httpclient.HTTPClientInterface
}

// NewClient returns a portal client.
func NewClient(opts Options) *Client {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Client{
		opts: opts,
		http: httpclient.NewClient(&opts, httpclient.ClientOptions{Transport: opts.Transport}),
	}
}

// UserAgent returns the user agent sent on every call.
func (c *Client) UserAgent() string {
	return c.opts.UserAgent
}

func (c *Client) timestamp() string {
	return strconv.FormatInt(c.opts.Now().UnixMilli(), 10)
}

func (c *Client) headers(accept, referer string, ajax bool) map[string]string {
	h := map[string]string{
		"Accept":          accept,
		"Accept-Language": c.opts.AcceptLanguage,
	}
	if referer != "" {
		h["Referer"] = referer
	}
	if ajax {
		h["X-Requested-With"] = ajaxMarker
	}
	return h
}

// do performs one call and records it. It returns the raw response for
// callers that need cookies or HTML.
func (c *Client) do(ctx context.Context, op string, opts httpclient.RequestOptions) (*httpclient.Response, error) {
	start := time.Now()
	rsp, err := c.http.Do(ctx, opts)
	if err != nil {
		metrics.RecordUpstreamCall(op, metrics.ResultError, time.Since(start))
		log.Ctx(ctx).Warn().Err(err).Str("op", op).Msg("portal call failed")
		return nil, err
	}
	metrics.RecordUpstreamCall(op, metrics.ResultOK, time.Since(start))
	return rsp, nil
}

// call performs one call and decodes the zt envelope. Replies with zt != 1
// come back as *RejectedError together with the response.
func (c *Client) call(ctx context.Context, op string, opts httpclient.RequestOptions) (*httpclient.Response, reply, error) {
	start := time.Now()
	rsp, err := c.http.Do(ctx, opts)
	if err != nil {
		metrics.RecordUpstreamCall(op, metrics.ResultError, time.Since(start))
		log.Ctx(ctx).Warn().Err(err).Str("op", op).Msg("portal call failed")
		return nil, reply{}, err
	}
	r := decodeReply(rsp.Body)
	if !r.ok() {
		metrics.RecordUpstreamCall(op, metrics.ResultRejected, time.Since(start))
		log.Ctx(ctx).Info().Str("op", op).Int64("zt", r.status).Str("info", r.message()).Msg("portal rejected call")
		return rsp, r, r.rejected(op)
	}
	metrics.RecordUpstreamCall(op, metrics.ResultOK, time.Since(start))
	return rsp, r, nil
}

func (c *Client) uploadTask(ctx context.Context, op, cookie string, params map[string]string) (reply, error) {
	_, r, err := c.call(ctx, op, httpclient.RequestOptions{
		Method:      http.MethodGet,
		Path:        pathUpload,
		QueryParams: params,
		Headers:     c.headers(acceptJSON, c.opts.BaseURL+pathMyDisk, true),
		Cookie:      cookie,
	})
	return r, err
}

// Landing fetches the landing page and returns the cookies it sets.
func (c *Client) Landing(ctx context.Context) ([]*http.Cookie, error) {
	rsp, err := c.do(ctx, OpLanding, httpclient.RequestOptions{
		Method:  http.MethodGet,
		Path:    pathLanding,
		Headers: c.headers(acceptHTML, "", false),
	})
	if err != nil {
		return nil, err
	}
	return rsp.Cookies, nil
}

// Login submits the credentials with the landing cookies attached and returns
// the cookies set by the authentication reply.
func (c *Client) Login(ctx context.Context, cookie, username, password string) ([]*http.Cookie, error) {
	h := c.headers(acceptJSON, c.opts.BaseURL+"/", true)
	h["Origin"] = c.opts.BaseURL
	rsp, _, err := c.call(ctx, OpLogin, httpclient.RequestOptions{
		Method: http.MethodPost,
		Path:   pathAjax,
		Form: url.Values{
			"action":   {"login"},
			"task":     {"login"},
			"username": {username},
			"password": {password},
		},
		Headers: h,
		Cookie:  cookie,
	})
	if err != nil {
		return nil, err
	}
	return rsp.Cookies, nil
}

// ListFolders lists the folders below the root.
func (c *Client) ListFolders(ctx context.Context, cookie string) ([]Folder, error) {
	r, err := c.uploadTask(ctx, OpListFolders, cookie, map[string]string{
		"task":      taskFolders,
		"folder_id": RootFolderID,
		"pg":        firstPage,
		"t":         c.timestamp(),
	})
	if err != nil {
		return nil, err
	}
	recs := r.records()
	folders := make([]Folder, 0, len(recs))
	for _, rec := range recs {
		folders = append(folders, toFolder(rec))
	}
	return folders, nil
}

// ListFiles lists the first page of folderID. An empty folderID lists the
// root. Empty-folder placeholders are suppressed.
func (c *Client) ListFiles(ctx context.Context, cookie, folderID string) ([]FileEntry, error) {
	r, err := c.uploadTask(ctx, OpListFiles, cookie, map[string]string{
		"task":      taskFiles,
		"folder_id": folderID,
		"pg":        firstPage,
		"showempty": "0",
		"t":         c.timestamp(),
	})
	if err != nil {
		return nil, err
	}
	return fileEntries(r), nil
}

func fileEntries(r reply) []FileEntry {
	recs := r.records()
	files := make([]FileEntry, 0, len(recs))
	for _, rec := range recs {
		files = append(files, toFileEntry(rec))
	}
	return files
}

// CreateFolder creates a folder and returns the new folder's id as encoded by
// the portal.
func (c *Client) CreateFolder(ctx context.Context, cookie, name, parentID, description string) (json.RawMessage, error) {
	r, err := c.uploadTask(ctx, OpCreateFolder, cookie, map[string]string{
		"task":               taskMkdir,
		"parent_id":          parentID,
		"folder_name":        name,
		"folder_description": description,
	})
	if err != nil {
		return nil, err
	}
	return raw(r.text), nil
}

// DeleteFile moves a file to the recycle bin.
func (c *Client) DeleteFile(ctx context.Context, cookie, fileID string) error {
	_, err := c.uploadTask(ctx, OpDeleteFile, cookie, map[string]string{
		"task":    taskDelete,
		"file_id": fileID,
	})
	return err
}

// ShareLink returns the public link of a file. When the reply does not name
// the share host, the link is built from ShareBaseURL and the file id.
func (c *Client) ShareLink(ctx context.Context, cookie, fileID string) (*Share, error) {
	r, err := c.uploadTask(ctx, OpShareLink, cookie, map[string]string{
		"task":    taskShare,
		"file_id": fileID,
	})
	if err != nil {
		return nil, err
	}
	share := &Share{URL: c.opts.ShareBaseURL + "/" + fileID}
	if r.info.IsObject() {
		host := r.info.Get("is_newd").String()
		fid := r.info.Get("f_id").String()
		if host != "" && fid != "" {
			share.URL = host + "/" + fid
		}
		if r.info.Get("onof").String() == "1" {
			share.Password = r.info.Get("pwd").String()
		}
	}
	return share, nil
}

// DownloadLink resolves a direct download URL: it loads the file's download
// page, extracts the sign token and exchanges it at /ajaxm.php.
func (c *Client) DownloadLink(ctx context.Context, cookie, fileID string) (string, error) {
	q := url.Values{"item": {"files"}, "action": {"down"}, "id": {fileID}}
	pageURL := c.opts.BaseURL + pathMyDisk + "?" + q.Encode()
	page, err := c.do(ctx, OpDownloadPage, httpclient.RequestOptions{
		Method:  http.MethodGet,
		Path:    pageURL,
		Headers: c.headers(acceptHTML, c.opts.BaseURL+pathMyDisk, false),
		Cookie:  cookie,
	})
	if err != nil {
		return "", err
	}
	m := signPattern.FindSubmatch(page.Body)
	if m == nil {
		return "", &RejectedError{Op: OpDownloadPage, Info: "download sign not found"}
	}

	_, r, err := c.call(ctx, OpDownloadLink, httpclient.RequestOptions{
		Method: http.MethodPost,
		Path:   pathAjax,
		Form: url.Values{
			"action": {"downprocess"},
			"sign":   {string(m[1])},
			"ves":    {"1"},
		},
		Headers: c.headers(acceptJSON, pageURL, true),
		Cookie:  cookie,
	})
	if err != nil {
		return "", err
	}
	dom := r.root.Get("dom").String()
	path := r.root.Get("url").String()
	if dom == "" || path == "" {
		return "", &RejectedError{Op: OpDownloadLink, Status: r.status, Info: "download link missing from reply"}
	}
	return dom + "/file/" + path, nil
}

// RecycleBin lists the recycle bin.
func (c *Client) RecycleBin(ctx context.Context, cookie string) ([]FileEntry, error) {
	r, err := c.uploadTask(ctx, OpRecycleBin, cookie, map[string]string{
		"task": taskRecycle,
		"t":    c.timestamp(),
	})
	if err != nil {
		return nil, err
	}
	return fileEntries(r), nil
}

// RestoreFile restores a file from the recycle bin.
func (c *Client) RestoreFile(ctx context.Context, cookie, fileID string) error {
	_, err := c.uploadTask(ctx, OpRestoreFile, cookie, map[string]string{
		"task":    taskRestore,
		"file_id": fileID,
	})
	return err
}

// ClearRecycleBin empties the recycle bin.
func (c *Client) ClearRecycleBin(ctx context.Context, cookie string) error {
	_, err := c.uploadTask(ctx, OpClearRecycle, cookie, map[string]string{
		"task": taskCleanBin,
	})
	return err
}

// IsRejected reports whether err is a portal rejection and returns it.
func IsRejected(err error) (*RejectedError, bool) {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
