package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/lanzouproxy/lanzouproxy/internal/common/httpclient"
	"github.com/lanzouproxy/lanzouproxy/internal/gateway/server"
	"github.com/lanzouproxy/lanzouproxy/internal/gateway/session"
)

const apiPrefix = "/api"

// ErrProxyRefused is returned when the proxy answered with success=false.
var ErrProxyRefused = errors.New("proxy refused the request")

// ProxyError carries the message of a success=false answer.
type ProxyError struct {
	Message string
}

func (e *ProxyError) Error() string {
	if e.Message == "" {
		return ErrProxyRefused.Error()
	}
	return e.Message
}

func (e *ProxyError) Unwrap() error { return ErrProxyRefused }

// envelope is the proxy's {success, message, data} answer.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// apiClient calls the proxy API.
type apiClient struct {
	http *httpclient.HTTPClient
}

func newAPIClient(cfg httpclient.Configurator, opts ...httpclient.ClientOptions) *apiClient {
	return &apiClient{http: httpclient.NewClient(cfg, opts...)}
}

// call sends a request and decodes the envelope. When out is non-nil the
// data field is decoded into it. The message is returned on success.
func (c *apiClient) call(ctx context.Context, method, path string, query map[string]string, in any, out any) (string, error) {
	opts := httpclient.RequestOptions{
		Method:      method,
		Path:        apiPrefix + path,
		QueryParams: query,
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return "", fmt.Errorf("failed to encode request: %w", err)
		}
		opts.Body = body
	}
	body, err := c.http.DoRequest(ctx, opts)
	if err != nil {
		return "", err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("failed to parse proxy response: %w", err)
	}
	if !env.Success {
		return "", &ProxyError{Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("failed to parse proxy data: %w", err)
		}
	}
	return env.Message, nil
}

func (c *apiClient) Health(ctx context.Context) (*session.Health, error) {
	body, err := c.http.DoRequest(ctx, httpclient.RequestOptions{Method: http.MethodGet, Path: apiPrefix + "/health"})
	if err != nil {
		return nil, err
	}
	var h session.Health
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("failed to parse health response: %w", err)
	}
	return &h, nil
}

func (c *apiClient) Version(ctx context.Context) (*server.GetVersionRsp, error) {
	body, err := c.http.DoRequest(ctx, httpclient.RequestOptions{Method: http.MethodGet, Path: apiPrefix + "/version"})
	if err != nil {
		return nil, err
	}
	var v server.GetVersionRsp
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("failed to parse version response: %w", err)
	}
	return &v, nil
}

func (c *apiClient) Login(ctx context.Context, username, password string) (string, error) {
	return c.call(ctx, http.MethodPost, "/login", nil, &session.LoginRequest{Username: username, Password: password}, nil)
}

func (c *apiClient) LoginWithCookie(ctx context.Context, cookie string) (string, error) {
	return c.call(ctx, http.MethodPost, "/login/cookie", nil, &session.CookieLoginRequest{Cookie: cookie}, nil)
}

func (c *apiClient) Folders(ctx context.Context) ([]session.Folder, error) {
	var folders []session.Folder
	_, err := c.call(ctx, http.MethodGet, "/folders", nil, nil, &folders)
	return folders, err
}

func (c *apiClient) Files(ctx context.Context, folderID string) ([]session.FileEntry, error) {
	var query map[string]string
	if folderID != "" {
		query = map[string]string{"folder_id": folderID}
	}
	var files []session.FileEntry
	_, err := c.call(ctx, http.MethodGet, "/files", query, nil, &files)
	return files, err
}

func (c *apiClient) CreateFolder(ctx context.Context, req *session.CreateFolderRequest) (*session.CreatedFolder, error) {
	var created session.CreatedFolder
	if _, err := c.call(ctx, http.MethodPost, "/folders", nil, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *apiClient) DeleteFile(ctx context.Context, id string) error {
	_, err := c.call(ctx, http.MethodDelete, "/files/"+id, nil, nil, nil)
	return err
}

func (c *apiClient) Share(ctx context.Context, id string) (*session.ShareLink, error) {
	var link session.ShareLink
	if _, err := c.call(ctx, http.MethodGet, "/files/"+id+"/share", nil, nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *apiClient) DownloadLink(ctx context.Context, id string) (*session.DownloadLink, error) {
	var link session.DownloadLink
	if _, err := c.call(ctx, http.MethodGet, "/files/"+id+"/download", nil, nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// Fetch streams the content behind a direct download URL.
func (c *apiClient) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	return c.http.StreamRequest(ctx, httpclient.RequestOptions{Method: http.MethodGet, Path: rawURL})
}

func (c *apiClient) RecycleBin(ctx context.Context) ([]session.RecycledEntry, error) {
	var entries []session.RecycledEntry
	_, err := c.call(ctx, http.MethodGet, "/recycle", nil, nil, &entries)
	return entries, err
}

func (c *apiClient) Restore(ctx context.Context, id string) error {
	_, err := c.call(ctx, http.MethodPost, "/recycle/"+id+"/restore", nil, nil, nil)
	return err
}

func (c *apiClient) ClearRecycleBin(ctx context.Context) error {
	_, err := c.call(ctx, http.MethodDelete, "/recycle", nil, nil, nil)
	return err
}
