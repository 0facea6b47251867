// Package httpclient provides a configurable HTTP client for the upstream
// portal and for the proxy's own API. It builds requests from RequestOptions,
// supports query, form and JSON bodies plus raw Cookie headers, and reports
// error statuses as *HTTPError.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Configurator provides the server location and per-client settings.
type Configurator interface {
	GetServerURL() string
	GetUserAgent() string
	GetTimeout() time.Duration
}

// HTTPError is a response with a status code of 400 or above.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// HTTPClient makes requests relative to the configured server URL.
type HTTPClient struct {
	config     Configurator
	httpClient *http.Client
}

// ClientOptions contains options for configuring the HTTP client.
type ClientOptions struct {
	Transport http.RoundTripper // nil means http.DefaultTransport
}

// NewClient creates a new HTTP client using the provided configuration.
func NewClient(config Configurator, opts ...ClientOptions) *HTTPClient {
	var o ClientOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	return &HTTPClient{
		config: config,
		httpClient: &http.Client{
			Transport: o.Transport,
			Timeout:   config.GetTimeout(),
		},
	}
}

// RequestOptions describes one request. Path is joined to the server URL
// unless it is already an absolute http(s) URL. Form and Body are mutually
// exclusive; Form wins when both are set.
type RequestOptions struct {
	Method      string
	Path        string
	QueryParams map[string]string
	Form        url.Values
	Body        []byte
	Headers     map[string]string
	Cookie      string
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Header     http.Header
	Cookies    []*http.Cookie
	Body       []byte
}

func (c *HTTPClient) buildURL(p string, query map[string]string) (string, error) {
	var u *url.URL
	var err error
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		u, err = url.Parse(p)
	} else {
		u, err = url.Parse(c.config.GetServerURL())
		if err == nil {
			u.Path = path.Join("/", u.Path, p)
		}
	}
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %v", err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *HTTPClient) newRequest(ctx context.Context, opts RequestOptions) (*http.Request, error) {
	u, err := c.buildURL(opts.Path, opts.QueryParams)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	contentType := ""
	switch {
	case opts.Form != nil:
		body = strings.NewReader(opts.Form.Encode())
		contentType = "application/x-www-form-urlencoded; charset=UTF-8"
	case opts.Body != nil:
		body = bytes.NewReader(opts.Body)
		contentType = "application/json"
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if ua := c.config.GetUserAgent(); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if opts.Cookie != "" {
		req.Header.Set("Cookie", opts.Cookie)
	}
	return req, nil
}

// Do makes the request and reads the whole body. Statuses of 400 and above
// are returned as *HTTPError.
func (c *HTTPClient) Do(ctx context.Context, opts RequestOptions) (*Response, error) {
	req, err := c.newRequest(ctx, opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, newHTTPError(resp.StatusCode, body)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Cookies:    resp.Cookies(),
		Body:       body,
	}, nil
}

// DoRequest is Do returning only the body.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error) {
	rsp, err := c.Do(ctx, opts)
	if err != nil {
		return nil, err
	}
	return rsp.Body, nil
}

// StreamRequest makes the request and returns the open body together with the
// advertised content length (-1 if unknown). The caller closes the reader.
func (c *HTTPClient) StreamRequest(ctx context.Context, opts RequestOptions) (io.ReadCloser, int64, error) {
	req, err := c.newRequest(ctx, opts)
	if err != nil {
		return nil, 0, err
	}

	// Downloads may outlive the per-request timeout.
	client := *c.httpClient
	client.Timeout = 0
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, 0, newHTTPError(resp.StatusCode, body)
	}

	return resp.Body, resp.ContentLength, nil
}

func newHTTPError(statusCode int, body []byte) *HTTPError {
	if gjson.ValidBytes(body) {
		for _, field := range []string{"message", "error", "info"} {
			if msg := gjson.GetBytes(body, field).String(); msg != "" {
				return &HTTPError{StatusCode: statusCode, Message: msg}
			}
		}
	}
	if statusCode == http.StatusNotFound {
		return &HTTPError{StatusCode: statusCode, Message: "server doesn't implement this endpoint"}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = fmt.Sprintf("server returned status %d", statusCode)
	}
	return &HTTPError{StatusCode: statusCode, Message: msg}
}
