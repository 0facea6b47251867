package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	serverURL string
	timeout   time.Duration
}

func (c testConfig) GetServerURL() string      { return c.serverURL }
func (c testConfig) GetUserAgent() string      { return "lanzouproxy-test/1.0" }
func (c testConfig) GetTimeout() time.Duration { return c.timeout }

func TestDoForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ajaxm.php", r.URL.Path)
		assert.Equal(t, "lanzouproxy-test/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "a=1; b=2", r.Header.Get("Cookie"))
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		assert.Contains(t, r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "login", r.PostForm.Get("task"))

		http.SetCookie(w, &http.Cookie{Name: "phpdisk_info", Value: "xyz", Path: "/"})
		w.Write([]byte(`{"zt":1}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig{serverURL: srv.URL, timeout: time.Second})
	rsp, err := c.Do(context.Background(), RequestOptions{
		Method:  http.MethodPost,
		Path:    "ajaxm.php",
		Form:    url.Values{"task": {"login"}},
		Headers: map[string]string{"X-Requested-With": "XMLHttpRequest"},
		Cookie:  "a=1; b=2",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rsp.StatusCode)
	assert.JSONEq(t, `{"zt":1}`, string(rsp.Body))
	require.Len(t, rsp.Cookies, 1)
	assert.Equal(t, "phpdisk_info", rsp.Cookies[0].Name)
}

func TestDoQueryAndJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/base/api/files", r.URL.Path)
		assert.Equal(t, "12", r.URL.Query().Get("folder_id"))
		body, _ := io.ReadAll(r.Body)
		if len(body) > 0 {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig{serverURL: srv.URL + "/base"})
	body, err := c.DoRequest(context.Background(), RequestOptions{
		Path:        "/api/files",
		QueryParams: map[string]string{"folder_id": "12"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(body))

	_, err = c.DoRequest(context.Background(), RequestOptions{
		Method: http.MethodPost,
		Path:   "api/files",
		Body:   []byte(`{}`),
		QueryParams: map[string]string{
			"folder_id": "12",
		},
	})
	require.NoError(t, err)
}

func TestDoErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"message":"portal down"}`))
		case "/text":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("oops\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig{serverURL: srv.URL})
	ctx := context.Background()

	_, err := c.Do(ctx, RequestOptions{Path: "json"})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Equal(t, "portal down", httpErr.Message)

	_, err = c.Do(ctx, RequestOptions{Path: "text"})
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "oops", httpErr.Message)

	_, err = c.Do(ctx, RequestOptions{Path: "missing"})
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)

	srv.Close()
	_, err = c.Do(ctx, RequestOptions{Path: "json"})
	require.Error(t, err)
	var closedErr *HTTPError
	assert.False(t, errors.As(err, &closedErr))
}

func TestStreamRequestAbsoluteURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "5")
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := NewClient(testConfig{serverURL: "http://unused.invalid"})
	rc, n, err := c.StreamRequest(context.Background(), RequestOptions{Path: srv.URL + "/file/abc"})
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, int64(5), n)
}
