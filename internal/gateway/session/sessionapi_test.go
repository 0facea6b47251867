package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/lanzouproxy/lanzouproxy/internal/portal"
)

func newTestRouter(g *Gateway) http.Handler {
	r := chi.NewRouter()
	Router(r, g)
	return r
}

func executeTestRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterLoginFlow(t *testing.T) {
	up := newFakeUpstream()
	h := newTestRouter(NewGateway(up))

	rr := executeTestRequest(t, h, http.MethodGet, "/folders", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":false,"message":"not logged in"}`, rr.Body.String())

	rr = executeTestRequest(t, h, http.MethodPost, "/login", `{"username":"alice","password":"secret"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"login successful"}`, rr.Body.String())

	rr = executeTestRequest(t, h, http.MethodGet, "/folders", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":[{"name":"docs","fol_id":"100","pid":"0"}]}`, rr.Body.String())

	rr = executeTestRequest(t, h, http.MethodGet, "/files?folder_id=100", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":[{"name":"a.txt","id":1,"size":"10B","time":"t","downs":0,"is_folder":false}]}`, rr.Body.String())
	assert.Equal(t, []string{"100"}, up.args())

	rr = executeTestRequest(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", gjson.Get(rr.Body.String(), "status").String())
	assert.True(t, gjson.Get(rr.Body.String(), "isLoggedIn").Bool())
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, gjson.Get(rr.Body.String(), "timestamp").String())
}

func TestRouterFailuresAnswer200(t *testing.T) {
	up := newFakeUpstream()
	h := newTestRouter(NewGateway(up))

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		wantMsg string
	}{
		{"malformed json", http.MethodPost, "/login", `{"username":`, "unable to parse request data"},
		{"missing body", http.MethodPost, "/login", "", "unable to parse request data"},
		{"missing password", http.MethodPost, "/login", `{"username":"alice"}`, "password is required"},
		{"missing cookie", http.MethodPost, "/login/cookie", `{}`, "cookie is required"},
		{"logged out files", http.MethodGet, "/files", "", "not logged in"},
		{"logged out recycle", http.MethodGet, "/recycle", "", "not logged in"},
		{"logged out share", http.MethodGet, "/files/9/share", "", "not logged in"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := executeTestRequest(t, h, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusOK, rr.Code)
			assert.False(t, gjson.Get(rr.Body.String(), "success").Bool())
			assert.Equal(t, tt.wantMsg, gjson.Get(rr.Body.String(), "message").String())
		})
	}
	assert.Equal(t, 0, up.total())
}

func TestRouterUpstreamRejection(t *testing.T) {
	up := newFakeUpstream()
	up.login = func(string, string, string) ([]*http.Cookie, error) {
		return nil, &portal.RejectedError{Op: portal.OpLogin, Info: "wrong password"}
	}
	h := newTestRouter(NewGateway(up))

	rr := executeTestRequest(t, h, http.MethodPost, "/login", `{"username":"alice","password":"bad"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":false,"message":"wrong password"}`, rr.Body.String())
}

func TestRouterFileRoutes(t *testing.T) {
	up := newFakeUpstream()
	h := newTestRouter(loggedInGateway(t, up))

	rr := executeTestRequest(t, h, http.MethodPost, "/folders", `{"name":"new","parent_id":"100","description":"d"}`)
	assert.JSONEq(t, `{"success":true,"data":{"fol_id":"555"}}`, rr.Body.String())
	assert.Equal(t, []string{"new", "100", "d"}, up.args())

	rr = executeTestRequest(t, h, http.MethodDelete, "/files/9", "")
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	assert.Equal(t, 1, up.count(portal.OpDeleteFile))

	rr = executeTestRequest(t, h, http.MethodGet, "/files/9/share", "")
	assert.JSONEq(t, `{"success":true,"data":{"url":"https://share.example/9","password":"1234"}}`, rr.Body.String())

	rr = executeTestRequest(t, h, http.MethodGet, "/files/9/download", "")
	assert.JSONEq(t, `{"success":true,"data":{"url":"https://dl.example/file/abc"}}`, rr.Body.String())

	rr = executeTestRequest(t, h, http.MethodGet, "/recycle", "")
	assert.JSONEq(t, `{"success":true,"data":[]}`, rr.Body.String())

	rr = executeTestRequest(t, h, http.MethodPost, "/recycle/9/restore", "")
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	assert.Equal(t, []string{"9"}, up.args())

	rr = executeTestRequest(t, h, http.MethodDelete, "/recycle", "")
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	assert.Equal(t, 1, up.count(portal.OpClearRecycle))
}
