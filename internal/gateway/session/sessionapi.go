package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lanzouproxy/lanzouproxy/internal/common/httpx"
)

// Every gateway route answers 200; success or failure is carried in the body.

func succeed(data any, msg string) (*httpx.Response, error) {
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   &Result{Success: true, Message: msg, Data: data},
	}, nil
}

func fail(r *http.Request, err error) (*httpx.Response, error) {
	msg := err.Error()
	log.Ctx(r.Context()).Debug().Str("path", r.URL.Path).Str("message", msg).Msg("request failed")
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   &Result{Success: false, Message: msg},
	}, nil
}

func (g *Gateway) login(r *http.Request) (*httpx.Response, error) {
	req := &LoginRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return fail(r, err)
	}
	if err := g.Login(r.Context(), req); err != nil {
		return fail(r, err)
	}
	return succeed(nil, msgLoginSucceeded)
}

func (g *Gateway) loginWithCookie(r *http.Request) (*httpx.Response, error) {
	req := &CookieLoginRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return fail(r, err)
	}
	if err := g.LoginWithCookie(r.Context(), req); err != nil {
		return fail(r, err)
	}
	return succeed(nil, msgLoginSucceeded)
}

func (g *Gateway) listFolders(r *http.Request) (*httpx.Response, error) {
	folders, err := g.ListFolders(r.Context())
	if err != nil {
		return fail(r, err)
	}
	return succeed(folders, "")
}

func (g *Gateway) createFolder(r *http.Request) (*httpx.Response, error) {
	req := &CreateFolderRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return fail(r, err)
	}
	created, err := g.CreateFolder(r.Context(), req)
	if err != nil {
		return fail(r, err)
	}
	return succeed(created, "")
}

func (g *Gateway) listFiles(r *http.Request) (*httpx.Response, error) {
	files, err := g.ListFiles(r.Context(), r.URL.Query().Get("folder_id"))
	if err != nil {
		return fail(r, err)
	}
	return succeed(files, "")
}

func (g *Gateway) deleteFile(r *http.Request) (*httpx.Response, error) {
	if err := g.DeleteFile(r.Context(), chi.URLParam(r, "fileID")); err != nil {
		return fail(r, err)
	}
	return succeed(nil, "")
}

func (g *Gateway) shareLink(r *http.Request) (*httpx.Response, error) {
	share, err := g.ShareLink(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		return fail(r, err)
	}
	return succeed(share, "")
}

func (g *Gateway) downloadLink(r *http.Request) (*httpx.Response, error) {
	link, err := g.DownloadLink(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		return fail(r, err)
	}
	return succeed(link, "")
}

func (g *Gateway) recycleBin(r *http.Request) (*httpx.Response, error) {
	entries, err := g.RecycleBin(r.Context())
	if err != nil {
		return fail(r, err)
	}
	return succeed(entries, "")
}

func (g *Gateway) restoreFile(r *http.Request) (*httpx.Response, error) {
	if err := g.RestoreFile(r.Context(), chi.URLParam(r, "fileID")); err != nil {
		return fail(r, err)
	}
	return succeed(nil, "")
}

func (g *Gateway) clearRecycleBin(r *http.Request) (*httpx.Response, error) {
	if err := g.ClearRecycleBin(r.Context()); err != nil {
		return fail(r, err)
	}
	return succeed(nil, "")
}

func (g *Gateway) health(r *http.Request) (*httpx.Response, error) {
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   g.HealthCheck(),
	}, nil
}
