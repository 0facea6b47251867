package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lanzouproxy/lanzouproxy/internal/common/httpx"
)

type handlerParam struct {
	Method  string
	Path    string
	Handler httpx.RequestHandler
}

func (g *Gateway) handlers() []handlerParam {
	return []handlerParam{
		{Method: http.MethodPost, Path: "/login", Handler: g.login},
		{Method: http.MethodPost, Path: "/login/cookie", Handler: g.loginWithCookie},
		{Method: http.MethodGet, Path: "/folders", Handler: g.listFolders},
		{Method: http.MethodPost, Path: "/folders", Handler: g.createFolder},
		{Method: http.MethodGet, Path: "/files", Handler: g.listFiles},
		{Method: http.MethodDelete, Path: "/files/{fileID}", Handler: g.deleteFile},
		{Method: http.MethodGet, Path: "/files/{fileID}/share", Handler: g.shareLink},
		{Method: http.MethodGet, Path: "/files/{fileID}/download", Handler: g.downloadLink},
		{Method: http.MethodGet, Path: "/recycle", Handler: g.recycleBin},
		{Method: http.MethodDelete, Path: "/recycle", Handler: g.clearRecycleBin},
		{Method: http.MethodPost, Path: "/recycle/{fileID}/restore", Handler: g.restoreFile},
		{Method: http.MethodGet, Path: "/health", Handler: g.health},
	}
}

// Router registers the gateway routes on r.
func Router(r chi.Router, g *Gateway) {
	for _, h := range g.handlers() {
		r.Method(h.Method, h.Path, httpx.WrapHttpRsp(h.Handler))
	}
}
