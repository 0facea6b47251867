// Package server provides the proxy's HTTP server. It mounts the session
// gateway under /api together with version information, and applies request
// logging, panic recovery, request metrics and CORS.
package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/lanzouproxy/lanzouproxy/internal/common/httpx"
	"github.com/lanzouproxy/lanzouproxy/internal/common/logtrace"
	"github.com/lanzouproxy/lanzouproxy/internal/common/middleware"
	"github.com/lanzouproxy/lanzouproxy/internal/gateway/config"
	"github.com/lanzouproxy/lanzouproxy/internal/gateway/session"
	"github.com/lanzouproxy/lanzouproxy/internal/metrics"
	"github.com/lanzouproxy/lanzouproxy/internal/portal"
)

// GatewayServer is the proxy's API server.
type GatewayServer struct {
	Router  *chi.Mux
	gateway *session.Gateway
}

// NewPortalClient builds the upstream client from the upstream configuration.
// A nil transport uses http.DefaultTransport.
func NewPortalClient(u *config.UpstreamConfig, transport http.RoundTripper) *portal.Client {
	return portal.NewClient(portal.Options{
		BaseURL:        u.BaseURL,
		ShareBaseURL:   u.ShareBaseURL,
		UserAgent:      u.UserAgent,
		AcceptLanguage: u.AcceptLanguage,
		Timeout:        u.GetTimeoutOrDefault(),
		Transport:      transport,
	})
}

// CreateNewServer creates a server in front of gw.
func CreateNewServer(gw *session.Gateway) (*GatewayServer, error) {
	if gw == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	s := &GatewayServer{gateway: gw}
	s.Router = chi.NewRouter()
	return s, nil
}

// MountHandlers sets up middleware and routes.
func (s *GatewayServer) MountHandlers() {
	s.Router.Use(middleware.RequestLogger)
	s.Router.Use(middleware.PanicHandler)
	s.Router.Use(metrics.Middleware)
	if config.Config().HandleCORS {
		s.Router.Use(s.HandleCORS)
	}
	s.Router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.ErrNotFound().Send(w)
	})
	s.mountResourceHandlers(s.Router)
	if logtrace.IsTraceEnabled() {
		fmt.Println("Routes in gateway router")
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			fmt.Printf("%s %s\n", method, route)
			return nil
		}
		if err := chi.Walk(s.Router, walkFunc); err != nil {
			log.Error().Err(err).Msg("Error walking router")
		}
	}
}

func (s *GatewayServer) mountResourceHandlers(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		session.Router(r, s.gateway)
		r.Get("/version", s.getVersion)
	})
}

// GetVersionRsp represents the response for version information.
type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
	ApiVersion    string `json:"apiVersion"`
}

func (s *GatewayServer) getVersion(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	rsp := &GetVersionRsp{
		ServerVersion: "Lanzou Proxy: " + Version,
		ApiVersion:    ApiVersion,
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, rsp)
}

// HandleCORS allows browser front ends on any origin to call the API.
func (s *GatewayServer) HandleCORS(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(next)
}
