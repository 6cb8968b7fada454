// Package adminapi is a small HTTP introspection and control surface for a running router, grounded on
// caddyserver-caddy's admin.go (adminHandler/AdminRoute/handleConfig,
// ETag via xxhash) but scaled down to this router's handler model
// instead of Caddy's config-graph model.
package adminapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clickrouter/router/router"
)

// Server is the admin HTTP surface bound to one live Router.
type Server struct {
	r   *router.Router
	log *zap.Logger
	srv *http.Server
}

// New builds a Server for r, logging through log.
func New(r *router.Router, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{r: r, log: log}
}

// Handler builds the chi mux exposing:
//
//	GET  /router               router summary (id, state, runcount, element count)
//	GET  /router/config        the stored raw textual configuration, with an xxhash ETag
//	GET  /elements/{name}/{handler}   read a handler
//	POST /elements/{name}/{handler}   write a handler (request body is the raw value)
//	GET  /metrics              Prometheus exposition
func (s *Server) Handler() http.Handler {
	mux := chi.NewRouter()
	mux.Get("/router", s.handleRouterSummary)
	mux.Get("/router/config", s.handleRouterConfig)
	mux.Get("/elements/{name}/{handler}", s.handleHandlerRead)
	mux.Post("/elements/{name}/{handler}", s.handleHandlerWrite)
	mux.Handle("/metrics", promhttp.HandlerFor(s.r.Metrics().Registry, promhttp.HandlerOpts{}))
	return mux
}

// ListenAndServe starts the admin HTTP server on addr, blocking until
// it errors or Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	s.srv = &http.Server{Addr: addr, Handler: s.Handler()}
	s.log.Info("admin API listening", zap.String("addr", addr))
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown closes the admin HTTP server immediately: its listener and
// any open connections are closed without waiting for in-flight
// requests.
func (s *Server) Shutdown() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Close()
}

type routerSummary struct {
	ID          string `json:"id"`
	State       string `json:"state"`
	Runcount    int64  `json:"runcount"`
	NumElements int    `json:"num_elements"`
}

func (s *Server) handleRouterSummary(w http.ResponseWriter, req *http.Request) {
	sum := routerSummary{
		ID:          s.r.ID.String(),
		State:       s.r.State().String(),
		Runcount:    s.r.Runcount(),
		NumElements: s.r.NumElements(),
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleRouterConfig(w http.ResponseWriter, req *http.Request) {
	cfg := s.r.RawConfig()
	etag := fmt.Sprintf(`"%x"`, xxhash.Sum64String(cfg))
	w.Header().Set("ETag", etag)
	if req.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(cfg))
}

func (s *Server) handleHandlerRead(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")
	handler := chi.URLParam(req, "handler")
	h, ok := s.r.ElementByName(name)
	if !ok {
		http.Error(w, fmt.Sprintf("no such element %q", name), http.StatusNotFound)
		return
	}
	errh := router.NewErrorHandler(s.log)
	v, err := s.r.ReadHandlerValue(h, handler, errh)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, v)
}

func (s *Server) handleHandlerWrite(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")
	handler := chi.URLParam(req, "handler")
	h, ok := s.r.ElementByName(name)
	if !ok {
		http.Error(w, fmt.Sprintf("no such element %q", name), http.StatusNotFound)
		return
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	errh := router.NewErrorHandler(s.log)
	if err := s.r.WriteHandlerValue(h, handler, string(body), errh); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
