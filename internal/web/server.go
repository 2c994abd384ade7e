// Package web provides an HTTP status server for the lift-controller daemon.
package web

import (
	"context"
	"net"
	"net/http"

	"github.com/sweeney/lift-controller/internal/status"
)

// Metrics is refreshed from the tracker on every scrape.
type Metrics interface {
	Observe(snap status.Snapshot)
	Handler() http.Handler
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	metrics    Metrics
}

// New creates a Server that reads state from the given tracker.
// metrics may be nil, in which case /metrics is not served.
func New(addr string, tracker *status.Tracker, metrics Metrics) *Server {
	s := &Server{tracker: tracker, metrics: metrics}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	if metrics != nil {
		mux.HandleFunc("/metrics", s.handleMetrics)
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap, s.metrics != nil)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.Observe(s.tracker.Snapshot())
	s.metrics.Handler().ServeHTTP(w, r)
}
