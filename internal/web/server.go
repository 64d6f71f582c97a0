package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/wanderlist/wanderlist/internal/config"
	gosync "github.com/wanderlist/wanderlist/internal/sync"
)

// Server exposes the sync registry as a local JSON API, bound to
// 127.0.0.1. Transport between devices stays manual (the user carries
// the code); this is just a machine-local surface for other tooling.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *log.Logger
	version    string
	port       int
	registry   *gosync.Registry
	prefs      *config.Store
}

// NewServer creates a web server bound to 127.0.0.1 on the configured
// port. If portOverride > 0, it is used instead of the configured port.
func NewServer(version string, logger *log.Logger, registry *gosync.Registry, prefs *config.Store, portOverride int) *Server {
	port := prefs.GetWebPort()
	if portOverride > 0 {
		port = portOverride
	}
	s := &Server{
		logger:   logger,
		version:  version,
		port:     port,
		registry: registry,
		prefs:    prefs,
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/api/v1/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/sync/codes", s.handleSyncCreate)
	s.mux.HandleFunc("/api/v1/sync/apply", s.handleSyncApply)
	s.mux.HandleFunc("/api/v1/sync/stats", s.handleSyncStats)
	s.mux.HandleFunc("/api/v1/sync", s.handleSyncClear)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: s.securityHeaders(s.mux),
	}
	return s
}

// Handler returns the server's root handler. Intended for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening. Returns an error if the port is already in use.
// Returns nil on graceful shutdown (http.ErrServerClosed).
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use: %w", s.port, err)
	}
	s.logger.Printf("Sync API listening on %s", s.httpServer.Addr)
	err = s.httpServer.Serve(ln)
	if err == http.ErrServerClosed {
		return nil // graceful shutdown
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// securityHeaders adds security response headers.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
