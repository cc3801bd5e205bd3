package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/kumarlokesh/sysd/exercises/cow-trie/internal/store"
)

// MaxValueSize bounds the request body accepted by PUT /keys/{key}.
const MaxValueSize = 1 << 20

// Options configures optional parts of the server
type Options struct {
	Logger zerolog.Logger

	// Gatherer backs the metrics endpoint; nil disables it.
	Gatherer    prometheus.Gatherer
	MetricsPath string
}

// Server represents the HTTP API server
type Server struct {
	store  *store.Store[string]
	server *http.Server
	logger zerolog.Logger
}

// NewServer creates a new API server backed by st
func NewServer(addr string, st *store.Store[string], opts Options) *Server {
	s := &Server{
		store:  st,
		logger: opts.Logger.With().Str("component", "api").Logger(),
	}

	r := mux.NewRouter()
	// Keys are arbitrary byte strings, so keep the escaped form and do not
	// clean "." or "//" segments out of the path.
	r.UseEncodedPath()
	r.SkipClean(true)

	r.Use(s.logRequests)

	r.HandleFunc("/keys/{key:.*}", s.getKey).Methods(http.MethodGet)
	r.HandleFunc("/keys/{key:.*}", s.putKey).Methods(http.MethodPut)
	r.HandleFunc("/keys/{key:.*}", s.deleteKey).Methods(http.MethodDelete)

	r.HandleFunc("/stats", s.stats).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)

	if opts.Gatherer != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	s.server = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens on the configured address and serves until Shutdown is called
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(listener)
}

// Serve serves requests on listener until Shutdown is called
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info().Str("addr", listener.Addr().String()).Msg("server listening")
	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down server")
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.EscapedPath()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// Helper functions for HTTP responses
func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, err error) {
	s.respond(w, status, map[string]string{"error": err.Error()})
}

// keyFromRequest returns the unescaped key addressed by the request path.
func keyFromRequest(r *http.Request) (string, error) {
	key, err := url.PathUnescape(mux.Vars(r)["key"])
	if err != nil {
		return "", fmt.Errorf("invalid key encoding: %w", err)
	}
	return key, nil
}

// getKey handles GET /keys/{key}
func (s *Server) getKey(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	guard, ok := s.store.Get(key)
	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Errorf("key not found"))
		return
	}

	value := guard.Value()
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(value)))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, value)
}

// putKey handles PUT /keys/{key}
func (s *Server) putKey(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxValueSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("value exceeds %d bytes", MaxValueSize))
			return
		}
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("failed to read request body: %w", err))
		return
	}

	s.store.Put(key, string(data))
	w.WriteHeader(http.StatusNoContent)
}

// deleteKey handles DELETE /keys/{key}
func (s *Server) deleteKey(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	s.store.Remove(key)
	w.WriteHeader(http.StatusNoContent)
}

// Stats is the body returned by GET /stats
type Stats struct {
	Version uint64 `json:"version"`
	Keys    int    `json:"keys"`
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	snapshot := s.store.Snapshot()
	s.respond(w, http.StatusOK, Stats{
		Version: s.store.Version(),
		Keys:    snapshot.Len(),
	})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}
