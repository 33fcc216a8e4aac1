// Package server provides the HTTP server for signspell: the JSON API, live
// updates over WebSocket, the camera preview and the web UI.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ayusman/signspell/internal/app"
	"github.com/ayusman/signspell/internal/observe"
	"github.com/ayusman/signspell/internal/server/api"
	"github.com/ayusman/signspell/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Config holds the server configuration. Routes whose dependency is nil are
// not registered.
type Config struct {
	StaticDir      string
	Store          *store.Store
	App            *app.App
	Metrics        *observe.Metrics
	MetricsHandler http.Handler
}

// Server represents the HTTP server for the signspell application.
type Server struct {
	config      Config
	mux         *http.ServeMux
	handler     http.Handler
	hub         *EventHub
	unsubscribe func()
	start       time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		hub:    NewEventHub(config.Metrics),
		start:  time.Now(),
	}
	s.setupRoutes()

	s.handler = s.mux
	if config.Metrics != nil {
		s.handler = observe.Middleware(config.Metrics)(s.mux)
	}
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if a := s.config.App; a != nil {
		speller := api.NewSpellerHandler(a)
		s.mux.HandleFunc("/api/state", speller.State)
		s.mux.HandleFunc("/api/word", speller.Word)
		s.mux.HandleFunc("/api/active", speller.Active)

		s.unsubscribe = a.Subscribe(s.hub.Publish)
		s.mux.Handle("/api/events", s.hub)

		if preview := a.Preview(); preview != nil {
			s.mux.Handle("/api/stream", NewStreamHandler(preview))
		}
	}

	if s.config.Store != nil {
		var hands api.HandSource
		if s.config.App != nil {
			hands = s.config.App
		}
		samples := api.NewSamplesHandler(s.config.Store, hands, nil)
		s.mux.Handle("/api/samples", samples)
		s.mux.Handle("/api/samples/", samples)
		s.mux.HandleFunc("/api/evaluate", samples.Evaluate)
	}

	if s.config.MetricsHandler != nil {
		s.mux.Handle("/metrics", s.config.MetricsHandler)
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Events returns the hub broadcasting app updates.
func (s *Server) Events() *EventHub {
	return s.hub
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close stops forwarding app updates and disconnects WebSocket clients.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.hub.Close()
}
