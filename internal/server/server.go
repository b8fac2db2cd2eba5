// Package server provides the HTTP server for the hand quiz.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayusman/handquiz/internal/app"
	"github.com/ayusman/handquiz/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       *app.App

	// Quiet disables request logging.
	Quiet bool
}

// Server represents the HTTP server for the hand quiz.
type Server struct {
	config Config
	router chi.Router
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: chi.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router

	if !s.config.Quiet {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/api/health", s.handleHealth)

	if a := s.config.App; a != nil {
		if a.Registry() != nil {
			r.Route("/api/sessions", api.NewSessionHandler(a, NewSessionSocket(a)).Routes)
		}
		r.Get("/api/stream", NewStreamHandler(a).ServeHTTP)
		r.Get("/api/plugins", api.PluginsHandler(a.PluginManager()))

		// Bank, history and hooks need the database
		if st := a.Store(); st != nil {
			r.Route("/api/questions", api.NewQuestionHandler(st).Routes)
			r.Route("/api/history", api.NewHistoryHandler(st).Routes)
			r.Route("/api/hooks", api.NewHookHandler(st, a.PluginManager()).Routes)
		}
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if a := s.config.App; a != nil {
		response["enabled"] = a.IsEnabled()
		response["attached"] = a.Attached()
		if reg := a.Registry(); reg != nil {
			response["sessions"] = len(reg.List())
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
