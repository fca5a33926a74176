// Package api provides the HTTP REST API server for NewsVani.
//
// It exposes endpoints for company news analysis, audio digests, and source
// introspection, consumed by the presentation layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/newsvani/newsvani/internal/config"
	"github.com/newsvani/newsvani/internal/retrieval"
	"github.com/newsvani/newsvani/internal/service"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	svc    *service.Service
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) *Server {
	srv := &Server{
		cfg: cfg,
		svc: service.New(cfg),
	}
	srv.router = srv.buildRouter()
	return srv
}

// NewServerWithService creates a server around an existing service. Used by tests.
func NewServerWithService(cfg *config.Config, svc *service.Service) *Server {
	srv := &Server{cfg: cfg, svc: svc}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // retrieval + scraping can take a while
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(180 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// News analysis
		r.Get("/news/{company}", s.handleNews)

		// Audio digest
		r.Get("/audio/{company}", s.handleAudio)
		r.Post("/audio", s.handleRenderText)

		// Source introspection
		r.Get("/sources", s.handleSources)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RenderTextRequest is the body for POST /api/v1/audio.
type RenderTextRequest struct {
	Text string `json:"text"`
}

// SourcesResponse lists the configured retrieval sources.
type SourcesResponse struct {
	PrimarySites     []retrieval.Site `json:"primary_sites"`
	AlternativeSites []retrieval.Site `json:"alternative_sites"`
	AlternativeFeeds []retrieval.Feed `json:"alternative_feeds"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	company := chi.URLParam(r, "company")
	if company == "" {
		writeError(w, http.StatusBadRequest, "company is required")
		return
	}

	report, err := s.svc.Analyze(r.Context(), company)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCompany) {
			writeError(w, http.StatusBadRequest, "company name is empty after sanitization")
			return
		}
		log.Printf("api: news %q: %v", company, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("error processing request for %s", company))
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    report,
	})
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	company := chi.URLParam(r, "company")
	if company == "" {
		writeError(w, http.StatusBadRequest, "company is required")
		return
	}

	audio, err := s.svc.Audio(r.Context(), company)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCompany) {
			writeError(w, http.StatusBadRequest, "company name is empty after sanitization")
			return
		}
		log.Printf("api: audio %q: %v", company, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("error generating audio for %s", company))
		return
	}

	writeAudio(w, audio)
}

func (s *Server) handleRenderText(w http.ResponseWriter, r *http.Request) {
	var req RenderTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, err := s.svc.RenderText(r.Context(), req.Text)
	if err != nil {
		log.Printf("api: render text: %v", err)
		writeError(w, http.StatusInternalServerError, "error generating audio")
		return
	}

	writeAudio(w, audio)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: SourcesResponse{
			PrimarySites:     retrieval.PrimarySites,
			AlternativeSites: retrieval.AlternativeSites,
			AlternativeFeeds: retrieval.AlternativeFeeds,
		},
	})
}

// ============================================================
// Response helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, APIResponse{Success: false, Error: message})
}

func writeAudio(w http.ResponseWriter, audio []byte) {
	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		log.Printf("api: write audio: %v", err)
	}
}
