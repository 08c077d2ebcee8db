package server

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CarsonHerness/ctcsound-Example/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Config holds server configuration
type Config struct {
	Port int

	// Defaults applied to every request; requests may override the
	// composition preset, duration, seed, reverb and chord stagger.
	Pipeline pipeline.Config

	// Synth opens the render engine, nil = csound CLI
	Synth pipeline.SynthFactory

	// MaxRenders caps concurrent render jobs, 0 = one per CPU
	MaxRenders int

	// RateLimit is the sustained /compose and /render rate in requests
	// per second across all clients, 0 = unlimited
	RateLimit float64
}

// Server is the HTTP server
type Server struct {
	config  Config
	router  *chi.Mux
	logger  *log.Entry
	jobs    *JobManager
	limiter *rate.Limiter
}

// New creates a new server
func New(cfg Config) *Server {
	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		logger: log.WithField("component", "server"),
		jobs:   NewJobManager(cfg.Synth, cfg.MaxRenders),
	}
	if cfg.RateLimit > 0 {
		burst := int(math.Max(1, math.Ceil(cfg.RateLimit)))
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5, "application/json"))

	r.Get("/health", s.handleHealth)

	// API
	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/compose", s.handleCompose)
		r.Post("/render", s.handleRender)
	})
	r.Get("/status/{id}", s.handleStatus)
	r.Get("/result/{id}", s.handleResult)
	r.Get("/download/{id}", s.handleDownload)
}

// rateLimit rejects generation requests beyond the configured rate
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			s.renderError(w, "Too many requests, try again shortly.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // Long for SSE
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		s.logger.Info("shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			s.logger.WithError(err).Error("shutdown error")
		}
		s.logger.Info("waiting for running renders...")
		s.jobs.Wait()
		close(done)
	}()

	s.logger.WithField("port", s.config.Port).Info("server starting")
	fmt.Printf("\n  markov-score API running at: http://localhost:%d\n\n", s.config.Port)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	<-done
	return nil
}
