package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/CarsonHerness/ctcsound-Example/internal/audio"
	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
	"github.com/CarsonHerness/ctcsound-Example/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

const (
	maxRequestSize = 64 * 1024
	maxDuration    = 30 * 60 // seconds
)

// composeRequest overrides the server's composition defaults
type composeRequest struct {
	Preset       string   `json:"preset"`
	Duration     float64  `json:"duration"`
	Seed         int64    `json:"seed"`
	Reverb       *bool    `json:"reverb"`
	ChordStagger *float64 `json:"chord_stagger"`
}

// composeResponse is the body of a successful /compose
type composeResponse struct {
	Preset    string  `json:"preset"`
	Seed      int64   `json:"seed"`
	Duration  float64 `json:"duration"`
	Events    int     `json:"events"`
	CacheKey  string  `json:"cache_key,omitempty"`
	Orchestra string  `json:"orchestra"`
	Score     string  `json:"score"`
}

// renderResponse is the body of an accepted /render
type renderResponse struct {
	ID        string `json:"id"`
	StatusURL string `json:"status_url"`
	ResultURL string `json:"result_url"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleCompose generates a composition and returns both documents
func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.pipelineConfig(w, r)
	if err != nil {
		s.renderError(w, err.Error(), http.StatusBadRequest)
		return
	}

	orch := pipeline.NewOrchestrator(io.Discard, false)
	result, err := orch.Execute(r.Context(), cfg)
	if err != nil {
		status := http.StatusInternalServerError
		if isRequestError(err) {
			status = http.StatusBadRequest
		}
		s.logger.WithError(err).Warn("compose failed")
		s.renderError(w, err.Error(), status)
		return
	}

	s.renderJSON(w, http.StatusOK, composeResponse{
		Preset:    cfg.Composition.Preset,
		Seed:      result.Seed,
		Duration:  cfg.Composition.Duration,
		Events:    result.Events,
		CacheKey:  result.CacheKey,
		Orchestra: result.Orchestra,
		Score:     result.Score,
	})
}

// handleRender starts a background render job
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.pipelineConfig(w, r)
	if err != nil {
		s.renderError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job, err := s.jobs.Create()
	if err != nil {
		s.logger.WithError(err).Error("create job")
		s.renderError(w, "Failed to create job.", http.StatusInternalServerError)
		return
	}

	s.jobs.Start(job, cfg)

	s.renderJSON(w, http.StatusAccepted, renderResponse{
		ID:        job.ID,
		StatusURL: "/status/" + job.ID,
		ResultURL: "/result/" + job.ID,
	})
}

// handleStatus streams job progress via SSE
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job := s.jobs.Get(jobID)

	if job == nil {
		s.renderError(w, "Job not found.", http.StatusNotFound)
		return
	}

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// Send updates until the job closes its channel
	for {
		select {
		case <-r.Context().Done():
			return
		case update, open := <-job.Updates:
			if !open {
				fmt.Fprintf(w, "event: done\n")
				fmt.Fprintf(w, "data: %s\n\n", job.Status())
				flusher.Flush()
				return
			}
			fmt.Fprintf(w, "event: progress\n")
			fmt.Fprintf(w, "data: %s\n\n", update)
			flusher.Flush()
		}
	}
}

// handleResult returns the job and, once complete, its documents
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job := s.jobs.Get(jobID)

	if job == nil {
		s.renderError(w, "Job not found.", http.StatusNotFound)
		return
	}

	view := job.View()
	status := http.StatusOK
	if view.Status == StatusPending || view.Status == StatusProcessing {
		status = http.StatusAccepted
	}
	s.renderJSON(w, status, view)
}

// handleDownload serves the rendered WAV file
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job := s.jobs.Get(jobID)

	if job == nil || job.Status() != StatusComplete {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	result := job.Result()
	if result.WAVPath == "" {
		http.Error(w, "Audio file not available", http.StatusNotFound)
		return
	}
	if format, err := audio.ValidateSample(result.WAVPath); err != nil || format != audio.FormatWAV {
		s.logger.WithError(err).WithField("job", job.ID).Warn("rendered file unusable")
		http.Error(w, "Audio file not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"markov-%d.wav\"", result.Seed))
	http.ServeFile(w, r, result.WAVPath)
}

// pipelineConfig merges the request body over the server defaults
func (s *Server) pipelineConfig(w http.ResponseWriter, r *http.Request) (pipeline.Config, error) {
	cfg := s.config.Pipeline

	var req composeRequest
	if r.ContentLength != 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return cfg, fmt.Errorf("invalid request body: %v", err)
		}
	}

	if req.Preset != "" {
		cfg.Composition.Preset = req.Preset
	}
	if req.Duration != 0 {
		cfg.Composition.Duration = req.Duration
	}
	if req.Seed != 0 {
		cfg.Composition.Seed = req.Seed
	}
	if req.Reverb != nil {
		cfg.Composition.Reverb = *req.Reverb
	}
	if req.ChordStagger != nil {
		cfg.Composition.ChordStagger = *req.ChordStagger
	}

	if d := cfg.Composition.Duration; d <= 0 || d > maxDuration {
		return cfg, fmt.Errorf("duration must be between 0 and %d seconds, got %g", maxDuration, d)
	}
	if cfg.Composition.ChordStagger < 0 {
		return cfg, fmt.Errorf("chord_stagger must not be negative")
	}
	return cfg, nil
}

// renderJSON writes v as a JSON response
func (s *Server) renderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("encode response")
	}
}

// renderError writes an error message as JSON
func (s *Server) renderError(w http.ResponseWriter, message string, status int) {
	s.renderJSON(w, status, map[string]string{"error": message})
}

// isRequestError reports whether a generation failure was caused by the
// request parameters rather than the server.
func isRequestError(err error) bool {
	return errors.Is(err, apperrors.ErrUnknownPreset) ||
		errors.Is(err, apperrors.ErrCompositionTooShort) ||
		errors.Is(err, apperrors.ErrMissingTransitionRow) ||
		errors.Is(err, apperrors.ErrUnknownPitchLabel)
}
