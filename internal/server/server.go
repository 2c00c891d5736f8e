// Package server exposes the gateway HTTP API. Handlers translate JSON
// requests into service calls and error kinds into status codes; everything
// else lives below the service layer.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"raggate/internal/domain"
	"raggate/internal/metrics"
	"raggate/internal/service"
)

const defaultTopK = 4

// Server holds the HTTP handlers for the gateway.
type Server struct {
	svc  *service.RAG
	mode string
	log  *slog.Logger
}

func New(svc *service.RAG, mode string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, mode: mode, log: log}
}

// Handler builds the route table with logging, metrics and panic recovery
// applied to every endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ingest", s.handleIngest)
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("POST /ingest_dir", s.handleIngestDir)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return s.recoveryMiddleware(s.loggingMiddleware(mux))
}

type ingestRequest struct {
	Source   string         `json:"source"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Source == "" {
		req.Source = "manual"
	}
	if req.Text == "" {
		s.writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}
	added, err := s.svc.Ingest(r.Context(), req.Source, req.Text, req.Metadata)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	metrics.ChunksIngested.Add(float64(added))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":              true,
		"document_source": req.Source,
		"chunks_ingested": added,
		"mode":            s.mode,
	})
}

type askRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.TopK == 0 {
		req.TopK = defaultTopK
	}
	answer, err := s.svc.Ask(r.Context(), req.Question, req.TopK)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	metrics.QueriesServed.Inc()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"answer":    answer.Answer,
		"citations": answer.Citations,
		"mode":      s.mode,
		"top_k":     req.TopK,
	})
}

func (s *Server) handleIngestDir(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.IngestDir(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	metrics.ChunksIngested.Add(float64(result.ChunksIngested))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":              true,
		"files":           result.Files,
		"chunks_ingested": result.ChunksIngested,
		"mode":            s.mode,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "mode": s.mode})
}

// writeServiceError maps error kinds onto HTTP statuses: unconfigured backend
// is a 503, backend faults a 502, bad input a 400, missing resources a 404.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrClientInput), errors.Is(err, domain.ErrLengthMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrBackend):
		status = http.StatusBadGateway
	}
	if status >= 500 {
		s.log.Error("request failed", "status", status, "error", err)
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
