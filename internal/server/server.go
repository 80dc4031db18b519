package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/creditwise/chat-gateway/internal/assemble"
	"github.com/creditwise/chat-gateway/internal/config"
	"github.com/creditwise/chat-gateway/internal/engine"
	"github.com/creditwise/chat-gateway/internal/metrics"
	"github.com/creditwise/chat-gateway/internal/provider"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Processor runs one chat request end to end
type Processor interface {
	Process(ctx context.Context, req *engine.Request) (*engine.Outcome, error)
}

// ModelLister enumerates routable model names
type ModelLister interface {
	ListModels() []string
}

// Server represents the HTTP server
type Server struct {
	cfg        *config.Config
	processor  Processor
	models     ModelLister
	httpServer *http.Server
	startTime  time.Time
	logger     *slog.Logger
}

// ChatRequest is the OpenAI-compatible chat completion request body.
// prompt_id and prompt_version are gateway extensions for pinning a
// specific prompt variant.
type ChatRequest struct {
	Model         string             `json:"model"`
	Messages      []provider.Message `json:"messages"`
	Temperature   *float64           `json:"temperature,omitempty"`
	MaxTokens     *int               `json:"max_tokens,omitempty"`
	PromptID      string             `json:"prompt_id,omitempty"`
	PromptVersion string             `json:"prompt_version,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// ModelsResponse is the OpenAI-compatible model list
type ModelsResponse struct {
	Object string      `json:"object"`
	Data   []ModelInfo `json:"data"`
}

// ModelInfo describes one routable model
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// New creates a new HTTP server
func New(cfg *config.Config, processor Processor, models ModelLister, logger *slog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		processor: processor,
		models:    models,
		logger:    logger,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/v1/chat/completions", s.chatCompletionsHandler)
	mux.HandleFunc("/v1/models", s.modelsHandler)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the configured mux, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler handles health check requests
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:    "healthy",
		Version:   "1.0.0",
		Uptime:    time.Since(s.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	writeJSON(w, http.StatusOK, response)
}

// modelsHandler lists routable models
func (s *Server) modelsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := ModelsResponse{Object: "list", Data: []ModelInfo{}}
	for _, name := range s.models.ListModels() {
		response.Data = append(response.Data, ModelInfo{
			ID:      name,
			Object:  "model",
			OwnedBy: "creditwise",
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// chatCompletionsHandler handles OpenAI-compatible chat completion
// requests. Provider outages produce a degraded but well-formed
// completion envelope; only malformed requests get an error status.
func (s *Server) chatCompletionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	status := "ok"
	defer func() {
		metrics.RequestCount.WithLabelValues(r.Method, "/v1/chat/completions", status).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, "/v1/chat/completions").Observe(time.Since(start).Seconds())
	}()

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status = "bad_request"
		writeError(w, http.StatusBadRequest, "invalid_request_error", "request body is not valid JSON")
		return
	}
	if req.Model == "" {
		status = "bad_request"
		writeError(w, http.StatusBadRequest, "invalid_request_error", "model is required")
		return
	}
	if len(req.Messages) == 0 {
		status = "bad_request"
		writeError(w, http.StatusBadRequest, "invalid_request_error", "messages must not be empty")
		return
	}

	outcome, err := s.processor.Process(r.Context(), &engine.Request{
		Model:         req.Model,
		Messages:      req.Messages,
		Temperature:   req.Temperature,
		MaxTokens:     req.MaxTokens,
		PromptID:      req.PromptID,
		PromptVersion: req.PromptVersion,
	})
	if err != nil {
		var perr *provider.Error
		if errors.As(err, &perr) {
			switch perr.Kind {
			case provider.KindBadRequest:
				status = "bad_request"
				s.logger.Warn("Rejected chat request", "model", req.Model, "error", err)
				writeError(w, http.StatusBadRequest, "invalid_request_error", perr.Error())
				return
			case provider.KindAuth:
				status = "upstream_auth"
			default:
				status = "degraded"
			}
		} else {
			status = "degraded"
		}
		s.logger.Error("Chat completion failed, returning degraded response", "model", req.Model, "error", err)
		writeJSON(w, http.StatusOK, assemble.Degraded(req.Model))
		return
	}

	writeJSON(w, http.StatusOK, assemble.FromOutcome(outcome))
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errType, message string) {
	writeJSON(w, code, errorResponse{Error: errorBody{Message: message, Type: errType}})
}
