package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/cacctools/drivecycle/pkg/cycle"
	"github.com/cacctools/drivecycle/pkg/results"
	"github.com/cacctools/drivecycle/pkg/suite"
	"github.com/cacctools/drivecycle/pkg/temporal"
)

const defaultRunsLimit = 20

// Server represents the HTTP server for the drive-cycle service
type Server struct {
	logger         *slog.Logger
	temporalClient client.Client
	store          *results.Store
	addr           string
}

// NewServer creates a new HTTP server. store may be nil when run history is
// not configured.
func NewServer(logger *slog.Logger, temporalClient client.Client, store *results.Store, addr string) *Server {
	return &Server{
		logger:         logger,
		temporalClient: temporalClient,
		store:          store,
		addr:           addr,
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	// Register routes
	mux.HandleFunc("POST /suites/evaluate", s.handleEvaluateSuite)
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	mux.HandleFunc("POST /cycles", s.handleSynthesizeCycle)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Add middleware
	handler := s.loggingMiddleware(mux)

	server := &http.Server{
		Addr:    s.addr,
		Handler: handler,
	}

	s.logger.Info("Starting HTTP server", "addr", s.addr)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// Suite evaluation endpoint. Accepts either an HCL suite file or a JSON
// SuiteRequest body and runs the evaluation workflow to completion.
func (s *Server) handleEvaluateSuite(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		s.respondError(w, http.StatusBadRequest, "request body is required")
		return
	}

	var request *temporal.SuiteRequest
	if suite.IsHCL(body) {
		request, err = suite.ParseSuite(string(body))
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid suite definition: %v", err))
			return
		}
	} else {
		request = &temporal.SuiteRequest{}
		if err := json.Unmarshal(body, request); err != nil {
			s.respondError(w, http.StatusBadRequest, "body is neither valid HCL nor valid JSON")
			return
		}
	}

	if len(request.Scenarios) == 0 {
		s.respondError(w, http.StatusBadRequest, "suite contains no scenarios")
		return
	}

	s.logger.Info("Evaluating suite", "suite", request.Suite, "scenarios", len(request.Scenarios))

	workflowID := temporal.GenerateSuiteWorkflowID(request.Suite)

	workflowRun, err := s.temporalClient.ExecuteWorkflow(
		r.Context(),
		client.StartWorkflowOptions{
			ID:        workflowID,
			TaskQueue: temporal.DefaultTaskQueue,
		},
		temporal.SuiteWorkflow,
		*request,
	)

	if err != nil {
		s.logger.Error("Failed to start suite workflow", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to start suite evaluation")
		return
	}

	// Wait for result
	var result *temporal.SuiteResult
	err = workflowRun.Get(r.Context(), &result)
	if err != nil {
		s.logger.Error("Suite workflow failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "suite evaluation failed")
		return
	}

	s.logger.Info("Suite completed",
		"suite", request.Suite, "passed", result.Passed, "failed", result.Failed, "skipped", result.Skipped)
	s.respondJSON(w, http.StatusOK, result)
}

// Run history listing endpoint
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotFound, "run history is not configured")
		return
	}

	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list runs", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []results.RunRecord{}
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// Single run detail endpoint, including per-check outcomes
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotFound, "run history is not configured")
		return
	}

	runID := r.PathValue("id")
	if runID == "" {
		s.respondError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("run %s not found", runID))
		return
	}

	outcomes, err := s.store.RunOutcomes(r.Context(), runID)
	if err != nil {
		s.logger.Error("Failed to load outcomes", "error", err, "runID", runID)
		s.respondError(w, http.StatusInternalServerError, "failed to load run outcomes")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"run":      run,
		"outcomes": outcomes,
	})
}

// Cycle synthesis endpoint. Takes a JSON synthesis spec and returns the
// generated profile as CSV.
func (s *Server) handleSynthesizeCycle(w http.ResponseWriter, r *http.Request) {
	var spec cycle.SynthesisSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ts, err := cycle.Synthesize(spec)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("synthesis failed: %v", err))
		return
	}

	stats := cycle.Validate(ts)
	s.logger.Info("Synthesized cycle",
		"name", spec.Name, "scenario", spec.Scenario, "samples", ts.Len(),
		"max_speed", stats.MaxSpeed, "steady_state_pct", stats.SteadyStatePct)

	w.Header().Set("Content-Type", "text/csv")
	if spec.Name != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", spec.Name+".csv"))
	}
	w.WriteHeader(http.StatusOK)
	if err := cycle.WriteCSV(w, ts); err != nil {
		s.logger.Error("Failed to write cycle CSV", "error", err)
	}
}

// Health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Middleware for request logging
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap ResponseWriter to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		s.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", duration,
			"user_agent", r.UserAgent(),
		)
	})
}

// Response helpers
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.logger.Warn("HTTP error response", "status", status, "message", message)
	s.respondJSON(w, status, map[string]string{"error": message})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
