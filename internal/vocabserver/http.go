// Package vocabserver exposes the analyze and summarize pipelines over REST and as MCP tools.
package vocabserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/anatolykoptev/go_quickeng/internal/engine"
)

// maxBodyBytes caps a video request body.
const maxBodyBytes = 64 * 1024

// NewHandler builds the REST surface: analyze, summarize, health, root and metrics,
// wrapped in request logging, panic recovery and allow-all CORS.
func NewHandler(a *engine.Analyzer, version string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/v1/video/analyze", analyzeHandler(a)).Methods(http.MethodPost)
	r.HandleFunc("/v1/video/summarize", summarizeHandler(a)).Methods(http.MethodPost)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/metrics", metricsHandler).Methods(http.MethodGet)
	r.HandleFunc("/", rootHandler(version)).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "Accept", "Origin", "X-Requested-With"}),
	)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(cors(logRequests(r)))
}

// decodeRequest reads a video request body; any failure is an invalid link.
func decodeRequest(r *http.Request) (engine.AnalyzeRequest, error) {
	var req engine.AnalyzeRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return req, engine.E(engine.KindInvalidLink, "decode request", err)
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		return req, engine.ErrInvalidLink
	}
	return req, nil
}

func analyzeHandler(a *engine.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeRequest(r)
		if err != nil {
			writeError(w, err)
			return
		}

		out, err := a.Analyze(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		if out.ScriptItems == nil {
			out.ScriptItems = []engine.VocabularyItem{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func summarizeHandler(a *engine.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeRequest(r)
		if err != nil {
			writeError(w, err)
			return
		}

		out, err := a.Summarize(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func rootHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "QuickEng Server is running!",
			"status":  "active",
			"version": version,
		})
	}
}

func metricsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, engine.FormatMetrics())
}

func writeError(w http.ResponseWriter, err error) {
	status, body := engine.ErrorResponse(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", slog.Any("error", err))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", time.Since(start)))
	})
}
