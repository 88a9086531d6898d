package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	AnalyzeRequests           atomic.Int64
	AnalyzeErrors             atomic.Int64
	SummarizeRequests         atomic.Int64
	SummarizeErrors           atomic.Int64
	YouTubeTranscriptRequests atomic.Int64
	YouTubeTranscriptErrors   atomic.Int64
	LLMCalls                  atomic.Int64
	LLMErrors                 atomic.Int64
}

// metricKeys fixes the output order of FormatMetrics.
var metricKeys = []string{
	"analyze_requests", "analyze_errors",
	"summarize_requests", "summarize_errors",
	"youtube_transcript_requests", "youtube_transcript_errors",
	"llm_calls", "llm_errors",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"analyze_requests":            metrics.AnalyzeRequests.Load(),
		"analyze_errors":              metrics.AnalyzeErrors.Load(),
		"summarize_requests":          metrics.SummarizeRequests.Load(),
		"summarize_errors":            metrics.SummarizeErrors.Load(),
		"youtube_transcript_requests": metrics.YouTubeTranscriptRequests.Load(),
		"youtube_transcript_errors":   metrics.YouTubeTranscriptErrors.Load(),
		"llm_calls":                   metrics.LLMCalls.Load(),
		"llm_errors":                  metrics.LLMErrors.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ and backends/ sub-packages.
func IncrYouTubeTranscript()      { metrics.YouTubeTranscriptRequests.Add(1) }
func IncrYouTubeTranscriptError() { metrics.YouTubeTranscriptErrors.Add(1) }
func IncrLLMCalls()               { metrics.LLMCalls.Add(1) }
func IncrLLMErrors()              { metrics.LLMErrors.Add(1) }

// slowOperation is the threshold above which TrackOperation logs a warning.
const slowOperation = 5 * time.Second

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > slowOperation {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
