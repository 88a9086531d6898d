package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestFormatMetrics(t *testing.T) {
	before := GetMetrics()
	IncrYouTubeTranscript()
	IncrYouTubeTranscriptError()
	IncrLLMCalls()
	IncrLLMErrors()
	after := GetMetrics()

	for _, k := range []string{"youtube_transcript_requests", "youtube_transcript_errors", "llm_calls", "llm_errors"} {
		if after[k] != before[k]+1 {
			t.Errorf("%s = %d, want %d", k, after[k], before[k]+1)
		}
	}

	out := FormatMetrics()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(metricKeys) {
		t.Fatalf("FormatMetrics has %d lines, want %d:\n%s", len(lines), len(metricKeys), out)
	}
	for i, k := range metricKeys {
		if !strings.HasPrefix(lines[i], k+" ") {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], k+" ")
		}
	}
}

func TestAnalyzeCountsErrors(t *testing.T) {
	before := GetMetrics()
	a := NewAnalyzer(&fakeSource{}, NewExtractor(staticModel("[]"), 0))
	_, _ = a.Analyze(context.Background(), AnalyzeRequest{VideoURL: "not a link"})
	after := GetMetrics()

	if after["analyze_requests"] != before["analyze_requests"]+1 {
		t.Errorf("analyze_requests not incremented")
	}
	if after["analyze_errors"] != before["analyze_errors"]+1 {
		t.Errorf("analyze_errors not incremented")
	}
}

func TestTrackOperation(t *testing.T) {
	want := errors.New("boom")
	got := TrackOperation(context.Background(), "test", func(context.Context) error { return want })
	if !errors.Is(got, want) {
		t.Errorf("TrackOperation returned %v, want %v", got, want)
	}
}
