package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// TranscriptSource fetches the caption track of a video.
type TranscriptSource interface {
	FetchTranscript(ctx context.Context, videoID, preferredLang string) (*Transcript, error)
}

// Analyzer runs URL parsing → transcript fetch → vocabulary extraction
// or summarisation.
type Analyzer struct {
	source     TranscriptSource
	extractor  *Extractor
	summarizer *Summarizer
}

// NewAnalyzer wires a transcript source and an extractor together.
func NewAnalyzer(source TranscriptSource, extractor *Extractor) *Analyzer {
	return &Analyzer{source: source, extractor: extractor}
}

// WithSummarizer enables Summarize.
func (a *Analyzer) WithSummarizer(s *Summarizer) *Analyzer {
	a.summarizer = s
	return a
}

// Analyze runs the full pipeline for one request. Any failure aborts the
// request; no partial vocabulary is ever returned. Errors are typed *Error
// values except for genuinely unclassified failures.
func (a *Analyzer) Analyze(ctx context.Context, req AnalyzeRequest) (out *AnalyzeResponse, err error) {
	metrics.AnalyzeRequests.Add(1)
	defer func() {
		if err != nil {
			metrics.AnalyzeErrors.Add(1)
			slog.Warn("analyze failed",
				slog.String("url", req.VideoURL),
				slog.String("kind", KindOf(err).String()),
				slog.Any("error", err))
		}
	}()

	videoID, tr, err := a.transcript(ctx, req)
	if err != nil {
		return nil, err
	}

	var items []VocabularyItem
	err = TrackOperation(ctx, "vocabulary:"+videoID, func(ctx context.Context) error {
		var xerr error
		items, xerr = a.extractor.ExtractVocabulary(ctx, tr.Segments)
		return xerr
	})
	if err != nil {
		return nil, err
	}

	slog.Info("analyze done",
		slog.String("video_id", videoID),
		slog.Int("segments", len(tr.Segments)),
		slog.Int("items", len(items)))

	return &AnalyzeResponse{VideoID: videoID, Title: videoTitle(videoID, tr), ScriptItems: items}, nil
}

// Summarize fetches the transcript and returns it with a model-written
// summary and key points in the request's target language.
func (a *Analyzer) Summarize(ctx context.Context, req AnalyzeRequest) (out *SummaryResponse, err error) {
	metrics.SummarizeRequests.Add(1)
	defer func() {
		if err != nil {
			metrics.SummarizeErrors.Add(1)
			slog.Warn("summarize failed",
				slog.String("url", req.VideoURL),
				slog.String("kind", KindOf(err).String()),
				slog.Any("error", err))
		}
	}()

	if a.summarizer == nil {
		return nil, errors.New("summarizer not configured")
	}
	videoID, tr, err := a.transcript(ctx, req)
	if err != nil {
		return nil, err
	}

	text := JoinSegments(tr.Segments)
	var sum *Summary
	err = TrackOperation(ctx, "summary:"+videoID, func(ctx context.Context) error {
		var serr error
		sum, serr = a.summarizer.Summarize(ctx, text, req.Lang())
		return serr
	})
	if err != nil {
		return nil, err
	}

	slog.Info("summarize done",
		slog.String("video_id", videoID),
		slog.Int("key_points", len(sum.KeyPoints)))

	return &SummaryResponse{
		VideoID:    videoID,
		Title:      videoTitle(videoID, tr),
		Transcript: text,
		Summary:    sum.Text,
		KeyPoints:  sum.KeyPoints,
	}, nil
}

// transcript parses the video id and fetches its transcript.
func (a *Analyzer) transcript(ctx context.Context, req AnalyzeRequest) (string, *Transcript, error) {
	videoID, err := ExtractVideoID(req.VideoURL)
	if err != nil {
		return "", nil, err
	}

	var tr *Transcript
	err = TrackOperation(ctx, "transcript:"+videoID, func(ctx context.Context) error {
		var ferr error
		tr, ferr = a.source.FetchTranscript(ctx, videoID, req.Lang())
		return ferr
	})
	if err != nil {
		return "", nil, err
	}
	if tr == nil {
		return "", nil, fmt.Errorf("transcript source returned nothing for %s", videoID)
	}
	return videoID, tr, nil
}

func videoTitle(videoID string, tr *Transcript) string {
	if tr.Title != "" {
		return tr.Title
	}
	return "YouTube video " + videoID
}
