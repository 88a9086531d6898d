package engine

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
)

// SummaryResponse is the success body of POST /v1/video/summarize.
type SummaryResponse struct {
	VideoID    string   `json:"videoId"`
	Title      string   `json:"title"`
	Transcript string   `json:"transcript"`
	Summary    string   `json:"summary"`
	KeyPoints  []string `json:"keyPoints"`
}

// Summary is a parsed summarisation reply.
type Summary struct {
	Text      string
	KeyPoints []string
}

const summaryPrompt = `Analyze the following YouTube video transcript.

Transcript:
"""
%TRANSCRIPT%
"""

Provide, written in %LANG%:
1. A summary of the whole content (3-5 sentences)
2. Exactly 5 key points (one sentence each)

Answer in this format and nothing else:
<summary>
summary text
</summary>

<key_points>
- point 1
- point 2
- point 3
- point 4
- point 5
</key_points>`

var langNames = map[string]string{
	"ko": "Korean",
	"en": "English",
	"ja": "Japanese",
	"zh": "Chinese",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
}

// BuildSummaryPrompt renders the summarisation prompt for a transcript text.
func BuildSummaryPrompt(transcript, lang string) string {
	name, ok := langNames[strings.ToLower(lang)]
	if !ok {
		name = lang
	}
	return strings.NewReplacer(
		"%TRANSCRIPT%", transcript,
		"%LANG%", name,
	).Replace(summaryPrompt)
}

var (
	summarySectionRe   = regexp.MustCompile(`(?s)<summary>(.*?)</summary>`)
	keyPointsSectionRe = regexp.MustCompile(`(?s)<key_points>(.*?)</key_points>`)
	bulletRe           = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*(.+)$`)
)

// ParseSummary reads the <summary> and <key_points> sections of a reply.
// A reply without a non-empty summary or without any bullet point is an
// ErrAIParse-kind error.
func ParseSummary(text string) (*Summary, error) {
	m := summarySectionRe.FindStringSubmatch(text)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return nil, E(KindAIParse, "parse summary", errors.New("no <summary> section in "+TruncateRunes(text, 200, "...")))
	}
	s := &Summary{Text: strings.TrimSpace(m[1]), KeyPoints: []string{}}

	kp := keyPointsSectionRe.FindStringSubmatch(text)
	if kp == nil {
		return nil, E(KindAIParse, "parse summary", errors.New("no <key_points> section"))
	}
	for _, line := range strings.Split(kp[1], "\n") {
		if b := bulletRe.FindStringSubmatch(line); b != nil {
			if p := strings.TrimSpace(b[1]); p != "" {
				s.KeyPoints = append(s.KeyPoints, p)
			}
		}
	}
	if len(s.KeyPoints) == 0 {
		return nil, E(KindAIParse, "parse summary", errors.New("<key_points> has no bullet points"))
	}
	return s, nil
}

// Summarizer condenses transcripts into a short summary and key points.
type Summarizer struct {
	model    Model
	maxChars int
}

// NewSummarizer creates a Summarizer. maxChars caps the transcript runes sent
// to the model; 0 sends everything.
func NewSummarizer(model Model, maxChars int) *Summarizer {
	return &Summarizer{model: model, maxChars: maxChars}
}

// Summarize asks the model for a summary of text in lang.
func (s *Summarizer) Summarize(ctx context.Context, text, lang string) (*Summary, error) {
	if s.maxChars > 0 {
		text = TruncateRunes(text, s.maxChars, "")
	}

	IncrLLMCalls()
	raw, err := s.model.Generate(ctx, BuildSummaryPrompt(text, lang))
	if err != nil {
		IncrLLMErrors()
		return nil, E(KindAIUnknown, "generate summary", err)
	}
	if strings.TrimSpace(raw) == "" {
		IncrLLMErrors()
		return nil, E(KindAIUnknown, "generate summary", errors.New("empty completion"))
	}

	sum, err := ParseSummary(StripFences(raw))
	if err != nil {
		slog.Warn("summary: model output rejected", slog.Any("error", err))
		return nil, err
	}
	return sum, nil
}
