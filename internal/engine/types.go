package engine

import (
	"encoding/json"
	"strings"
)

// TranscriptSegment is one spoken line of a caption track.
type TranscriptSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`    // seconds
	Duration float64 `json:"duration"` // seconds
}

// Transcript is a fetched caption track plus the video metadata that came with it.
type Transcript struct {
	VideoID  string
	Title    string
	Language string
	Segments []TranscriptSegment
}

// VocabularyItem is one extracted learning expression.
type VocabularyItem struct {
	ID         string `json:"id"`
	Expression string `json:"expression"`
	MeaningKr  string `json:"meaningKr"`
	ContextTag string `json:"contextTag"`
}

// UnmarshalJSON accepts both camelCase and snake_case keys.
func (v *VocabularyItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID              string `json:"id"`
		Expression      string `json:"expression"`
		MeaningKr       string `json:"meaningKr"`
		MeaningKrSnake  string `json:"meaning_kr"`
		ContextTag      string `json:"contextTag"`
		ContextTagSnake string `json:"context_tag"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = VocabularyItem{
		ID:         raw.ID,
		Expression: strings.TrimSpace(raw.Expression),
		MeaningKr:  strings.TrimSpace(firstNonEmpty(raw.MeaningKr, raw.MeaningKrSnake)),
		ContextTag: strings.ToUpper(strings.TrimSpace(firstNonEmpty(raw.ContextTag, raw.ContextTagSnake))),
	}
	return nil
}

// AnalyzeRequest is the body of POST /v1/video/analyze.
type AnalyzeRequest struct {
	VideoURL   string `json:"videoUrl"`
	TargetLang string `json:"targetLang"`
}

// UnmarshalJSON accepts camelCase, snake_case and the legacy "language" key.
func (r *AnalyzeRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		VideoURL        string `json:"videoUrl"`
		VideoURLSnake   string `json:"video_url"`
		TargetLang      string `json:"targetLang"`
		TargetLangSnake string `json:"target_lang"`
		Language        string `json:"language"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = AnalyzeRequest{
		VideoURL:   strings.TrimSpace(firstNonEmpty(raw.VideoURL, raw.VideoURLSnake)),
		TargetLang: strings.TrimSpace(firstNonEmpty(raw.TargetLang, raw.TargetLangSnake, raw.Language)),
	}
	return nil
}

// Lang returns the requested target language or the default.
func (r AnalyzeRequest) Lang() string {
	if r.TargetLang == "" {
		return DefaultTargetLang
	}
	return r.TargetLang
}

// AnalyzeResponse is the success body of POST /v1/video/analyze.
type AnalyzeResponse struct {
	VideoID     string           `json:"videoId"`
	Title       string           `json:"title"`
	ScriptItems []VocabularyItem `json:"scriptItems"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
