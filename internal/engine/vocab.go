package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Extractor turns transcripts into vocabulary lists using a Model.
type Extractor struct {
	model    Model
	maxChars int
	newID    func() string
}

// NewExtractor creates an Extractor. maxChars caps the transcript runes sent
// to the model; 0 sends everything.
func NewExtractor(model Model, maxChars int) *Extractor {
	return &Extractor{model: model, maxChars: maxChars, newID: uuid.NewString}
}

// ExtractVocabulary asks the model for learning expressions in segs and
// returns them with fresh IDs. The result is never nil on success.
func (x *Extractor) ExtractVocabulary(ctx context.Context, segs []TranscriptSegment) ([]VocabularyItem, error) {
	text := JoinSegments(segs)
	if x.maxChars > 0 {
		text = TruncateRunes(text, x.maxChars, "")
	}

	IncrLLMCalls()
	raw, err := x.model.Generate(ctx, BuildVocabularyPrompt(text))
	if err != nil {
		IncrLLMErrors()
		return nil, E(KindAIUnknown, "generate vocabulary", err)
	}
	if strings.TrimSpace(raw) == "" {
		IncrLLMErrors()
		return nil, E(KindAIUnknown, "generate vocabulary", errors.New("empty completion"))
	}

	items, err := DecodeVocabulary(StripFences(raw))
	if err != nil {
		slog.Warn("vocabulary: model output rejected", slog.Any("error", err))
		return nil, err
	}
	for i := range items {
		items[i].ID = x.newID()
	}
	return items, nil
}
