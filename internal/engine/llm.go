package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Model is a text-in, text-out generative model.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ModelFunc adapts a plain function to Model.
type ModelFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f ModelFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// StripFences removes a markdown code fence wrapping LLM output, with or
// without a language tag on the opening fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "[{") {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// errMalformedEntry marks a decoded array element that is not a usable entry.
var errMalformedEntry = errors.New("malformed vocabulary entry")

// DecodeVocabulary decodes fence-free model output as a JSON array of
// vocabulary entries. A document that is not a JSON array yields an
// ErrAIParse-kind error; an element that is not an entry object, or has no
// expression, yields an ErrAIUnknown-kind error. IDs are left empty.
func DecodeVocabulary(text string) ([]VocabularyItem, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, E(KindAIParse, "decode vocabulary", fmt.Errorf("parse failed on %q: %w", TruncateRunes(text, 200, "..."), err))
	}
	// json.Unmarshal accepts null into a slice.
	if raw == nil {
		return nil, E(KindAIParse, "decode vocabulary", errors.New("model returned null instead of an array"))
	}
	items := make([]VocabularyItem, 0, len(raw))
	for i, r := range raw {
		var it VocabularyItem
		if err := json.Unmarshal(r, &it); err != nil {
			return nil, E(KindAIUnknown, "decode vocabulary", fmt.Errorf("%w #%d: %v", errMalformedEntry, i, err))
		}
		if it.Expression == "" {
			return nil, E(KindAIUnknown, "decode vocabulary", fmt.Errorf("%w #%d: empty expression", errMalformedEntry, i))
		}
		items = append(items, it)
	}
	return items, nil
}
