// Package backends builds engine.Model implementations for the supported
// generative-language providers.
//
//	gemini         google.golang.org/genai (default)
//	openai-compat  go-kit llm client against any OpenAI-compatible endpoint
//	anything else  github.com/mozilla-ai/any-llm-go provider of that name
package backends

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_quickeng/internal/engine"
)

// New returns the Model selected by cfg.LLMProvider.
func New(ctx context.Context, cfg engine.Config) (engine.Model, error) {
	if cfg.LLMModel == "" {
		return nil, errors.New("backends: LLM model must not be empty")
	}
	hc := &http.Client{Timeout: cfg.LLMTimeout}

	switch name := strings.ToLower(strings.TrimSpace(cfg.LLMProvider)); name {
	case "", engine.ProviderGemini:
		return NewGenAI(ctx, cfg, hc)
	case engine.ProviderOpenAICompat:
		return NewOpenAICompat(cfg, hc)
	default:
		m, err := NewAnyLLM(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("backends: %w", err)
		}
		return m, nil
	}
}
