package backends

import (
	"context"
	"net/http"

	"github.com/anatolykoptev/go-kit/llm"

	"github.com/anatolykoptev/go_quickeng/internal/engine"
)

// OpenAICompat talks to any OpenAI-compatible chat endpoint; by default
// Gemini's OpenAI compatibility layer.
type OpenAICompat struct {
	client *llm.Client
}

// NewOpenAICompat creates a go-kit llm backed Model.
func NewOpenAICompat(cfg engine.Config, hc *http.Client) (*OpenAICompat, error) {
	c := llm.NewClient(cfg.LLMAPIBase, cfg.LLMAPIKey, cfg.LLMModel,
		llm.WithMaxTokens(cfg.LLMMaxTokens),
		llm.WithTemperature(cfg.LLMTemperature),
		llm.WithHTTPClient(hc),
	)
	return &OpenAICompat{client: c}, nil
}

// Generate implements engine.Model.
func (o *OpenAICompat) Generate(ctx context.Context, prompt string) (string, error) {
	return o.client.Complete(ctx, "", prompt)
}
