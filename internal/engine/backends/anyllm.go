package backends

import (
	"context"
	"errors"
	"fmt"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/anatolykoptev/go_quickeng/internal/engine"
)

// AnyLLM wraps a github.com/mozilla-ai/any-llm-go provider.
type AnyLLM struct {
	backend     anyllmlib.Provider
	model       string
	temperature float64
	maxTokens   int
}

// NewAnyLLM creates a Model for the named any-llm-go provider.
// Without an API key the provider reads its usual environment variable.
func NewAnyLLM(providerName string, cfg engine.Config) (*AnyLLM, error) {
	var opts []anyllmlib.Option
	if cfg.LLMAPIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(cfg.LLMAPIKey))
	}
	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", providerName, err)
	}
	return &AnyLLM{
		backend:     backend,
		model:       cfg.LLMModel,
		temperature: cfg.LLMTemperature,
		maxTokens:   cfg.LLMMaxTokens,
	}, nil
}

func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch providerName {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: gemini, openai-compat, openai, anthropic, ollama, deepseek, mistral, groq", providerName)
	}
}

// Generate implements engine.Model.
func (a *AnyLLM) Generate(ctx context.Context, prompt string) (string, error) {
	params := anyllmlib.CompletionParams{
		Model: a.model,
		Messages: []anyllmlib.Message{
			{Role: "user", Content: prompt},
		},
	}
	if a.temperature != 0 {
		t := a.temperature
		params.Temperature = &t
	}
	if a.maxTokens > 0 {
		mt := a.maxTokens
		params.MaxTokens = &mt
	}

	resp, err := a.backend.Completion(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anyllm: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("anyllm: empty choices in response")
	}
	return resp.Choices[0].Message.ContentString(), nil
}
