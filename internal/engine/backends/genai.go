package backends

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/anatolykoptev/go_quickeng/internal/engine"
)

// GenAI calls Gemini through the official Google Gen AI SDK.
type GenAI struct {
	client    *genai.Client
	model     string
	genConfig *genai.GenerateContentConfig
}

// NewGenAI creates a Gemini-backed Model. The API key must be set.
func NewGenAI(ctx context.Context, cfg engine.Config, hc *http.Client) (*GenAI, error) {
	if cfg.LLMAPIKey == "" {
		return nil, errors.New("genai: GEMINI_API_KEY / LLM_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.LLMAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	})
	if err != nil {
		return nil, fmt.Errorf("genai: new client: %w", err)
	}

	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(cfg.LLMTemperature)),
	}
	if cfg.LLMMaxTokens > 0 {
		gc.MaxOutputTokens = int32(cfg.LLMMaxTokens)
	}
	return &GenAI{client: client, model: cfg.LLMModel, genConfig: gc}, nil
}

// Generate implements engine.Model.
func (g *GenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.genConfig)
	if err != nil {
		return "", fmt.Errorf("genai: generate content: %w", err)
	}
	return resp.Text(), nil
}
