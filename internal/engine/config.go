package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, built once in main and injected.
type Config struct {
	Port         string
	MCPPort      string
	LogLevel     string
	WriteTimeout time.Duration

	YouTubeClient string // "watch" (default) or "innertube"
	FetchTimeout  time.Duration

	LLMProvider    string // "gemini", "openai-compat" or an any-llm-go provider name
	LLMAPIKey      string
	LLMAPIBase     string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int
	LLMTimeout     time.Duration

	MaxTranscriptChars int // 0 = send the whole transcript

	HTTPClient *http.Client // YouTube traffic
}

// YouTube client modes.
const (
	YouTubeClientWatch     = "watch"
	YouTubeClientInnertube = "innertube"
)

// Model provider names handled outside any-llm-go.
const (
	ProviderGemini       = "gemini"
	ProviderOpenAICompat = "openai-compat"
)

// DefaultTargetLang is applied when a request omits targetLang.
const DefaultTargetLang = "ko"
