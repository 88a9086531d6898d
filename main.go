// go_quickeng: YouTube English expression extractor.
//
// Takes a YouTube link, pulls the English captions and asks a language model
// for study-worthy expressions with Korean meanings, or for a short summary
// with key points. Served as a REST API (default), as MCP tools, or run once
// from the command line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_quickeng/internal/engine"
	"github.com/anatolykoptev/go_quickeng/internal/engine/backends"
	"github.com/anatolykoptev/go_quickeng/internal/engine/sources"
	"github.com/anatolykoptev/go_quickeng/internal/vocabserver"
)

var version = "dev"

func main() {
	// .env is optional.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "go_quickeng",
		Short:         "Extract English expressions from YouTube captions",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the REST API (default)",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "mcp",
			Short: "Run the MCP server exposing analyze_video and summarize_video",
			RunE:  runMCP,
		},
		&cobra.Command{
			Use:   "analyze <youtube-url> [target-lang]",
			Short: "Analyze one video and print the result as JSON",
			Args:  cobra.RangeArgs(1, 2),
			RunE:  runAnalyze,
		},
		&cobra.Command{
			Use:   "summarize <youtube-url> [target-lang]",
			Short: "Summarize one video and print the result as JSON",
			Args:  cobra.RangeArgs(1, 2),
			RunE:  runSummarize,
		},
	)

	if err := root.Execute(); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func loadConfig() engine.Config {
	c := engine.Config{
		Port:          env.Str("PORT", "8000"),
		MCPPort:       env.Str("MCP_PORT", "8891"),
		LogLevel:      env.Str("LOG_LEVEL", "info"),
		WriteTimeout:  env.Duration("WRITE_TIMEOUT", 120*time.Second),
		YouTubeClient: env.Str("YOUTUBE_CLIENT", engine.YouTubeClientWatch),
		FetchTimeout:  env.Duration("FETCH_TIMEOUT", 15*time.Second),

		LLMProvider:    env.Str("LLM_PROVIDER", engine.ProviderGemini),
		LLMAPIKey:      env.Str("LLM_API_KEY", env.Str("GEMINI_API_KEY", "")),
		LLMAPIBase:     env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:       env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature: env.Float("LLM_TEMPERATURE", 0.2),
		LLMMaxTokens:   env.Int("LLM_MAX_TOKENS", 8192),
		LLMTimeout:     env.Duration("LLM_TIMEOUT", 60*time.Second),

		MaxTranscriptChars: env.Int("MAX_TRANSCRIPT_CHARS", 0),
	}
	c.HTTPClient = &http.Client{
		Timeout: c.FetchTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}
	return c
}

func initLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func buildAnalyzer(ctx context.Context, c engine.Config) (*engine.Analyzer, error) {
	model, err := backends.New(ctx, c)
	if err != nil {
		return nil, err
	}
	yt := sources.NewYouTube(c.HTTPClient, c.YouTubeClient)
	a := engine.NewAnalyzer(yt, engine.NewExtractor(model, c.MaxTranscriptChars))
	return a.WithSummarizer(engine.NewSummarizer(model, c.MaxTranscriptChars)), nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	c := loadConfig()
	initLogger(c.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildAnalyzer(ctx, c)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + c.Port,
		Handler:           vocabserver.NewHandler(a, version),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      c.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting go_quickeng",
			slog.String("port", c.Port),
			slog.String("provider", c.LLMProvider),
			slog.String("model", c.LLMModel),
			slog.String("youtube_client", c.YouTubeClient))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	c := loadConfig()
	initLogger(c.LogLevel)

	a, err := buildAnalyzer(cmd.Context(), c)
	if err != nil {
		return err
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_quickeng",
		Version: version,
	}, nil)
	vocabserver.RegisterTools(server, a)

	slog.Info("starting go_quickeng mcp", slog.String("port", c.MCPPort))
	return mcpserver.Run(server, mcpserver.Config{
		Name:         "go_quickeng",
		Version:      version,
		Port:         c.MCPPort,
		WriteTimeout: c.WriteTimeout,
		Metrics:      engine.FormatMetrics,
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	return runOnce(cmd, args, func(ctx context.Context, a *engine.Analyzer, req engine.AnalyzeRequest) (any, error) {
		return a.Analyze(ctx, req)
	})
}

func runSummarize(cmd *cobra.Command, args []string) error {
	return runOnce(cmd, args, func(ctx context.Context, a *engine.Analyzer, req engine.AnalyzeRequest) (any, error) {
		return a.Summarize(ctx, req)
	})
}

// runOnce builds the pipeline, runs fn for the URL in args and prints the result.
func runOnce(cmd *cobra.Command, args []string, fn func(context.Context, *engine.Analyzer, engine.AnalyzeRequest) (any, error)) error {
	c := loadConfig()
	initLogger(c.LogLevel)

	a, err := buildAnalyzer(cmd.Context(), c)
	if err != nil {
		return err
	}

	req := engine.AnalyzeRequest{VideoURL: args[0]}
	if len(args) > 1 {
		req.TargetLang = args[1]
	}
	out, err := fn(cmd.Context(), a, req)
	if err != nil {
		_, body := engine.ErrorResponse(err)
		return fmt.Errorf("%s: %s: %w", body.Code, body.Message, err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
