package vocabserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_quickeng/internal/engine"
)

// AnalyzeVideoInput is the analyze_video tool input.
type AnalyzeVideoInput struct {
	VideoURL   string `json:"video_url" jsonschema:"YouTube video URL (watch, youtu.be, embed, shorts or live link)"`
	TargetLang string `json:"target_lang,omitempty" jsonschema:"Language for meanings or summary (default: ko)"`
}

// RegisterTools registers analyze_video and summarize_video on the given MCP server.
func RegisterTools(server *mcp.Server, a *engine.Analyzer) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_video",
		Description: "Extract study-worthy English expressions from a YouTube video's English captions. Returns the video id, title and a list of expressions with Korean meanings and a context tag (ROMANTIC, ANGER, BUSINESS, GREETING, SLANG, DAILY, EMOTION, HUMOR).",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeVideoInput) (*mcp.CallToolResult, engine.AnalyzeResponse, error) {
		out, err := analyzeVideo(ctx, a, input)
		return nil, out, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_video",
		Description: "Summarize a YouTube video from its English captions. Returns the transcript, a 3-5 sentence summary and five key points written in target_lang (default: ko).",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeVideoInput) (*mcp.CallToolResult, engine.SummaryResponse, error) {
		out, err := summarizeVideo(ctx, a, input)
		return nil, out, err
	})
}

func toolError(err error) error {
	_, body := engine.ErrorResponse(err)
	return fmt.Errorf("%s: %s", body.Code, body.Message)
}

func analyzeVideo(ctx context.Context, a *engine.Analyzer, input AnalyzeVideoInput) (engine.AnalyzeResponse, error) {
	if strings.TrimSpace(input.VideoURL) == "" {
		return engine.AnalyzeResponse{}, errors.New("video_url is required")
	}
	out, err := a.Analyze(ctx, engine.AnalyzeRequest{
		VideoURL:   input.VideoURL,
		TargetLang: input.TargetLang,
	})
	if err != nil {
		return engine.AnalyzeResponse{}, toolError(err)
	}
	if out.ScriptItems == nil {
		out.ScriptItems = []engine.VocabularyItem{}
	}
	return *out, nil
}

func summarizeVideo(ctx context.Context, a *engine.Analyzer, input AnalyzeVideoInput) (engine.SummaryResponse, error) {
	if strings.TrimSpace(input.VideoURL) == "" {
		return engine.SummaryResponse{}, errors.New("video_url is required")
	}
	out, err := a.Summarize(ctx, engine.AnalyzeRequest{
		VideoURL:   input.VideoURL,
		TargetLang: input.TargetLang,
	})
	if err != nil {
		return engine.SummaryResponse{}, toolError(err)
	}
	return *out, nil
}
