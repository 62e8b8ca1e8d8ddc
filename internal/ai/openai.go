package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var ErrMissingAPIKey = errors.New("openai api key is not set")

// OpenAIGateway implements Gateway against the OpenAI chat completions
// API. Each public call runs a prompt-enhancement pass, the generation
// pass, and a summary pass; the summary falls back to a canned message so
// a summary failure never fails a successful generation.
type OpenAIGateway struct {
	client *openai.Client
	model  string
}

// NewOpenAIGateway creates a gateway using the given API key and model.
func NewOpenAIGateway(apiKey, model string) (*OpenAIGateway, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	slog.Info("initializing openai gateway", "model", model)
	return &OpenAIGateway{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// GenerateSite produces a complete HTML document from a user prompt.
func (g *OpenAIGateway) GenerateSite(ctx context.Context, prompt string) (Result, error) {
	enhanced, err := g.complete(ctx, enhanceCreatePrompt, prompt, 500)
	if err != nil {
		return Result{}, fmt.Errorf("enhancing prompt: %w", err)
	}

	code, err := g.complete(ctx, generateCreatePrompt,
		fmt.Sprintf("Request: %s\n\nGenerate the website code now.", enhanced), 4000)
	if err != nil {
		return Result{}, fmt.Errorf("generating html: %w", err)
	}
	code = stripCodeFences(code)

	summary := g.summarize(ctx, creationSummaryPrompt,
		fmt.Sprintf("User requested: %q\n\nGenerated HTML code preview (first 500 chars): %s\n\nWrite a friendly message describing what was created.",
			prompt, preview(code, 500)),
		fmt.Sprintf("I've created your website based on your request: %q. The website is now ready with all the features you requested!", prompt))

	return Result{Code: code, Summary: summary}, nil
}

// ModifySite applies a change request to an existing document.
func (g *OpenAIGateway) ModifySite(ctx context.Context, currentCode, request string) (Result, error) {
	enhanced, err := g.complete(ctx, enhanceModifyPrompt, request, 300)
	if err != nil {
		return Result{}, fmt.Errorf("enhancing modification request: %w", err)
	}

	code, err := g.complete(ctx, generateModifyPrompt,
		fmt.Sprintf("Current HTML code:\n\n%s\n\nRequested changes: %s\n\nGenerate the updated HTML code.", currentCode, enhanced), 4000)
	if err != nil {
		return Result{}, fmt.Errorf("modifying html: %w", err)
	}
	code = stripCodeFences(code)

	summary := g.summarize(ctx, modificationSummaryPrompt,
		fmt.Sprintf("User requested: %q\n\nWrite a friendly message describing what was changed.", request),
		fmt.Sprintf("I've updated your website based on your request: %q. The changes have been applied successfully!", request))

	return Result{Code: code, Summary: summary}, nil
}

func (g *OpenAIGateway) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.7,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai api call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (g *OpenAIGateway) summarize(ctx context.Context, system, user, fallback string) string {
	summary, err := g.complete(ctx, system, user, 200)
	if err != nil {
		slog.Warn("summary generation failed, using fallback message", "error", err)
		return fallback
	}
	return summary
}

var (
	openingFence = regexp.MustCompile("(?i)^```(?:html)?\n?")
	closingFence = regexp.MustCompile("\n?```$")
)

// stripCodeFences removes markdown code fences the model sometimes wraps
// its output in despite instructions.
func stripCodeFences(code string) string {
	code = strings.TrimSpace(code)
	code = openingFence.ReplaceAllString(code, "")
	code = closingFence.ReplaceAllString(code, "")
	return strings.TrimSpace(code)
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
