package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client over the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	apiKey string
	model  string
}

// NewAnthropicClient creates an Anthropic adapter. An empty model selects
// Claude Sonnet 4.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicClient{
		client: &client,
		apiKey: apiKey,
		model:  model,
	}
}

func (a *AnthropicClient) ProviderName() string { return "Anthropic" }
func (a *AnthropicClient) ModelName() string    { return a.model }
func (a *AnthropicClient) Available() bool      { return a.apiKey != "" }

func (a *AnthropicClient) Models() []string {
	return []string{
		"claude-sonnet-4-20250514",
		"claude-3-5-sonnet-20241022",
		"claude-opus-4-1-20250805",
		"claude-3-opus-20240229",
	}
}

func (a *AnthropicClient) Complete(ctx context.Context, prompt string) (*Completion, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   MaxOutputTokens,
		Temperature: anthropic.Float(Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	// Concatenate the text blocks. A plain prompt with no tools normally
	// yields a single block, but the API allows several.
	var sb strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, errors.New("anthropic returned no text content")
	}

	return &Completion{
		Text:             sb.String(),
		PromptTokens:     int(message.Usage.InputTokens),
		CompletionTokens: int(message.Usage.OutputTokens),
	}, nil
}
