package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const perplexityBaseURL = "https://api.perplexity.ai"

// PerplexityClient implements Client over Perplexity's OpenAI-compatible
// chat completions endpoint. The sonar models run a web search per request,
// which the cost model bills separately. Each completion counts as one
// search request.
type PerplexityClient struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewPerplexityClient creates a Perplexity adapter. An empty model selects
// sonar.
func NewPerplexityClient(apiKey, model string) *PerplexityClient {
	if model == "" {
		model = "sonar"
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = perplexityBaseURL
	return &PerplexityClient{
		client: openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
		model:  model,
	}
}

func (p *PerplexityClient) ProviderName() string { return "Perplexity" }
func (p *PerplexityClient) ModelName() string    { return p.model }
func (p *PerplexityClient) Available() bool      { return p.apiKey != "" }

func (p *PerplexityClient) Models() []string {
	return []string{"sonar", "sonar-pro"}
}

func (p *PerplexityClient) Complete(ctx context.Context, prompt string) (*Completion, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   MaxOutputTokens,
		Temperature: Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("perplexity API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("perplexity returned no choices")
	}

	return &Completion{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		SearchRequests:   1,
	}, nil
}
