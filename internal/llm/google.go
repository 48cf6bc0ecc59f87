package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const googleBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GoogleClient implements Client over the Gemini generateContent REST API.
// Google does not ship a Go SDK for this API, so the adapter speaks HTTP
// directly.
type GoogleClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewGoogleClient creates a Gemini adapter. An empty model selects
// gemini-2.5-flash.
func NewGoogleClient(apiKey, model string) *GoogleClient {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GoogleClient{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		baseURL:    googleBaseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

// SetBaseURL overrides the API endpoint. Used by tests to point at a stub.
func (g *GoogleClient) SetBaseURL(url string) { g.baseURL = strings.TrimSuffix(url, "/") }

func (g *GoogleClient) ProviderName() string { return "Google" }
func (g *GoogleClient) ModelName() string    { return g.model }
func (g *GoogleClient) Available() bool      { return g.apiKey != "" }

func (g *GoogleClient) Models() []string {
	return []string{"gemini-2.5-flash", "gemini-2.5-flash-lite", "gemini-pro"}
}

// Wire types for the generateContent endpoint. Only the fields this adapter
// reads or writes are declared.
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *GoogleClient) Complete(ctx context.Context, prompt string) (*Completion, error) {
	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     Temperature,
			MaxOutputTokens: MaxOutputTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini API call: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("reading gemini response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decoding gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, fmt.Errorf("gemini HTTP %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return nil, fmt.Errorf("gemini HTTP %d", resp.StatusCode)
	}

	var sb strings.Builder
	for _, cand := range parsed.Candidates {
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, errors.New("empty response from gemini")
	}

	return &Completion{
		Text:             text,
		PromptTokens:     parsed.UsageMetadata.PromptTokenCount,
		CompletionTokens: parsed.UsageMetadata.CandidatesTokenCount,
	}, nil
}
