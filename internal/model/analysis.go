// Package model defines the core data types for the brand-monitor pipeline.
// These structs mirror the JSON export format, so the same types serve both
// the in-memory pipeline and the exported documents.
package model

import (
	"errors"
	"fmt"
	"time"
)

// Bounds on a single analysis request. Keeping both small bounds the number
// of outbound API calls to prompts × providers.
const (
	MaxPrompts     = 10
	MaxCompetitors = 10
)

// Provider identifiers, used as map keys in requests and results.
const (
	ProviderOpenAI     = "OpenAI"
	ProviderAnthropic  = "Anthropic"
	ProviderGoogle     = "Google"
	ProviderPerplexity = "Perplexity"
)

// AnalysisRequest is the caller-supplied description of one analysis run.
// It is immutable once a run starts.
type AnalysisRequest struct {
	TargetBrand    string            `json:"target_brand"`
	Competitors    []string          `json:"competitors"`
	Prompts        []string          `json:"prompts"`
	APIKeys        map[string]string `json:"api_keys,omitempty"`
	SelectedModels map[string]string `json:"selected_models,omitempty"`
}

// AllBrands returns the target brand followed by the competitors, in order.
func (r *AnalysisRequest) AllBrands() []string {
	brands := make([]string, 0, len(r.Competitors)+1)
	brands = append(brands, r.TargetBrand)
	brands = append(brands, r.Competitors...)
	return brands
}

// Validate checks the request invariants that are fatal to a run.
// Credential checks (at least one provider, detection key) live in the
// analyzer since they depend on which provider the detector uses.
func (r *AnalysisRequest) Validate() error {
	if r.TargetBrand == "" {
		return errors.New("target brand is required")
	}
	if len(r.Prompts) == 0 {
		return errors.New("at least one prompt is required")
	}
	if len(r.Prompts) > MaxPrompts {
		return fmt.Errorf("too many prompts: %d (max %d)", len(r.Prompts), MaxPrompts)
	}
	if len(r.Competitors) > MaxCompetitors {
		return fmt.Errorf("too many competitors: %d (max %d)", len(r.Competitors), MaxCompetitors)
	}
	return nil
}

// BrandDetection is the outcome of checking one brand against one provider
// response. A detection never carries partial state: a brand the detector
// could not judge is reported as mentioned=false with sentinel reasoning.
type BrandDetection struct {
	BrandName string `json:"brand_name"`
	Mentioned bool   `json:"mentioned"`
	Reasoning string `json:"reasoning"`
}

// ProviderResponse records one provider's answer to one prompt, together
// with the brand detections run over it. Exactly one exists per
// (provider, prompt) pair attempted; failures set Error but the record
// is never dropped.
type ProviderResponse struct {
	Provider        string                    `json:"provider"`
	Model           string                    `json:"model"`
	Prompt          string                    `json:"prompt"`
	ResponseText    string                    `json:"response_text"`
	BrandDetections map[string]BrandDetection `json:"brand_detections"`
	TokenUsage      *TokenUsage               `json:"token_usage,omitempty"`
	ProcessingTime  float64                   `json:"processing_time"`
	Error           string                    `json:"error,omitempty"`
}

// PromptResult groups all provider responses for a single prompt.
// Keys of AIResponses are provider identifiers.
type PromptResult struct {
	Prompt      string                      `json:"prompt"`
	PromptIndex int                         `json:"prompt_index"`
	AIResponses map[string]ProviderResponse `json:"ai_responses"`
}

// AnalysisResult is the aggregate outcome of one analysis run.
// ResultsByPrompt order always matches the request prompt order.
type AnalysisResult struct {
	Request          AnalysisRequest `json:"request"`
	ResultsByPrompt  []PromptResult  `json:"results_by_prompt"`
	TokenUsage       []TokenUsage    `json:"token_usage,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	TotalPrompts     int             `json:"total_prompts"`
	CompletedPrompts int             `json:"completed_prompts"`
	AnalysisDuration float64         `json:"analysis_duration"`
	TotalCost        float64         `json:"total_cost"`
}

// TokenUsage is one append-only accounting entry for a single API call.
type TokenUsage struct {
	Provider         string  `json:"provider"`
	Model            string  `json:"model"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	SearchRequests   int     `json:"search_requests"`
	CostEstimate     float64 `json:"cost_estimate"`
}

// UsageRecord is the persisted form of a TokenUsage entry.
type UsageRecord struct {
	ID               int64     `db:"id" json:"id"`
	Provider         string    `db:"provider" json:"provider"`
	Model            string    `db:"model" json:"model"`
	PromptTokens     int       `db:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens int       `db:"completion_tokens" json:"completion_tokens"`
	TotalTokens      int       `db:"total_tokens" json:"total_tokens"`
	SearchRequests   int       `db:"search_requests" json:"search_requests"`
	CostEstimate     float64   `db:"cost_estimate" json:"cost_estimate"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// AnalysisRecord is the persisted summary of a completed run. The full
// export document is kept as a JSON blob alongside the queryable columns.
type AnalysisRecord struct {
	ID               int64     `db:"id" json:"id"`
	TargetBrand      string    `db:"target_brand" json:"target_brand"`
	CompetitorCount  int       `db:"competitor_count" json:"competitor_count"`
	TotalPrompts     int       `db:"total_prompts" json:"total_prompts"`
	CompletedPrompts int       `db:"completed_prompts" json:"completed_prompts"`
	DurationSeconds  float64   `db:"duration_seconds" json:"duration_seconds"`
	TotalCost        float64   `db:"total_cost" json:"total_cost"`
	ResultJSON       string    `db:"result_json" json:"-"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
