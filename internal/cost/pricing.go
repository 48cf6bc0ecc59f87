// Package cost estimates API spend from token counts and keeps a running
// usage log. Cost computation is pure and never fails: an unknown model is
// priced at zero rather than blocking the pipeline.
package cost

import "strings"

// Pricing holds USD rates for one model: per 1M input tokens, per 1M output
// tokens, and (search-augmented models only) per 1K search requests.
type Pricing struct {
	Input      float64
	Output     float64
	SearchCost float64
}

// pricingTable holds 2025 list prices per model identifier.
var pricingTable = map[string]Pricing{
	// OpenAI
	"gpt-4o":        {Input: 2.5, Output: 10.0},
	"gpt-4o-mini":   {Input: 0.15, Output: 0.6},
	"gpt-4-turbo":   {Input: 10.0, Output: 30.0},
	"gpt-3.5-turbo": {Input: 0.5, Output: 1.5},

	// Anthropic
	"claude-sonnet-4-20250514":   {Input: 3.0, Output: 15.0},
	"claude-3-5-sonnet-20241022": {Input: 3.0, Output: 15.0},
	"claude-opus-4-1-20250805":   {Input: 15.0, Output: 75.0},
	"claude-3-opus-20240229":     {Input: 15.0, Output: 75.0},

	// Google
	"gemini-2.5-flash":      {Input: 0.3, Output: 2.5},
	"gemini-2.5-flash-lite": {Input: 0.1, Output: 0.4},
	"gemini-pro":            {Input: 0.5, Output: 1.5},

	// Perplexity: token rates plus $5 per 1000 searches
	"sonar":     {Input: 1.33, Output: 1.33, SearchCost: 5.0},
	"sonar-pro": {Input: 4.0, Output: 20.0, SearchCost: 5.0},
}

// Calculate returns the estimated USD cost for one call. Search requests
// are only billed for sonar models, matching how Perplexity meters them.
func Calculate(mdl string, promptTokens, completionTokens, searchRequests int) float64 {
	pricing := pricingTable[mdl]

	total := float64(promptTokens)/1_000_000*pricing.Input +
		float64(completionTokens)/1_000_000*pricing.Output

	if searchRequests > 0 && strings.Contains(strings.ToLower(mdl), "sonar") {
		total += float64(searchRequests) / 1000 * pricing.SearchCost
	}

	return total
}

// ModelInfo is human-readable metadata about a model, for catalogs and
// exports only; detection logic never reads it.
type ModelInfo struct {
	DisplayName   string `json:"display_name"`
	Description   string `json:"description"`
	CostTier      string `json:"cost_tier"`
	Speed         string `json:"speed"`
	ContextWindow string `json:"context_window"`
}

var modelInfoTable = map[string]ModelInfo{
	"gpt-4o": {
		DisplayName:   "GPT-4o",
		Description:   "Flagship model with the strongest reasoning",
		CostTier:      "Premium",
		Speed:         "Medium",
		ContextWindow: "128K tokens",
	},
	"gpt-4o-mini": {
		DisplayName:   "GPT-4o Mini",
		Description:   "Lightweight variant, fast and cheap",
		CostTier:      "Budget",
		Speed:         "Fast",
		ContextWindow: "128K tokens",
	},
	"claude-sonnet-4-20250514": {
		DisplayName:   "Claude Sonnet 4",
		Description:   "Balanced reasoning and throughput",
		CostTier:      "Premium",
		Speed:         "Medium",
		ContextWindow: "1M tokens",
	},
	"claude-opus-4-1-20250805": {
		DisplayName:   "Claude Opus 4.1",
		Description:   "Strongest reasoning in the Claude family",
		CostTier:      "Ultra",
		Speed:         "Slow",
		ContextWindow: "1M tokens",
	},
	"gemini-2.5-flash": {
		DisplayName:   "Gemini 2.5 Flash",
		Description:   "Fast responses with strong multimodal support",
		CostTier:      "Standard",
		Speed:         "Fast",
		ContextWindow: "1M tokens",
	},
	"gemini-2.5-flash-lite": {
		DisplayName:   "Gemini 2.5 Flash Lite",
		Description:   "Most economical option for high volume",
		CostTier:      "Budget",
		Speed:         "Very Fast",
		ContextWindow: "1M tokens",
	},
	"sonar": {
		DisplayName:   "Perplexity Sonar",
		Description:   "Lightweight model with built-in web search",
		CostTier:      "Standard",
		Speed:         "Medium",
		ContextWindow: "Variable",
	},
	"sonar-pro": {
		DisplayName:   "Perplexity Sonar Pro",
		Description:   "Deeper search and analysis",
		CostTier:      "Premium",
		Speed:         "Slow",
		ContextWindow: "Variable",
	},
}

// GetModelInfo returns descriptive metadata for a model, with a generic
// fallback for models the table does not know.
func GetModelInfo(mdl string) ModelInfo {
	if info, ok := modelInfoTable[mdl]; ok {
		return info
	}
	return ModelInfo{
		DisplayName:   mdl,
		Description:   "No metadata available",
		CostTier:      "Unknown",
		Speed:         "Unknown",
		ContextWindow: "Unknown",
	}
}
