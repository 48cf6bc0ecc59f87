package cost

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name             string
		model            string
		promptTokens     int
		completionTokens int
		searchRequests   int
		want             float64
	}{
		{"gpt-4o input only", "gpt-4o", 1_000_000, 0, 0, 2.5},
		{"gpt-4o output only", "gpt-4o", 0, 1_000_000, 0, 10.0},
		{"gpt-4o mixed", "gpt-4o", 500_000, 100_000, 0, 2.25},
		{"claude sonnet", "claude-sonnet-4-20250514", 1_000_000, 1_000_000, 0, 18.0},
		{"gemini flash", "gemini-2.5-flash", 1_000_000, 0, 0, 0.3},
		{"unknown model is free", "some-future-model", 1_000_000, 1_000_000, 0, 0},
		{"zero tokens", "gpt-4o", 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.model, tt.promptTokens, tt.completionTokens, tt.searchRequests)
			if !almostEqual(got, tt.want) {
				t.Errorf("Calculate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateSearchCost(t *testing.T) {
	// 1000 searches on sonar adds exactly the $5/1K search fee.
	withSearch := Calculate("sonar", 0, 0, 1000)
	if !almostEqual(withSearch, 5.0) {
		t.Errorf("sonar search cost = %v, want 5.0", withSearch)
	}

	// One search adds $0.005.
	oneSearch := Calculate("sonar", 1_000_000, 0, 1)
	if !almostEqual(oneSearch, 1.33+0.005) {
		t.Errorf("sonar one search = %v, want %v", oneSearch, 1.33+0.005)
	}

	// Non-sonar models never bill searches even when a count is reported.
	if got := Calculate("gpt-4o", 0, 0, 100); got != 0 {
		t.Errorf("gpt-4o search billing = %v, want 0", got)
	}
}

func TestGetModelInfoKnown(t *testing.T) {
	info := GetModelInfo("gpt-4o")
	if info.DisplayName != "GPT-4o" {
		t.Errorf("unexpected display name: %q", info.DisplayName)
	}
	if info.CostTier != "Premium" {
		t.Errorf("unexpected cost tier: %q", info.CostTier)
	}
}

func TestGetModelInfoFallback(t *testing.T) {
	info := GetModelInfo("mystery-model-9000")
	if info.DisplayName != "mystery-model-9000" {
		t.Errorf("fallback display name should echo the model: %q", info.DisplayName)
	}
	if info.Description != "No metadata available" {
		t.Errorf("unexpected description: %q", info.Description)
	}
	if info.CostTier != "Unknown" || info.Speed != "Unknown" || info.ContextWindow != "Unknown" {
		t.Errorf("fallback fields should be Unknown: %+v", info)
	}
}
