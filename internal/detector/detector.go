package detector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/firegeo/brand-monitor/internal/llm"
	"github.com/firegeo/brand-monitor/internal/model"
)

// callTimeout bounds each detection call independently of whatever timeout
// the provider call used. A timeout is handled like any other failure.
const callTimeout = 60 * time.Second

// sentinelReasoning marks brands the detection response did not cover.
const sentinelReasoning = "No detection result found"

// Detector judges brand mentions in provider answers using one designated
// LLM. Detection always goes to the same model regardless of which provider
// produced the answer, so detection quality is uniform across providers.
type Detector struct {
	client llm.Client
	logger *zap.Logger
}

// New creates a Detector around the given detection client. In production
// this is a Gemini adapter; tests pass a fake.
func New(client llm.Client, logger *zap.Logger) *Detector {
	return &Detector{client: client, logger: logger}
}

// ProviderName returns the detection client's provider identifier.
func (d *Detector) ProviderName() string { return d.client.ProviderName() }

// ModelName returns the detection model identifier.
func (d *Detector) ModelName() string { return d.client.ModelName() }

// DetectBrands checks the target brand and every competitor against one
// provider response, using a single batched detection call. The returned
// map always covers exactly {target} ∪ competitors: brands missing from the
// model's answer default to mentioned=false with sentinel reasoning, and a
// failed call defaults every brand with the error baked into the reasoning.
// DetectBrands never returns an error.
//
// The second return value reports token usage for the detection call; it is
// nil when the call failed.
func (d *Detector) DetectBrands(ctx context.Context, responseText, targetBrand string, competitors []string, question string) (map[string]model.BrandDetection, *llm.Completion) {
	brands := append([]string{targetBrand}, competitors...)
	prompt := buildBatchPrompt(brands, question, responseText)

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	completion, err := d.client.Complete(ctx, prompt)
	if err != nil {
		d.logger.Error("batch brand detection failed",
			zap.String("target_brand", targetBrand),
			zap.Error(err),
		)
		return failAll(brands, fmt.Sprintf("Batch detection error: %v", err)), nil
	}

	parsed := Parse(completion.Text)
	if parsed.ParseError != "" {
		d.logger.Warn("detection response unparseable, defaulting all brands",
			zap.String("target_brand", targetBrand),
			zap.String("parse_error", parsed.ParseError),
		)
	}

	// Default every brand first so coverage is total, then overlay what the
	// model actually judged. Detections for brands we never asked about are
	// dropped.
	results := make(map[string]model.BrandDetection, len(brands))
	for _, brand := range brands {
		results[brand] = model.BrandDetection{
			BrandName: brand,
			Mentioned: false,
			Reasoning: sentinelReasoning,
		}
	}
	for _, det := range parsed.Detections {
		if _, wanted := results[det.BrandName]; !wanted {
			continue
		}
		reasoning := det.Reasoning
		if reasoning == "" {
			reasoning = "No reasoning provided"
		}
		results[det.BrandName] = model.BrandDetection{
			BrandName: det.BrandName,
			Mentioned: det.Mentioned,
			Reasoning: reasoning,
		}
	}

	return results, completion
}

func failAll(brands []string, reasoning string) map[string]model.BrandDetection {
	results := make(map[string]model.BrandDetection, len(brands))
	for _, brand := range brands {
		results[brand] = model.BrandDetection{
			BrandName: brand,
			Mentioned: false,
			Reasoning: reasoning,
		}
	}
	return results
}

// buildBatchPrompt covers all brands in one call, bounding API usage to one
// detection call per (prompt, provider) pair no matter how many brands are
// tracked.
func buildBatchPrompt(brands []string, question, responseText string) string {
	var list strings.Builder
	for _, brand := range brands {
		list.WriteString("- ")
		list.WriteString(brand)
		list.WriteString("\n")
	}

	return fmt.Sprintf(`Please analyze if any of the following brands are mentioned in the AI response below.

Brands to check:
%s
Consider the following when detecting brand mentions:
- Direct brand name mentions
- Product names clearly associated with the brand
- Company abbreviations or common variations
- Contextual references where the brand is clearly implied
- Ignore generic industry terms unless specifically referring to this brand

Original Question: %s

AI Response: %s

Response Requirements:
- Return only valid JSON format
- For each brand, provide a boolean value for mentioned
- Provide brief reasoning for each decision

Expected JSON Format:
{
  "detections": [
    {
      "brand_name": "Brand Name",
      "mentioned": true/false,
      "reasoning": "Brief explanation"
    },
    ...
  ]
}`, list.String(), question, responseText)
}
