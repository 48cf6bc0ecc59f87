// Package export renders completed analysis results into their two export
// projections: a JSON document and a CSV table. Both are pure, stateless
// transforms over the result value.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/firegeo/brand-monitor/internal/model"
)

// responseTextLimit caps how much raw response text the CSV carries per row.
const responseTextLimit = 200

// jsonDocument is the top-level JSON export shape.
type jsonDocument struct {
	AnalysisSummary jsonSummary  `json:"analysis_summary"`
	Results         []jsonResult `json:"results"`
}

type jsonSummary struct {
	TargetBrand      string   `json:"target_brand"`
	Competitors      []string `json:"competitors"`
	TotalPrompts     int      `json:"total_prompts"`
	CompletedPrompts int      `json:"completed_prompts"`
	AnalysisDate     string   `json:"analysis_date"`
	AnalysisDuration float64  `json:"analysis_duration"`
}

type jsonResult struct {
	Prompt      string                  `json:"prompt"`
	PromptIndex int                     `json:"prompt_index"`
	AIResponses map[string]jsonResponse `json:"ai_responses"`
}

type jsonResponse struct {
	ResponseText    string                   `json:"response_text"`
	ProcessingTime  float64                  `json:"processing_time"`
	Error           string                   `json:"error,omitempty"`
	BrandDetections map[string]jsonDetection `json:"brand_detections"`
}

type jsonDetection struct {
	Mentioned bool   `json:"mentioned"`
	Reasoning string `json:"reasoning"`
}

// JSON renders the result as an indented JSON export document.
func JSON(result *model.AnalysisResult) ([]byte, error) {
	doc := jsonDocument{
		AnalysisSummary: jsonSummary{
			TargetBrand:      result.Request.TargetBrand,
			Competitors:      result.Request.Competitors,
			TotalPrompts:     result.TotalPrompts,
			CompletedPrompts: result.CompletedPrompts,
			AnalysisDate:     result.CreatedAt.Format(time.RFC3339),
			AnalysisDuration: result.AnalysisDuration,
		},
		Results: make([]jsonResult, 0, len(result.ResultsByPrompt)),
	}

	for _, promptResult := range result.ResultsByPrompt {
		item := jsonResult{
			Prompt:      promptResult.Prompt,
			PromptIndex: promptResult.PromptIndex,
			AIResponses: make(map[string]jsonResponse, len(promptResult.AIResponses)),
		}
		for provider, resp := range promptResult.AIResponses {
			out := jsonResponse{
				ResponseText:    resp.ResponseText,
				ProcessingTime:  resp.ProcessingTime,
				Error:           resp.Error,
				BrandDetections: make(map[string]jsonDetection, len(resp.BrandDetections)),
			}
			for brand, det := range resp.BrandDetections {
				out.BrandDetections[brand] = jsonDetection{
					Mentioned: det.Mentioned,
					Reasoning: det.Reasoning,
				}
			}
			item.AIResponses[provider] = out
		}
		doc.Results = append(doc.Results, item)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling export document: %w", err)
	}
	return data, nil
}

// CSV renders the result as a table with one row per (prompt, provider)
// pair, providers sorted within each prompt. Brand columns carry Yes/No for
// judged brands and Unknown when a record has no detection for that brand.
func CSV(result *model.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	allBrands := result.Request.AllBrands()

	header := append([]string{"Prompt", "AI Provider"}, allBrands...)
	header = append(header, "Response Text", "Error")
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}

	for _, promptResult := range result.ResultsByPrompt {
		providers := make([]string, 0, len(promptResult.AIResponses))
		for provider := range promptResult.AIResponses {
			providers = append(providers, provider)
		}
		sort.Strings(providers)

		for _, provider := range providers {
			resp := promptResult.AIResponses[provider]
			row := []string{promptResult.Prompt, provider}

			for _, brand := range allBrands {
				det, ok := resp.BrandDetections[brand]
				switch {
				case !ok:
					row = append(row, "Unknown")
				case det.Mentioned:
					row = append(row, "Yes")
				default:
					row = append(row, "No")
				}
			}

			text := resp.ResponseText
			if len(text) > responseTextLimit {
				text = text[:responseTextLimit] + "..."
			}
			row = append(row, text, resp.Error)

			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("writing csv row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}
