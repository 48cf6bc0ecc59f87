// Package detector judges whether brands are mentioned in provider answers.
// The judgment itself is delegated to a designated LLM; this package builds
// the detection prompt, recovers structured results from whatever text the
// model returns, and guarantees an outcome for every requested brand.
package detector

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Detection is one parsed per-brand judgment.
type Detection struct {
	BrandName string `json:"brand_name"`
	Mentioned bool   `json:"mentioned"`
	Reasoning string `json:"reasoning"`
}

// ParseResult is the recovered structure of a detection response. ParseError
// is set only when every recovery stage failed; Detections is then empty but
// never nil.
type ParseResult struct {
	Detections []Detection `json:"detections"`
	ParseError string      `json:"parse_error,omitempty"`
}

// Models do not reliably return valid JSON even when told to, so recovery is
// layered. The span regexes allow one level of nesting, which covers the
// detections-array-of-objects shape; deeper nesting falls through to the
// next stage. Both take the first match in the text, not the largest.
var (
	objectSpanRe = regexp.MustCompile(`(?s)\{(?:[^{}]|\{[^{}]*\})*\}`)
	arraySpanRe  = regexp.MustCompile(`(?s)\[(?:[^\[\]]|\[[^\[\]]*\])*\]`)
)

// Fallback text-mining patterns for stage 4. This is a fixed, tested
// whitelist; widening it invites false positives.
var fallbackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\w+).*?mentioned.*?(true|false)`),
	regexp.MustCompile(`(?i)(\w+).*?(?:is|was).*?(mentioned|not mentioned|found|not found)`),
	regexp.MustCompile(`(?i)Brand.*?(\w+).*?(true|false|yes|no)`),
}

// signalWords are the fallback tokens that count as a positive mention.
var signalWords = map[string]bool{
	"true":      true,
	"yes":       true,
	"mentioned": true,
	"found":     true,
}

// Parse recovers a detection structure from arbitrary model output.
// Stages, first success wins:
//  1. strict JSON parse of the whole string
//  2. first balanced {...} span
//  3. first balanced [...] span, wrapped as {"detections": ...}
//  4. regex text mining against the signal-word whitelist
//  5. empty result with a truncated-input diagnostic
//
// Parse never fails: stage 5 returns a well-typed empty result.
func Parse(raw string) ParseResult {
	trimmed := strings.TrimSpace(raw)

	// Stage 1: the whole response is JSON.
	if res, ok := parseObject(trimmed); ok {
		return res
	}

	// Stage 2: JSON object embedded in prose or markdown fences.
	if span := objectSpanRe.FindString(trimmed); span != "" {
		if res, ok := parseObject(span); ok {
			return res
		}
	}

	// Stage 3: bare detections array.
	if span := arraySpanRe.FindString(trimmed); span != "" {
		var dets []Detection
		if err := json.Unmarshal([]byte(span), &dets); err == nil {
			return ParseResult{Detections: dets}
		}
	}

	// Stage 4: mine "<brand> ... mentioned ... true/false" phrases.
	if res, ok := fallbackParse(trimmed); ok {
		return res
	}

	// Stage 5: give up gracefully.
	return ParseResult{
		Detections: []Detection{},
		ParseError: "Failed to parse response: " + truncate(trimmed, 100) + "...",
	}
}

// parseObject tries a strict JSON object parse, accepting both the batch
// shape {"detections": [...]} and the single-brand shape
// {"brand_mentioned": ..., "reasoning": ...}.
func parseObject(s string) (ParseResult, bool) {
	var generic map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &generic); err != nil {
		return ParseResult{}, false
	}

	if raw, ok := generic["detections"]; ok {
		var dets []Detection
		if err := json.Unmarshal(raw, &dets); err != nil {
			return ParseResult{}, false
		}
		return ParseResult{Detections: dets}, true
	}

	if raw, ok := generic["brand_mentioned"]; ok {
		var mentioned bool
		if err := json.Unmarshal(raw, &mentioned); err != nil {
			return ParseResult{}, false
		}
		det := Detection{Mentioned: mentioned, Reasoning: "No reasoning provided"}
		if rawReason, ok := generic["reasoning"]; ok {
			var reason string
			if err := json.Unmarshal(rawReason, &reason); err == nil {
				det.Reasoning = reason
			}
		}
		if rawName, ok := generic["brand_name"]; ok {
			var name string
			if err := json.Unmarshal(rawName, &name); err == nil {
				det.BrandName = name
			}
		}
		return ParseResult{Detections: []Detection{det}}, true
	}

	// Valid JSON but not a shape we recognize. Reject it so later stages
	// get a chance; an object span inside a detections array must not
	// short-circuit array recovery.
	return ParseResult{}, false
}

func fallbackParse(s string) (ParseResult, bool) {
	var dets []Detection
	for _, pattern := range fallbackPatterns {
		for _, match := range pattern.FindAllStringSubmatch(s, -1) {
			signal := strings.ToLower(match[2])
			dets = append(dets, Detection{
				BrandName: match[1],
				Mentioned: signalWords[signal],
				Reasoning: "Fallback parsing from: " + match[1] + " " + match[2],
			})
		}
	}
	if len(dets) == 0 {
		return ParseResult{}, false
	}
	return ParseResult{Detections: dets}, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
