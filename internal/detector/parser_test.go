package detector

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseStrictBatch(t *testing.T) {
	raw := `{"detections": [
		{"brand_name": "Acme", "mentioned": true, "reasoning": "named directly"},
		{"brand_name": "Bolt", "mentioned": false, "reasoning": "not present"}
	]}`

	res := Parse(raw)
	if res.ParseError != "" {
		t.Fatalf("unexpected parse error: %s", res.ParseError)
	}
	if len(res.Detections) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(res.Detections))
	}
	if res.Detections[0].BrandName != "Acme" || !res.Detections[0].Mentioned {
		t.Errorf("unexpected first detection: %+v", res.Detections[0])
	}
	if res.Detections[1].BrandName != "Bolt" || res.Detections[1].Mentioned {
		t.Errorf("unexpected second detection: %+v", res.Detections[1])
	}
}

func TestParseStrictSingleBrand(t *testing.T) {
	res := Parse(`{"brand_mentioned": true, "reasoning": "appears in the top list"}`)
	if len(res.Detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(res.Detections))
	}
	det := res.Detections[0]
	if !det.Mentioned {
		t.Error("expected mentioned=true")
	}
	if det.Reasoning != "appears in the top list" {
		t.Errorf("unexpected reasoning: %q", det.Reasoning)
	}
}

func TestParseSingleBrandMissingReasoning(t *testing.T) {
	res := Parse(`{"brand_mentioned": false}`)
	if len(res.Detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(res.Detections))
	}
	if res.Detections[0].Reasoning != "No reasoning provided" {
		t.Errorf("unexpected reasoning: %q", res.Detections[0].Reasoning)
	}
}

func TestParseEmbeddedObject(t *testing.T) {
	raw := `Sure! Here's the result: {"brand_mentioned": true, "reasoning": "x"}  Hope that helps.`

	res := Parse(raw)
	if res.ParseError != "" {
		t.Fatalf("unexpected parse error: %s", res.ParseError)
	}
	if len(res.Detections) != 1 || !res.Detections[0].Mentioned {
		t.Fatalf("embedded object not recovered: %+v", res)
	}
	if res.Detections[0].Reasoning != "x" {
		t.Errorf("unexpected reasoning: %q", res.Detections[0].Reasoning)
	}
}

func TestParseMarkdownFencedObject(t *testing.T) {
	raw := "```json\n" +
		`{"detections": [{"brand_name": "Acme", "mentioned": true, "reasoning": "cited"}]}` +
		"\n```"

	res := Parse(raw)
	if len(res.Detections) != 1 {
		t.Fatalf("fenced object not recovered: %+v", res)
	}
	if res.Detections[0].BrandName != "Acme" {
		t.Errorf("unexpected brand: %q", res.Detections[0].BrandName)
	}
}

func TestParseBareArray(t *testing.T) {
	raw := `The detections are: [{"brand_name": "Bolt", "mentioned": false, "reasoning": "absent"}] as requested.`

	res := Parse(raw)
	if len(res.Detections) != 1 {
		t.Fatalf("bare array not recovered: %+v", res)
	}
	if res.Detections[0].BrandName != "Bolt" || res.Detections[0].Mentioned {
		t.Errorf("unexpected detection: %+v", res.Detections[0])
	}
}

func TestParseFirstSpanWins(t *testing.T) {
	raw := `{"brand_mentioned": true, "reasoning": "first"} trailing ` +
		`{"brand_mentioned": false, "reasoning": "second"}`

	res := Parse(raw)
	if len(res.Detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(res.Detections))
	}
	if res.Detections[0].Reasoning != "first" {
		t.Errorf("expected first span to win, got %q", res.Detections[0].Reasoning)
	}
}

func TestParseFallbackTextMining(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		mentioned bool
	}{
		{"mentioned true", "Acme mentioned: true in the answer", true},
		{"mentioned false", "Acme mentioned: false overall", false},
		{"is mentioned", "Acme is clearly mentioned here", true},
		{"was not found", "Bolt was not found anywhere", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.raw)
			if res.ParseError != "" {
				t.Fatalf("fallback did not trigger: %+v", res)
			}
			if len(res.Detections) == 0 {
				t.Fatal("expected at least one detection")
			}
			if res.Detections[0].Mentioned != tt.mentioned {
				t.Errorf("mentioned = %v, want %v", res.Detections[0].Mentioned, tt.mentioned)
			}
		})
	}
}

func TestParseUnrecoverable(t *testing.T) {
	raw := strings.Repeat("complete gibberish with no structure at all ", 5)

	res := Parse(raw)
	if res.Detections == nil {
		t.Fatal("detections must never be nil")
	}
	if len(res.Detections) != 0 {
		t.Fatalf("expected no detections, got %+v", res.Detections)
	}
	if !strings.HasPrefix(res.ParseError, "Failed to parse response: ") {
		t.Errorf("unexpected parse error: %q", res.ParseError)
	}
	if !strings.HasSuffix(res.ParseError, "...") {
		t.Errorf("parse error should end with ellipsis: %q", res.ParseError)
	}
	// Diagnostic carries at most 100 characters of the input.
	body := strings.TrimSuffix(strings.TrimPrefix(res.ParseError, "Failed to parse response: "), "...")
	if len(body) > 100 {
		t.Errorf("diagnostic too long: %d chars", len(body))
	}
}

func TestParseRoundTripIdempotent(t *testing.T) {
	// A parse result re-serialized and parsed again yields the same detections.
	original := Parse(`{"detections": [{"brand_name": "Acme", "mentioned": true, "reasoning": "r"}]}`)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}
	reparsed := Parse(string(data))
	if len(reparsed.Detections) != len(original.Detections) {
		t.Fatalf("round trip changed detection count: %d != %d",
			len(reparsed.Detections), len(original.Detections))
	}
	if reparsed.Detections[0] != original.Detections[0] {
		t.Errorf("round trip changed detection: %+v != %+v",
			reparsed.Detections[0], original.Detections[0])
	}
}

func TestParseUnrecognizedJSONShape(t *testing.T) {
	// Valid JSON in an unknown shape still yields the graceful empty result.
	res := Parse(`{"answer": 42}`)
	if len(res.Detections) != 0 {
		t.Fatalf("expected empty detections, got %+v", res.Detections)
	}
	if res.ParseError == "" {
		t.Error("expected a parse error diagnostic")
	}
}
