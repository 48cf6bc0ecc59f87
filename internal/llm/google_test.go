package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGoogleComplete(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": "Acme is "},
					{"text": "the leader."},
				}}},
			},
			"usageMetadata": map[string]any{
				"promptTokenCount":     12,
				"candidatesTokenCount": 7,
			},
		})
	}))
	defer server.Close()

	client := NewGoogleClient("test-key", "")
	client.SetBaseURL(server.URL)

	completion, err := client.Complete(context.Background(), "Best widget maker?")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}

	if completion.Text != "Acme is the leader." {
		t.Errorf("text = %q", completion.Text)
	}
	if completion.PromptTokens != 12 || completion.CompletionTokens != 7 {
		t.Errorf("usage = %d/%d", completion.PromptTokens, completion.CompletionTokens)
	}

	if gotPath != "/models/gemini-2.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "Best widget maker?" {
		t.Errorf("unexpected request contents: %+v", gotBody.Contents)
	}
	if gotBody.GenerationConfig.MaxOutputTokens != MaxOutputTokens {
		t.Errorf("max output tokens = %d", gotBody.GenerationConfig.MaxOutputTokens)
	}
}

func TestGoogleCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 403, "message": "API key not valid"},
		})
	}))
	defer server.Close()

	client := NewGoogleClient("bad-key", "")
	client.SetBaseURL(server.URL)

	_, err := client.Complete(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("error = %v", err)
	}
}

func TestGoogleCompleteEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	client := NewGoogleClient("key", "")
	client.SetBaseURL(server.URL)

	_, err := client.Complete(context.Background(), "hi")
	if err == nil || !strings.Contains(err.Error(), "empty response") {
		t.Errorf("error = %v", err)
	}
}

func TestGoogleCompleteModelSelection(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "ok"}}}},
			},
		})
	}))
	defer server.Close()

	client := NewGoogleClient("key", "gemini-pro")
	client.SetBaseURL(server.URL)

	if _, err := client.Complete(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/models/gemini-pro:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
}
