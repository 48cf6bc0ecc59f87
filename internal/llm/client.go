// Package llm provides a provider-agnostic interface for querying LLM
// vendors with a single prompt and getting plain text back. Four vendors
// are supported: OpenAI, Anthropic, Google (Gemini), and Perplexity.
// Adding a vendor means adding a type that implements Client; there is
// no runtime capability probing.
package llm

import "context"

// Request knobs shared by every adapter. Responses are bounded and sampled
// at a moderate temperature so they are varied but still detectable.
const (
	MaxOutputTokens = 4000
	Temperature     = 0.7
)

// Completion is the result of one provider call. Token counts are zero when
// the vendor does not report usage. SearchRequests is only populated by
// search-augmented vendors (Perplexity).
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	SearchRequests   int
}

// Client is the interface every provider adapter implements.
// Implementations are safe for concurrent use: they hold only a vendor
// client, a credential, and a model name, none of which mutate after
// construction.
type Client interface {
	// ProviderName returns the provider identifier, e.g. "OpenAI".
	ProviderName() string

	// ModelName returns the currently selected model identifier.
	ModelName() string

	// Available reports whether a credential is present. It does not check
	// validity; that is the validate package's job, off the request path.
	Available() bool

	// Complete sends one prompt and returns the completion. Transport,
	// auth, and vendor errors come back as ordinary Go errors; the caller
	// decides how to record them.
	Complete(ctx context.Context, prompt string) (*Completion, error)

	// Models lists the model identifiers this adapter supports. Used by the
	// catalog endpoints and the cost model, never by detection logic.
	Models() []string
}
