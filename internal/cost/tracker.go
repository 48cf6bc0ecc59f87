package cost

import (
	"sync"

	"github.com/firegeo/brand-monitor/internal/model"
)

// ProviderStats aggregates usage per provider.
type ProviderStats struct {
	TotalTokens int     `json:"total_tokens"`
	TotalCost   float64 `json:"total_cost"`
	Calls       int     `json:"calls"`
}

// Tracker is an append-only usage log owned by the caller of an analysis
// run. The analyzer's provider tasks record usage concurrently, so the log
// is mutex-guarded.
type Tracker struct {
	mu      sync.Mutex
	history []model.TokenUsage
}

// NewTracker creates an empty usage tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Track records one call's token usage, computing the cost estimate from
// the pricing table, and returns the entry.
func (t *Tracker) Track(provider, mdl string, promptTokens, completionTokens, searchRequests int) model.TokenUsage {
	usage := model.TokenUsage{
		Provider:         provider,
		Model:            mdl,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		SearchRequests:   searchRequests,
		CostEstimate:     Calculate(mdl, promptTokens, completionTokens, searchRequests),
	}

	t.mu.Lock()
	t.history = append(t.history, usage)
	t.mu.Unlock()

	return usage
}

// History returns a copy of all recorded entries in append order.
func (t *Tracker) History() []model.TokenUsage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.TokenUsage, len(t.history))
	copy(out, t.history)
	return out
}

// TotalCost sums the cost estimates of every recorded entry.
func (t *Tracker) TotalCost() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total float64
	for _, u := range t.history {
		total += u.CostEstimate
	}
	return total
}

// TotalTokens sums the token counts of every recorded entry.
func (t *Tracker) TotalTokens() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total int
	for _, u := range t.history {
		total += u.TotalTokens
	}
	return total
}

// ByProvider aggregates tokens, cost, and call counts per provider.
func (t *Tracker) ByProvider() map[string]ProviderStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := make(map[string]ProviderStats)
	for _, u := range t.history {
		s := stats[u.Provider]
		s.TotalTokens += u.TotalTokens
		s.TotalCost += u.CostEstimate
		s.Calls++
		stats[u.Provider] = s
	}
	return stats
}

// Reset clears the usage history.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.history = nil
	t.mu.Unlock()
}
