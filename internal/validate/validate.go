// Package validate checks provider credentials with one minimal vendor call
// each. Validation is best-effort and off the analysis request path: the
// pipeline itself only ever checks that a credential is present.
package validate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/firegeo/brand-monitor/internal/llm"
)

// perKeyTimeout bounds each validation call. A timeout counts as invalid.
const perKeyTimeout = 10 * time.Second

// validationPrompt is the cheapest possible round trip: a one-word prompt
// that any working credential can answer.
const validationPrompt = "Hi"

// Keys validates each provided credential concurrently and reports
// provider name → valid. Empty credentials are skipped. Errors never
// propagate; an unreachable or rejecting vendor simply means false.
func Keys(ctx context.Context, apiKeys map[string]string, logger *zap.Logger) map[string]bool {
	clients := make([]llm.Client, 0, 4)
	if key := apiKeys["openai"]; key != "" {
		clients = append(clients, llm.NewOpenAIClient(key, "gpt-4o-mini"))
	}
	if key := apiKeys["anthropic"]; key != "" {
		clients = append(clients, llm.NewAnthropicClient(key, ""))
	}
	if key := apiKeys["google"]; key != "" {
		clients = append(clients, llm.NewGoogleClient(key, "gemini-2.5-flash-lite"))
	}
	if key := apiKeys["perplexity"]; key != "" {
		clients = append(clients, llm.NewPerplexityClient(key, ""))
	}

	return checkAll(ctx, clients, logger)
}

// checkAll runs one validation call per client concurrently and joins the
// outcomes into a provider → valid map.
func checkAll(ctx context.Context, clients []llm.Client, logger *zap.Logger) map[string]bool {
	results := make(map[string]bool, len(clients))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, client := range clients {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, perKeyTimeout)
			defer cancel()

			_, err := client.Complete(callCtx, validationPrompt)
			if err != nil {
				logger.Debug("key validation failed",
					zap.String("provider", client.ProviderName()),
					zap.Error(err),
				)
			}

			mu.Lock()
			results[client.ProviderName()] = err == nil
			mu.Unlock()
			return nil
		})
	}
	// Goroutines never return errors; Wait is just the join point.
	_ = g.Wait()

	return results
}
