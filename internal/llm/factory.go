package llm

import "github.com/firegeo/brand-monitor/internal/model"

// FromRequest builds one adapter per provider credential present in the
// request, using the request's model selection when given. Providers with
// empty credentials are simply absent from the returned map.
//
// Request keys use lowercase provider ids ("openai", "anthropic", "google",
// "perplexity"); the returned map is keyed by display provider names, which
// is what result records use.
func FromRequest(req *model.AnalysisRequest) map[string]Client {
	clients := make(map[string]Client)

	if key := req.APIKeys["openai"]; key != "" {
		clients[model.ProviderOpenAI] = NewOpenAIClient(key, req.SelectedModels["openai"])
	}
	if key := req.APIKeys["anthropic"]; key != "" {
		clients[model.ProviderAnthropic] = NewAnthropicClient(key, req.SelectedModels["anthropic"])
	}
	if key := req.APIKeys["google"]; key != "" {
		clients[model.ProviderGoogle] = NewGoogleClient(key, req.SelectedModels["google"])
	}
	if key := req.APIKeys["perplexity"]; key != "" {
		clients[model.ProviderPerplexity] = NewPerplexityClient(key, req.SelectedModels["perplexity"])
	}

	return clients
}
