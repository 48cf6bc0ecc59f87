// Package analyzer orchestrates a full brand-visibility analysis run: for
// each prompt it fans out to every configured provider concurrently, runs
// brand detection over each answer, and assembles the aggregate result.
//
// Once a run starts, only configuration problems abort it. Provider and
// detection failures are captured as data on the individual response
// records, so the caller always gets exactly one PromptResult per prompt.
package analyzer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/firegeo/brand-monitor/internal/cost"
	"github.com/firegeo/brand-monitor/internal/detector"
	"github.com/firegeo/brand-monitor/internal/llm"
	"github.com/firegeo/brand-monitor/internal/model"
)

// defaultDetectionModel is the fixed model used to judge brand mentions.
// Detection never uses the providers under test.
const defaultDetectionModel = "gemini-2.5-flash"

// BrandDetector is what the analyzer needs from the detection layer.
type BrandDetector interface {
	ProviderName() string
	ModelName() string
	DetectBrands(ctx context.Context, responseText, targetBrand string, competitors []string, question string) (map[string]model.BrandDetection, *llm.Completion)
}

// ProviderFactory builds the provider adapters for one request.
type ProviderFactory func(req *model.AnalysisRequest) map[string]llm.Client

// DetectorFactory builds the brand detector for one request. It fails when
// the detection credential is missing, a configuration error surfaced
// before any provider call.
type DetectorFactory func(req *model.AnalysisRequest) (BrandDetector, error)

// Analyzer runs analyses. Zero or more options customize construction;
// the defaults wire the real provider adapters and a Gemini detector.
type Analyzer struct {
	logger       *zap.Logger
	tracker      *cost.Tracker
	newProviders ProviderFactory
	newDetector  DetectorFactory
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithTracker attaches a caller-owned usage tracker. Every provider and
// detection call made during runs is recorded into it.
func WithTracker(t *cost.Tracker) Option {
	return func(a *Analyzer) { a.tracker = t }
}

// WithProviderFactory overrides how provider adapters are built. Tests use
// this to substitute fakes.
func WithProviderFactory(f ProviderFactory) Option {
	return func(a *Analyzer) { a.newProviders = f }
}

// WithDetectorFactory overrides how the brand detector is built.
func WithDetectorFactory(f DetectorFactory) Option {
	return func(a *Analyzer) { a.newDetector = f }
}

// New creates an Analyzer.
func New(logger *zap.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		logger:       logger,
		newProviders: llm.FromRequest,
	}
	a.newDetector = func(req *model.AnalysisRequest) (BrandDetector, error) {
		key := req.APIKeys["google"]
		if key == "" {
			return nil, errors.New("google API key is required for brand detection")
		}
		return detector.New(llm.NewGoogleClient(key, defaultDetectionModel), logger), nil
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes one analysis. Prompts are processed strictly in request
// order; within a prompt, all configured providers run concurrently and the
// run advances only after every one has completed or failed. The error
// return is non-nil only for configuration problems detected before any
// provider call.
func (a *Analyzer) Run(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	providers := a.newProviders(req)
	if len(providers) == 0 {
		return nil, errors.New("at least one provider API key is required")
	}

	det, err := a.newDetector(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	runUsage := cost.NewTracker()

	result := &model.AnalysisResult{
		Request:      *req,
		CreatedAt:    start,
		TotalPrompts: len(req.Prompts),
	}

	a.logger.Info("starting analysis",
		zap.String("target_brand", req.TargetBrand),
		zap.Int("competitors", len(req.Competitors)),
		zap.Int("prompts", len(req.Prompts)),
		zap.Int("providers", len(providers)),
	)

	for idx, prompt := range req.Prompts {
		promptResult := model.PromptResult{
			Prompt:      prompt,
			PromptIndex: idx,
			AIResponses: make(map[string]model.ProviderResponse, len(providers)),
		}

		// Fan out: one goroutine per provider, each owning its adapter and
		// writing one record to the channel. The merge below is the only
		// writer of the result map, so no locking is needed.
		records := make(chan model.ProviderResponse, len(providers))
		for name, client := range providers {
			go func(name string, client llm.Client) {
				records <- a.processProvider(ctx, name, client, prompt, det, req, runUsage)
			}(name, client)
		}

		// Fan in: all providers must finish, successfully or not, before
		// the next prompt starts.
		for range providers {
			resp := <-records
			promptResult.AIResponses[resp.Provider] = resp
		}

		result.ResultsByPrompt = append(result.ResultsByPrompt, promptResult)
		result.CompletedPrompts++

		a.logger.Debug("prompt completed",
			zap.Int("prompt_index", idx),
			zap.Int("completed", result.CompletedPrompts),
			zap.Int("total", result.TotalPrompts),
		)
	}

	result.AnalysisDuration = time.Since(start).Seconds()
	result.TokenUsage = runUsage.History()
	result.TotalCost = runUsage.TotalCost()

	a.logger.Info("analysis complete",
		zap.Int("prompts", result.CompletedPrompts),
		zap.Float64("duration_seconds", result.AnalysisDuration),
		zap.Float64("total_cost", result.TotalCost),
	)

	return result, nil
}

// processProvider runs the full per-provider flow for one prompt: provider
// call, then batched brand detection over the answer. It never fails: any
// error ends up in-band on the returned record, with brand detections still
// covering every requested brand.
func (a *Analyzer) processProvider(ctx context.Context, name string, client llm.Client, prompt string, det BrandDetector, req *model.AnalysisRequest, runUsage *cost.Tracker) model.ProviderResponse {
	start := time.Now()

	completion, err := client.Complete(ctx, prompt)
	if err != nil {
		a.logger.Warn("provider call failed",
			zap.String("provider", name),
			zap.Error(err),
		)
		return model.ProviderResponse{
			Provider:        name,
			Model:           client.ModelName(),
			Prompt:          prompt,
			ResponseText:    "Error: " + err.Error(),
			BrandDetections: defaultDetections(req.AllBrands()),
			ProcessingTime:  time.Since(start).Seconds(),
			Error:           err.Error(),
		}
	}

	usage := a.track(runUsage, name, client.ModelName(), completion)

	detections, detCompletion := det.DetectBrands(ctx, completion.Text, req.TargetBrand, req.Competitors, prompt)
	if detCompletion != nil {
		a.track(runUsage, det.ProviderName(), det.ModelName(), detCompletion)
	}

	return model.ProviderResponse{
		Provider:        name,
		Model:           client.ModelName(),
		Prompt:          prompt,
		ResponseText:    completion.Text,
		BrandDetections: detections,
		TokenUsage:      &usage,
		ProcessingTime:  time.Since(start).Seconds(),
	}
}

// track records usage into the per-run log and, when attached, the
// caller-owned tracker.
func (a *Analyzer) track(runUsage *cost.Tracker, provider, mdl string, c *llm.Completion) model.TokenUsage {
	usage := runUsage.Track(provider, mdl, c.PromptTokens, c.CompletionTokens, c.SearchRequests)
	if a.tracker != nil {
		a.tracker.Track(provider, mdl, c.PromptTokens, c.CompletionTokens, c.SearchRequests)
	}
	return usage
}

// defaultDetections covers every brand with the sentinel outcome, used when
// the provider call itself failed and there is no answer to analyze.
func defaultDetections(brands []string) map[string]model.BrandDetection {
	detections := make(map[string]model.BrandDetection, len(brands))
	for _, brand := range brands {
		detections[brand] = model.BrandDetection{
			BrandName: brand,
			Mentioned: false,
			Reasoning: "No detection result found",
		}
	}
	return detections
}
