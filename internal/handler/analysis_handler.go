package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/firegeo/brand-monitor/internal/config"
	"github.com/firegeo/brand-monitor/internal/export"
	"github.com/firegeo/brand-monitor/internal/model"
	"github.com/firegeo/brand-monitor/internal/storage"
)

// AnalysisRunner is what the handler needs from the analyzer: run one
// request to completion. Defined here so tests can substitute a fake.
type AnalysisRunner interface {
	Run(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisResult, error)
}

// AnalysisHandler runs analyses and serves the run history.
type AnalysisHandler struct {
	runner       AnalysisRunner
	analysisRepo storage.AnalysisRepository
	usageRepo    storage.UsageRepository
	providers    config.ProvidersConfig
	logger       *zap.Logger
}

// NewAnalysisHandler creates an AnalysisHandler. The repositories may be
// nil, in which case runs are not persisted.
func NewAnalysisHandler(runner AnalysisRunner, analysisRepo storage.AnalysisRepository, usageRepo storage.UsageRepository, providers config.ProvidersConfig, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		runner:       runner,
		analysisRepo: analysisRepo,
		usageRepo:    usageRepo,
		providers:    providers,
		logger:       logger,
	}
}

// Create runs a full analysis from the posted request.
// Route: POST /api/v1/analyses?format=json|csv
//
// Configuration problems (empty brand, no prompts, missing credentials) are
// 400s. Once a run starts it always completes: per-provider failures come
// back inside the result, not as an HTTP error.
func (h *AnalysisHandler) Create(c *gin.Context) {
	var req model.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	// Fill in server-configured credentials for providers the caller did
	// not supply keys for.
	if req.APIKeys == nil {
		req.APIKeys = make(map[string]string)
	}
	if req.SelectedModels == nil {
		req.SelectedModels = make(map[string]string)
	}
	for id, key := range h.providers.APIKeys() {
		if req.APIKeys[id] == "" {
			req.APIKeys[id] = key
		}
	}
	for id, mdl := range h.providers.SelectedModels() {
		if req.SelectedModels[id] == "" {
			req.SelectedModels[id] = mdl
		}
	}

	result, err := h.runner.Run(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.persist(c.Request.Context(), result)

	switch c.DefaultQuery("format", "json") {
	case "csv":
		data, err := export.CSV(result)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rendering csv: " + err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="analysis.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	default:
		data, err := export.JSON(result)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rendering json: " + err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json", data)
	}
}

// List serves recent run summaries.
// Route: GET /api/v1/analyses?limit=20
func (h *AnalysisHandler) List(c *gin.Context) {
	if h.analysisRepo == nil {
		c.JSON(http.StatusOK, gin.H{"analyses": []model.AnalysisRecord{}})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	records, err := h.analysisRepo.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("listing analyses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing analyses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": records})
}

// persist records the completed run and its token usage. History is
// observability, not part of the pipeline, so failures are logged and
// swallowed.
func (h *AnalysisHandler) persist(ctx context.Context, result *model.AnalysisResult) {
	if h.usageRepo != nil {
		for _, usage := range result.TokenUsage {
			record := &model.UsageRecord{
				Provider:         usage.Provider,
				Model:            usage.Model,
				PromptTokens:     usage.PromptTokens,
				CompletionTokens: usage.CompletionTokens,
				TotalTokens:      usage.TotalTokens,
				SearchRequests:   usage.SearchRequests,
				CostEstimate:     usage.CostEstimate,
			}
			if err := h.usageRepo.Create(ctx, record); err != nil {
				h.logger.Error("persisting usage record", zap.Error(err))
			}
		}
	}

	if h.analysisRepo == nil {
		return
	}

	// Credentials must never reach the database.
	redacted := *result
	redacted.Request.APIKeys = nil

	blob, err := json.Marshal(&redacted)
	if err != nil {
		h.logger.Error("marshaling analysis for persistence", zap.Error(err))
		return
	}

	record := &model.AnalysisRecord{
		TargetBrand:      result.Request.TargetBrand,
		CompetitorCount:  len(result.Request.Competitors),
		TotalPrompts:     result.TotalPrompts,
		CompletedPrompts: result.CompletedPrompts,
		DurationSeconds:  result.AnalysisDuration,
		TotalCost:        result.TotalCost,
		ResultJSON:       string(blob),
	}
	if err := h.analysisRepo.Create(ctx, record); err != nil {
		h.logger.Error("persisting analysis record", zap.Error(err))
	}
}
