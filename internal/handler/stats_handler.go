package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/firegeo/brand-monitor/internal/storage"
)

// StatsHandler serves usage accounting aggregates for operators.
type StatsHandler struct {
	usageRepo    storage.UsageRepository
	analysisRepo storage.AnalysisRepository
	logger       *zap.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(usageRepo storage.UsageRepository, analysisRepo storage.AnalysisRepository, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		usageRepo:    usageRepo,
		analysisRepo: analysisRepo,
		logger:       logger,
	}
}

// Stats reports lifetime usage totals, per-provider breakdowns, and the
// analysis count.
// Route: GET /api/v1/admin/stats
func (h *StatsHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	totals, err := h.usageRepo.Totals(ctx)
	if err != nil {
		h.logger.Error("computing usage totals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "computing usage totals"})
		return
	}

	byProvider, err := h.usageRepo.TotalsByProvider(ctx)
	if err != nil {
		h.logger.Error("computing per-provider usage", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "computing per-provider usage"})
		return
	}

	analysisCount, err := h.analysisRepo.Count(ctx)
	if err != nil {
		h.logger.Error("counting analyses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "counting analyses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"usage":       totals,
		"by_provider": byProvider,
		"analyses":    analysisCount,
	})
}
