package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/firegeo/brand-monitor/internal/config"
	"github.com/firegeo/brand-monitor/internal/cost"
	"github.com/firegeo/brand-monitor/internal/llm"
	"github.com/firegeo/brand-monitor/internal/validate"
)

// CatalogHandler serves the model catalog and credential validation.
type CatalogHandler struct {
	providers config.ProvidersConfig
	logger    *zap.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(providers config.ProvidersConfig, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{providers: providers, logger: logger}
}

// catalogEntry is one model with its descriptive metadata.
type catalogEntry struct {
	Model string `json:"model"`
	cost.ModelInfo
}

// Models lists every supported model per provider with cost-tier metadata.
// Route: GET /api/v1/models
func (h *CatalogHandler) Models(c *gin.Context) {
	// Adapters are constructed with empty credentials just to enumerate
	// their model lists; no vendor call is made.
	adapters := []llm.Client{
		llm.NewOpenAIClient("", ""),
		llm.NewAnthropicClient("", ""),
		llm.NewGoogleClient("", ""),
		llm.NewPerplexityClient("", ""),
	}

	catalog := make(map[string][]catalogEntry, len(adapters))
	for _, adapter := range adapters {
		models := adapter.Models()
		entries := make([]catalogEntry, 0, len(models))
		for _, mdl := range models {
			entries = append(entries, catalogEntry{Model: mdl, ModelInfo: cost.GetModelInfo(mdl)})
		}
		catalog[adapter.ProviderName()] = entries
	}

	c.JSON(http.StatusOK, gin.H{"providers": catalog})
}

// validateRequest carries the credentials to check.
type validateRequest struct {
	APIKeys map[string]string `json:"api_keys"`
}

// ValidateKeys checks each posted credential with one minimal vendor call.
// Route: POST /api/v1/keys/validate
//
// Keys configured on the server are checked too when the caller omits them.
func (h *CatalogHandler) ValidateKeys(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if req.APIKeys == nil {
		req.APIKeys = make(map[string]string)
	}
	for id, key := range h.providers.APIKeys() {
		if req.APIKeys[id] == "" {
			req.APIKeys[id] = key
		}
	}

	results := validate.Keys(c.Request.Context(), req.APIKeys, h.logger)
	c.JSON(http.StatusOK, gin.H{"results": results})
}
