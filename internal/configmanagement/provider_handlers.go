package configmanagement

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ai-content-replacer-pro/backend/internal/auth"
	"ai-content-replacer-pro/backend/internal/datastore"
	"ai-content-replacer-pro/backend/internal/orchestrator"
	"ai-content-replacer-pro/backend/internal/providercatalog"
	"ai-content-replacer-pro/backend/internal/security"
)

var engine *orchestrator.Engine

// InitHandlers wires the orchestration engine used by the test-connection
// endpoint. Must be called at application startup.
func InitHandlers(e *orchestrator.Engine) {
	engine = e
}

// ProviderConfigPayload is the JSON body for creating or updating a
// provider configuration. APIKey is accepted in plaintext over the wire,
// sealed before it touches the database, and never echoed back.
type ProviderConfigPayload struct {
	ProviderID   string  `json:"provider_id"`
	APIKey       string  `json:"api_key"`
	Model        string  `json:"model"`
	Priority     int     `json:"priority"`
	DailyLimit   int     `json:"daily_limit"`
	CostPerToken float64 `json:"cost_per_token"`
	Enabled      bool    `json:"enabled"`
}

// ListCatalogHandler lists the supported provider families and their models.
func ListCatalogHandler(c *gin.Context) {
	c.JSON(http.StatusOK, providercatalog.List())
}

// ListProviderConfigsHandler lists the caller's provider configurations.
// API keys are returned masked only.
func ListProviderConfigsHandler(c *gin.Context) {
	userID := auth.UserID(c)

	configs, err := datastore.ListProviderConfigs(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list provider configs: " + err.Error()})
		return
	}

	if configs == nil {
		configs = []*datastore.ProviderConfig{} // Return empty array instead of null
	}
	for _, cfg := range configs {
		attachMaskedKey(cfg)
	}

	c.JSON(http.StatusOK, configs)
}

// SaveProviderConfigHandler creates or updates the configuration for one
// provider family. One config per (user, provider); a second save replaces
// the first.
func SaveProviderConfigHandler(c *gin.Context) {
	userID := auth.UserID(c)

	var payload ProviderConfigPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	provider, err := providercatalog.Get(payload.ProviderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported provider: " + payload.ProviderID})
		return
	}

	if strings.TrimSpace(payload.APIKey) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "API key is required"})
		return
	}
	if err := security.ValidateKeyFormat(payload.ProviderID, payload.APIKey); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid API key format for provider " + payload.ProviderID})
		return
	}

	model := payload.Model
	if model == "" {
		model = provider.DefaultModel
	} else if !providercatalog.SupportsModel(payload.ProviderID, model) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Model " + model + " is not supported by provider " + payload.ProviderID})
		return
	}

	if payload.DailyLimit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Daily limit must not be negative"})
		return
	}

	encrypted, err := security.EncryptAPIKey(payload.APIKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encrypt API key: " + err.Error()})
		return
	}

	cfg := &datastore.ProviderConfig{
		UserID:          userID,
		ProviderID:      payload.ProviderID,
		APIKeyEncrypted: encrypted,
		Model:           model,
		Priority:        payload.Priority,
		DailyLimit:      payload.DailyLimit,
		CostPerToken:    payload.CostPerToken,
		Enabled:         payload.Enabled,
		Status:          datastore.StatusInactive,
	}

	if _, err := datastore.SaveProviderConfig(cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save provider config: " + err.Error()})
		return
	}

	cfg.APIKeyMasked = security.MaskAPIKey(payload.APIKey)
	c.JSON(http.StatusOK, cfg)
}

// DeleteProviderConfigHandler removes a provider configuration by ID.
func DeleteProviderConfigHandler(c *gin.Context) {
	userID := auth.UserID(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid provider config ID format"})
		return
	}

	if err := datastore.DeleteProviderConfig(id, userID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete provider config: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Provider config deleted successfully"})
}

// TestConnectionPayload carries an ad-hoc key to probe, or names a stored
// config to probe with its sealed key.
type TestConnectionPayload struct {
	ProviderID string `json:"provider_id"`
	APIKey     string `json:"api_key"`
	Model      string `json:"model"`
	ConfigID   int    `json:"config_id"`
}

// TestConnectionHandler fires a one-shot probe request at a provider to
// verify the key works before it is relied on for generation.
func TestConnectionHandler(c *gin.Context) {
	var payload TestConnectionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	apiKey := payload.APIKey
	providerID := payload.ProviderID
	model := payload.Model

	if apiKey == "" && payload.ConfigID != 0 {
		cfg, err := datastore.GetProviderConfig(payload.ConfigID)
		if err != nil || cfg.UserID != auth.UserID(c) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Provider config not found"})
			return
		}
		apiKey, err = security.DecryptAPIKey(cfg.APIKeyEncrypted)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decrypt stored API key: " + err.Error()})
			return
		}
		providerID = cfg.ProviderID
		if model == "" {
			model = cfg.Model
		}
	}

	if providerID == "" || apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider_id and api_key (or config_id) are required"})
		return
	}

	result := engine.TestConnection(c.Request.Context(), providerID, apiKey, model)
	c.JSON(http.StatusOK, result)
}

// attachMaskedKey fills APIKeyMasked from the sealed key. A key that cannot
// be unsealed (for example after an encryption key rotation) masks to "****".
func attachMaskedKey(cfg *datastore.ProviderConfig) {
	if cfg.APIKeyEncrypted == "" {
		cfg.APIKeyMasked = ""
		return
	}
	plaintext, err := security.DecryptAPIKey(cfg.APIKeyEncrypted)
	if err != nil {
		cfg.APIKeyMasked = "****"
		return
	}
	cfg.APIKeyMasked = security.MaskAPIKey(plaintext)
}
