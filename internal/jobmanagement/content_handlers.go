package jobmanagement

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ai-content-replacer-pro/backend/internal/auth"
	"ai-content-replacer-pro/backend/internal/contentprocessing"
	"ai-content-replacer-pro/backend/internal/datastore"
	"ai-content-replacer-pro/backend/internal/orchestrator"
	"ai-content-replacer-pro/backend/internal/promptbuilder"
	"ai-content-replacer-pro/backend/internal/quota"
)

var (
	engine    *orchestrator.Engine
	processor *contentprocessing.Processor
	tracker   *quota.Tracker
)

// InitHandlers wires the shared services. Must be called at application
// startup before the router starts serving.
func InitHandlers(e *orchestrator.Engine, p *contentprocessing.Processor, t *quota.Tracker) {
	engine = e
	processor = p
	tracker = t
}

// GenerateRequest is the payload for a single ad-hoc generation.
type GenerateRequest struct {
	Content       string `json:"content" binding:"required"`
	Context       string `json:"context"` // title, excerpt, main_content, meta_description
	MaxWords      int    `json:"max_words"`
	ContentType   string `json:"content_type"`
	ContentItemID int64  `json:"content_item_id"`
}

// GenerateHandler rewrites one piece of text through the provider failover
// chain and returns the outcome. Failures are reported in the result body
// with HTTP 200; only malformed requests get an error status.
func GenerateHandler(c *gin.Context) {
	userID := auth.UserID(c)

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	if req.Context == "" {
		req.Context = promptbuilder.ContextMainContent
	}

	profile, err := datastore.GetBusinessProfile(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load business profile: " + err.Error()})
		return
	}

	result := engine.Generate(c.Request.Context(), req.Content, req.Context, userID, profile, orchestrator.Options{
		MaxWords:      req.MaxWords,
		ContentType:   req.ContentType,
		ContentItemID: req.ContentItemID,
	})

	c.JSON(http.StatusOK, result)
}

// ProcessBatchRequest is the payload for a batch content run.
type ProcessBatchRequest struct {
	Items   []contentprocessing.Item  `json:"items" binding:"required,min=1"`
	Options contentprocessing.Options `json:"options"`
}

// ProcessBatchHandler runs the batch rewriter over the submitted content
// items. The run is synchronous; large batches are paced internally.
func ProcessBatchHandler(c *gin.Context) {
	userID := auth.UserID(c)

	var req ProcessBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	profile, err := datastore.GetBusinessProfile(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load business profile: " + err.Error()})
		return
	}

	result := processor.ProcessBatch(c.Request.Context(), userID, profile, req.Items, req.Options)
	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUsageHistoryHandler lists recent ledger entries, newest first.
func GetUsageHistoryHandler(c *gin.Context) {
	userID := auth.UserID(c)

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	records, err := datastore.GetUsageHistory(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve usage history: " + err.Error()})
		return
	}

	if records == nil {
		records = []*datastore.UsageRecord{} // Return empty array instead of null
	}
	c.JSON(http.StatusOK, records)
}

// GetAnalyticsHandler rolls the ledger up over a trailing N-day window.
func GetAnalyticsHandler(c *gin.Context) {
	userID := auth.UserID(c)

	days := 30
	if daysStr := c.Query("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days parameter"})
			return
		}
		days = parsed
	}

	summary, err := datastore.GetAnalytics(userID, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ProviderStats is the per-config quota snapshot for the dashboard.
type ProviderStats struct {
	ConfigID       int     `json:"config_id"`
	ProviderID     string  `json:"provider_id"`
	Model          string  `json:"model"`
	Enabled        bool    `json:"enabled"`
	Status         string  `json:"status"`
	DailyLimit     int     `json:"daily_limit"`
	UsedToday      int     `json:"used_today"`
	RemainingToday int     `json:"remaining_today"`
	EstimatedCost  float64 `json:"estimated_cost_today"`
}

// GetProviderStatsHandler reports today's consumption against each
// configured provider's daily limit.
func GetProviderStatsHandler(c *gin.Context) {
	userID := auth.UserID(c)

	configs, err := datastore.ListProviderConfigs(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list provider configs: " + err.Error()})
		return
	}

	stats := make([]ProviderStats, 0, len(configs))
	for _, cfg := range configs {
		remaining := cfg.DailyLimit - cfg.UsedToday
		if remaining < 0 {
			remaining = 0
		}
		stats = append(stats, ProviderStats{
			ConfigID:       cfg.ID,
			ProviderID:     cfg.ProviderID,
			Model:          cfg.Model,
			Enabled:        cfg.Enabled,
			Status:         cfg.Status,
			DailyLimit:     cfg.DailyLimit,
			UsedToday:      cfg.UsedToday,
			RemainingToday: remaining,
			EstimatedCost:  float64(cfg.UsedToday) * cfg.CostPerToken,
		})
	}

	c.JSON(http.StatusOK, stats)
}

// ResetDailyUsageHandler zeroes used_today across all provider configs.
// Meant to be hit once per day by an external scheduler.
func ResetDailyUsageHandler(c *gin.Context) {
	if err := tracker.ResetAll(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset daily usage: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Daily usage counters reset successfully"})
}

// CleanupHistoryHandler prunes ledger rows older than the retention window.
func CleanupHistoryHandler(c *gin.Context) {
	retentionDays := 90
	if daysStr := c.Query("retention_days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid retention_days parameter"})
			return
		}
		retentionDays = parsed
	}

	removed, err := datastore.CleanupOldRecords(retentionDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clean up usage history: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Usage history cleaned up successfully", "records_removed": removed})
}
