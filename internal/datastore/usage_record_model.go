package datastore

import (
	"database/sql"
	"time"
)

// Usage record statuses for the processing_history ledger.
const (
	RecordStatusCompleted = "completed"
	RecordStatusError     = "error"
)

// UsageRecord maps to the processing_history table: the append-only ledger
// of per-attempt outcomes used for analytics and billing estimates.
type UsageRecord struct {
	ID             int            `json:"id"`
	UserID         int            `json:"user_id"`
	ContentItemID  sql.NullInt64  `json:"content_item_id,omitempty"`
	ProcessingType string         `json:"processing_type"` // e.g. "content_generation"
	ContentType    string         `json:"content_type"`    // e.g. "main_content", "title"
	TokensUsed     int            `json:"tokens_used"`
	ProviderUsed   string         `json:"provider_used"`
	Cost           float64        `json:"cost"`
	DurationMs     int64          `json:"duration_ms"`
	Status         string         `json:"status"`
	ErrorMessage   sql.NullString `json:"error_message,omitempty"`
	BackupKey      sql.NullString `json:"backup_key,omitempty"` // content-store object key
	CreatedAt      time.Time      `json:"created_at"`
}

// AnalyticsSummary aggregates the ledger over a trailing window.
type AnalyticsSummary struct {
	Days          int                          `json:"days"`
	TotalRequests int                          `json:"total_requests"`
	TotalTokens   int                          `json:"total_tokens"`
	TotalCost     float64                      `json:"total_cost"`
	Errors        int                          `json:"errors"`
	ByProvider    map[string]ProviderAnalytics `json:"by_provider"`
}

// ProviderAnalytics is the per-provider slice of an AnalyticsSummary.
type ProviderAnalytics struct {
	Requests int     `json:"requests"`
	Tokens   int     `json:"tokens"`
	Cost     float64 `json:"cost"`
	Errors   int     `json:"errors"`
}
