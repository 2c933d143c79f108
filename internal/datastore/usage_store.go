package datastore

import (
	"errors"
	"fmt"
	"time"
)

// AppendUsageRecord inserts one ledger row and returns its ID. The ledger is
// append-only; rows are never updated.
func AppendUsageRecord(rec *UsageRecord) (int, error) {
	if DB == nil {
		return 0, errors.New("database connection not initialized")
	}

	query := `
		INSERT INTO processing_history (user_id, content_item_id, processing_type, content_type, tokens_used, provider_used, cost, duration_ms, status, error_message, backup_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	rec.CreatedAt = time.Now()

	var id int
	err := DB.QueryRow(
		query,
		rec.UserID,
		rec.ContentItemID,
		rec.ProcessingType,
		rec.ContentType,
		rec.TokensUsed,
		rec.ProviderUsed,
		rec.Cost,
		rec.DurationMs,
		rec.Status,
		rec.ErrorMessage,
		rec.BackupKey,
		rec.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to append usage record: %w", err)
	}

	rec.ID = id
	return id, nil
}

// GetUsageHistory returns the most recent ledger rows for a user.
func GetUsageHistory(userID, limit int) ([]*UsageRecord, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, content_item_id, processing_type, content_type, tokens_used, provider_used, cost, duration_ms, status, error_message, backup_key, created_at
		FROM processing_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := DB.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage history: %w", err)
	}
	defer rows.Close()

	records := []*UsageRecord{}
	for rows.Next() {
		rec := &UsageRecord{}
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.ContentItemID,
			&rec.ProcessingType,
			&rec.ContentType,
			&rec.TokensUsed,
			&rec.ProviderUsed,
			&rec.Cost,
			&rec.DurationMs,
			&rec.Status,
			&rec.ErrorMessage,
			&rec.BackupKey,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan usage record row: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for usage history: %w", err)
	}
	return records, nil
}

// GetAnalytics rolls up the ledger for a user over the trailing N days.
func GetAnalytics(userID, days int) (*AnalyticsSummary, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}
	if days <= 0 {
		days = 30
	}

	query := `
		SELECT provider_used,
		       COUNT(*),
		       COALESCE(SUM(tokens_used), 0),
		       COALESCE(SUM(cost), 0),
		       COUNT(*) FILTER (WHERE status = 'error')
		FROM processing_history
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY provider_used
	`
	since := time.Now().AddDate(0, 0, -days)

	rows, err := DB.Query(query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics: %w", err)
	}
	defer rows.Close()

	summary := &AnalyticsSummary{
		Days:       days,
		ByProvider: make(map[string]ProviderAnalytics),
	}
	for rows.Next() {
		var provider string
		var pa ProviderAnalytics
		if err := rows.Scan(&provider, &pa.Requests, &pa.Tokens, &pa.Cost, &pa.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan analytics row: %w", err)
		}
		summary.ByProvider[provider] = pa
		summary.TotalRequests += pa.Requests
		summary.TotalTokens += pa.Tokens
		summary.TotalCost += pa.Cost
		summary.Errors += pa.Errors
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for analytics: %w", err)
	}
	return summary, nil
}

// CleanupOldRecords deletes ledger rows older than the retention window.
func CleanupOldRecords(retentionDays int) (int64, error) {
	if DB == nil {
		return 0, errors.New("database connection not initialized")
	}
	if retentionDays <= 0 {
		retentionDays = 90
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result, err := DB.Exec(`DELETE FROM processing_history WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up old usage records: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}
