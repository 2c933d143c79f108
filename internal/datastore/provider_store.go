package datastore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const providerConfigColumns = `id, user_id, provider_id, api_key_encrypted, model, priority, daily_limit, used_today, cost_per_token, enabled, status, created_at, updated_at`

func scanProviderConfig(row interface{ Scan(...interface{}) error }) (*ProviderConfig, error) {
	pc := &ProviderConfig{}
	err := row.Scan(
		&pc.ID,
		&pc.UserID,
		&pc.ProviderID,
		&pc.APIKeyEncrypted,
		&pc.Model,
		&pc.Priority,
		&pc.DailyLimit,
		&pc.UsedToday,
		&pc.CostPerToken,
		&pc.Enabled,
		&pc.Status,
		&pc.CreatedAt,
		&pc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return pc, nil
}

// SaveProviderConfig upserts the configuration for (user, provider) and
// returns the row ID. Configs are never hard-deleted, only disabled.
func SaveProviderConfig(pc *ProviderConfig) (int, error) {
	if DB == nil {
		return 0, errors.New("database connection not initialized")
	}

	query := `
		INSERT INTO api_providers (user_id, provider_id, api_key_encrypted, model, priority, daily_limit, cost_per_token, enabled, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (user_id, provider_id) DO UPDATE
		SET api_key_encrypted = EXCLUDED.api_key_encrypted,
		    model = EXCLUDED.model,
		    priority = EXCLUDED.priority,
		    daily_limit = EXCLUDED.daily_limit,
		    cost_per_token = EXCLUDED.cost_per_token,
		    enabled = EXCLUDED.enabled,
		    status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	now := time.Now()

	var id int
	err := DB.QueryRow(
		query,
		pc.UserID,
		pc.ProviderID,
		pc.APIKeyEncrypted,
		pc.Model,
		pc.Priority,
		pc.DailyLimit,
		pc.CostPerToken,
		pc.Enabled,
		pc.Status,
		now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save provider config: %w", err)
	}

	pc.ID = id
	pc.UpdatedAt = now
	return id, nil
}

// GetProviderConfig retrieves a provider config by row ID.
func GetProviderConfig(id int) (*ProviderConfig, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	query := `SELECT ` + providerConfigColumns + ` FROM api_providers WHERE id = $1`
	pc, err := scanProviderConfig(DB.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("provider config with ID %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get provider config: %w", err)
	}
	return pc, nil
}

// ListProviderConfigs lists all configs for a user in priority order.
func ListProviderConfigs(userID int) ([]*ProviderConfig, error) {
	return queryProviderConfigs(
		`SELECT `+providerConfigColumns+` FROM api_providers WHERE user_id = $1 ORDER BY priority ASC, id ASC`,
		userID,
	)
}

// GetEnabledProviders returns all enabled configs for a user, ordered by
// priority ascending. Ties keep insertion order; the orchestrator refines
// ties further using the catalog registration order.
func GetEnabledProviders(userID int) ([]*ProviderConfig, error) {
	return queryProviderConfigs(
		`SELECT `+providerConfigColumns+` FROM api_providers WHERE user_id = $1 AND enabled = true ORDER BY priority ASC, id ASC`,
		userID,
	)
}

func queryProviderConfigs(query string, args ...interface{}) ([]*ProviderConfig, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider configs: %w", err)
	}
	defer rows.Close()

	configs := []*ProviderConfig{}
	for rows.Next() {
		pc, err := scanProviderConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan provider config row: %w", err)
		}
		configs = append(configs, pc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for provider configs: %w", err)
	}
	return configs, nil
}

// IncrementUsage adds amount to used_today for (user, provider) as a single
// atomic UPDATE. Concurrent generate calls must not lose increments, so this
// is never done as read-modify-write.
func IncrementUsage(userID int, providerID string, amount int) error {
	if DB == nil {
		return errors.New("database connection not initialized")
	}

	query := `UPDATE api_providers SET used_today = used_today + $1, updated_at = $2 WHERE user_id = $3 AND provider_id = $4`
	result, err := DB.Exec(query, amount, time.Now(), userID, providerID)
	if err != nil {
		return fmt.Errorf("failed to increment usage for provider %s: %w", providerID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no provider config found for user %d, provider %s", userID, providerID)
	}
	return nil
}

// UpdateProviderStatus records the observable status of a config after an
// attempt. Idempotent; the status column is never consulted for eligibility.
func UpdateProviderStatus(id int, status string) error {
	if DB == nil {
		return errors.New("database connection not initialized")
	}

	query := `UPDATE api_providers SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := DB.Exec(query, status, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update provider status: %w", err)
	}
	return nil
}

// DeleteProviderConfig removes a provider config owned by the given user.
func DeleteProviderConfig(id, userID int) error {
	if DB == nil {
		return errors.New("database connection not initialized")
	}

	result, err := DB.Exec(`DELETE FROM api_providers WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete provider config with ID %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("provider config with ID %d not found", id)
	}
	return nil
}

// ResetDailyUsage zeroes used_today for every provider config. Intended to
// run once per calendar day from an external scheduler. Idempotent.
func ResetDailyUsage() error {
	if DB == nil {
		return errors.New("database connection not initialized")
	}

	if _, err := DB.Exec(`UPDATE api_providers SET used_today = 0, updated_at = $1`, time.Now()); err != nil {
		return fmt.Errorf("failed to reset daily usage: %w", err)
	}
	return nil
}
