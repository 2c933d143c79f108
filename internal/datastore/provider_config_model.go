package datastore

import "time"

// ProviderConfig status values. Status is derived and observable only;
// eligibility is recomputed on each call from enabled + usage + rate state.
const (
	StatusInactive     = "inactive"
	StatusActive       = "active"
	StatusError        = "error"
	StatusLimitReached = "limit_reached"
)

// ProviderConfig maps to the api_providers table. One row per installation
// user per provider family. APIKeyEncrypted holds the AEAD-sealed key; the
// plaintext key is never stored or logged.
type ProviderConfig struct {
	ID              int       `json:"id"`
	UserID          int       `json:"user_id"`
	ProviderID      string    `json:"provider_id"` // catalog id, e.g. "openai"
	APIKeyEncrypted string    `json:"-"`
	APIKeyMasked    string    `json:"api_key_masked,omitempty"`
	Model           string    `json:"model"`
	Priority        int       `json:"priority"`    // lower = tried first
	DailyLimit      int       `json:"daily_limit"` // token units per day
	UsedToday       int       `json:"used_today"`
	CostPerToken    float64   `json:"cost_per_token"`
	Enabled         bool      `json:"enabled"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
