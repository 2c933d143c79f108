package quota

import (
	"fmt"
	"log"

	"ai-content-replacer-pro/backend/internal/datastore"
)

// Store is the persistence surface the tracker needs. datastore satisfies it
// with atomic SQL increments; tests substitute fakes.
type Store interface {
	IncrementUsage(userID int, providerID string, amount int) error
	ResetDailyUsage() error
}

// datastoreStore adapts the package-level datastore functions.
type datastoreStore struct{}

func (datastoreStore) IncrementUsage(userID int, providerID string, amount int) error {
	return datastore.IncrementUsage(userID, providerID, amount)
}

func (datastoreStore) ResetDailyUsage() error {
	return datastore.ResetDailyUsage()
}

// Tracker maintains per-provider daily usage counters. Counters live in the
// database; the tracker never caches them across calls, so concurrent
// generate calls cannot lose increments.
type Tracker struct {
	store Store
}

// NewTracker creates a Tracker backed by the shared datastore.
func NewTracker() *Tracker {
	return &Tracker{store: datastoreStore{}}
}

// NewTrackerWithStore creates a Tracker over a custom store.
func NewTrackerWithStore(store Store) *Tracker {
	return &Tracker{store: store}
}

// IsUnderLimit reports whether the config still has daily budget.
func (t *Tracker) IsUnderLimit(cfg *datastore.ProviderConfig) bool {
	return cfg.UsedToday < cfg.DailyLimit
}

// RecordUsage adds amount token-units to the provider's daily counter via a
// single atomic update, and mirrors the new value onto cfg so later
// eligibility checks within the same call see it. A persistence failure is
// logged and returned as a warning: under-recording is safer than blocking
// future requests, so the caller keeps the successful generation result.
func (t *Tracker) RecordUsage(cfg *datastore.ProviderConfig, amount int) error {
	if amount < 0 {
		return fmt.Errorf("usage amount must be non-negative, got %d", amount)
	}

	if err := t.store.IncrementUsage(cfg.UserID, cfg.ProviderID, amount); err != nil {
		log.Printf("WARNING: failed to persist usage of %d units for provider %s (user %d): %v", amount, cfg.ProviderID, cfg.UserID, err)
		return fmt.Errorf("failed to record usage for provider %s: %w", cfg.ProviderID, err)
	}

	cfg.UsedToday += amount
	return nil
}

// ResetAll zeroes every provider's daily counter. Idempotent; runs once per
// calendar day, triggered by an external scheduler.
func (t *Tracker) ResetAll() error {
	if err := t.store.ResetDailyUsage(); err != nil {
		return fmt.Errorf("failed to reset daily usage: %w", err)
	}
	log.Println("Daily provider usage counters reset.")
	return nil
}
