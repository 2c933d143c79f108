package orchestrator

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"time"

	"ai-content-replacer-pro/backend/internal/datastore"
	"ai-content-replacer-pro/backend/internal/promptbuilder"
	"ai-content-replacer-pro/backend/internal/providercatalog"
	"ai-content-replacer-pro/backend/internal/providerclients"
	"ai-content-replacer-pro/backend/internal/ratelimit"
	"ai-content-replacer-pro/backend/internal/security"
)

// Hourly per-(user, provider) request cap, independent of the daily quota.
// Fixed policy: 60 requests per rolling hour.
const (
	rateLimitMaxRequests = 60
	rateLimitWindow      = time.Hour
)

// Aggregate error messages surfaced to callers.
const (
	ErrMsgNoProviders        = "No API providers configured"
	ErrMsgAllProvidersFailed = "All API providers failed or unavailable"
)

// ConfigStore is the slice of the persistence collaborator the engine reads
// provider state through.
type ConfigStore interface {
	GetEnabledProviders(userID int) ([]*datastore.ProviderConfig, error)
	UpdateProviderStatus(id int, status string) error
}

// Ledger receives one append-only record per attempt, success or failure.
type Ledger interface {
	Append(rec *datastore.UsageRecord) error
}

// QuotaTracker gates candidates on their daily budget and records usage
// after a successful call.
type QuotaTracker interface {
	IsUnderLimit(cfg *datastore.ProviderConfig) bool
	RecordUsage(cfg *datastore.ProviderConfig, amount int) error
}

// RateGate gates candidates on the short-window request cap.
type RateGate interface {
	Allow(identifier string, maxRequests int, window time.Duration) bool
}

// Options carries per-call knobs from the content processor.
type Options struct {
	MaxWords      int
	ContentType   string // ledger content_type; defaults to the context
	ContentItemID int64  // 0 = not tied to a content item
}

// Result is the outcome surfaced to the caller.
type Result struct {
	Success      bool    `json:"success"`
	Content      string  `json:"content,omitempty"`
	Error        string  `json:"error,omitempty"`
	ProviderUsed string  `json:"provider_used,omitempty"`
	TokensUsed   int     `json:"tokens_used,omitempty"`
	Cost         float64 `json:"cost,omitempty"`
	DurationMs   int64   `json:"duration_ms,omitempty"`
}

// Engine coordinates provider selection and failover for generation calls.
// Within one call candidates are tried strictly in priority order and the
// first success wins; independent calls may run concurrently.
type Engine struct {
	Store   ConfigStore
	Ledger  Ledger
	Quota   QuotaTracker
	Limiter RateGate

	// ResolveClient maps a provider id to its client. Swappable in tests.
	ResolveClient func(providerID string) (providerclients.Client, error)

	// DecryptKey opens the stored API key. Defaults to the AEAD helper.
	DecryptKey func(encrypted string) (string, error)
}

// NewEngine wires an Engine over the shared datastore.
func NewEngine(quota QuotaTracker, limiter *ratelimit.Limiter) *Engine {
	return &Engine{
		Store:         datastoreConfigStore{},
		Ledger:        datastoreLedger{},
		Quota:         quota,
		Limiter:       limiter,
		ResolveClient: providerclients.New,
		DecryptKey:    security.DecryptAPIKey,
	}
}

// Generate runs one content-generation task through the candidate loop:
// validate size, load enabled configs, sort by priority, gate each candidate
// on quota and rate limit, dispatch, and return the first success. Gate
// rejections are skips, not attempts; dispatch failures fall through to the
// next candidate. No provider is retried within one call.
func (e *Engine) Generate(ctx context.Context, originalText, contextType string, userID int, profile *datastore.BusinessProfile, opts Options) *Result {
	if err := security.ValidateContentLimits(originalText); err != nil {
		return &Result{Success: false, Error: err.Error()}
	}

	candidates, err := e.loadCandidates(userID)
	if err != nil {
		log.Printf("Failed to load provider configs for user %d: %v", userID, err)
		return &Result{Success: false, Error: ErrMsgNoProviders}
	}
	if len(candidates) == 0 {
		return &Result{Success: false, Error: ErrMsgNoProviders}
	}

	// The enhanced prompt is built once and shared by every attempt.
	prompt := promptbuilder.Build(promptbuilder.Task{
		OriginalText: originalText,
		Context:      contextType,
		Profile:      profile,
		MaxWords:     opts.MaxWords,
	})

	contentType := opts.ContentType
	if contentType == "" {
		contentType = contextType
	}

	for _, candidate := range candidates {
		// Cancellation is observed between candidates; an in-flight HTTP
		// call is bounded by the client timeout instead.
		if ctx.Err() != nil {
			return &Result{Success: false, Error: fmt.Sprintf("generation cancelled: %v", ctx.Err())}
		}

		if !e.Quota.IsUnderLimit(candidate) {
			log.Printf("Provider %s skipped for user %d: daily limit reached (%d/%d)", candidate.ProviderID, userID, candidate.UsedToday, candidate.DailyLimit)
			e.setStatus(candidate, datastore.StatusLimitReached)
			continue
		}

		identifier := fmt.Sprintf("user_%d_%s", userID, candidate.ProviderID)
		if !e.Limiter.Allow(identifier, rateLimitMaxRequests, rateLimitWindow) {
			log.Printf("Provider %s skipped for user %d: hourly rate limit exhausted", candidate.ProviderID, userID)
			continue
		}

		result := e.dispatch(ctx, candidate, prompt)

		if result.Success {
			if err := e.Quota.RecordUsage(candidate, result.TokensUsed); err != nil {
				// Surfaced as a warning only: the generation itself succeeded.
				log.Printf("WARNING: usage for provider %s not recorded: %v", candidate.ProviderID, err)
			}
			e.setStatus(candidate, datastore.StatusActive)
			e.appendRecord(userID, candidate, contentType, opts, result, "")
			return result
		}

		e.setStatus(candidate, datastore.StatusError)
		e.appendRecord(userID, candidate, contentType, opts, result, result.Error)
		log.Printf("Provider %s failed for user %d, trying next candidate: %s", candidate.ProviderID, userID, result.Error)
	}

	return &Result{Success: false, Error: ErrMsgAllProvidersFailed}
}

// loadCandidates returns the user's enabled configs with a stored API key,
// sorted by priority ascending. The sort is stable; remaining ties follow
// the provider catalog registration order.
func (e *Engine) loadCandidates(userID int) ([]*datastore.ProviderConfig, error) {
	configs, err := e.Store.GetEnabledProviders(userID)
	if err != nil {
		return nil, err
	}

	candidates := configs[:0]
	for _, cfg := range configs {
		if cfg.APIKeyEncrypted == "" {
			log.Printf("Provider %s for user %d has no API key configured; excluded from candidates", cfg.ProviderID, userID)
			continue
		}
		candidates = append(candidates, cfg)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority < candidates[j].Priority
		}
		return providercatalog.CatalogIndex(candidates[i].ProviderID) < providercatalog.CatalogIndex(candidates[j].ProviderID)
	})
	return candidates, nil
}

// dispatch issues one provider call and shapes the outcome. Client errors
// never escape: every path yields a Result the candidate loop can act on.
func (e *Engine) dispatch(ctx context.Context, cfg *datastore.ProviderConfig, prompt string) *Result {
	client, err := e.ResolveClient(cfg.ProviderID)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}
	}

	apiKey, err := e.DecryptKey(cfg.APIKeyEncrypted)
	if err != nil || apiKey == "" {
		log.Printf("Stored API key for provider %s could not be opened: %v", cfg.ProviderID, err)
		return &Result{Success: false, Error: fmt.Sprintf("API key for provider %s is unavailable", cfg.ProviderID)}
	}

	start := time.Now()
	resp := client.Generate(ctx, apiKey, cfg.Model, prompt)
	durationMs := time.Since(start).Milliseconds()

	if !resp.Success {
		return &Result{Success: false, Error: resp.Error, ProviderUsed: cfg.ProviderID, DurationMs: durationMs}
	}

	return &Result{
		Success:      true,
		Content:      resp.Content,
		ProviderUsed: cfg.ProviderID,
		TokensUsed:   resp.TokensUsed,
		Cost:         float64(resp.TokensUsed) * cfg.CostPerToken,
		DurationMs:   durationMs,
	}
}

func (e *Engine) appendRecord(userID int, cfg *datastore.ProviderConfig, contentType string, opts Options, result *Result, errMsg string) {
	rec := &datastore.UsageRecord{
		UserID:         userID,
		ProcessingType: "content_generation",
		ContentType:    contentType,
		TokensUsed:     result.TokensUsed,
		ProviderUsed:   cfg.ProviderID,
		Cost:           result.Cost,
		DurationMs:     result.DurationMs,
		Status:         datastore.RecordStatusCompleted,
	}
	if opts.ContentItemID != 0 {
		rec.ContentItemID = sql.NullInt64{Int64: opts.ContentItemID, Valid: true}
	}
	if errMsg != "" {
		rec.Status = datastore.RecordStatusError
		rec.ErrorMessage = sql.NullString{String: errMsg, Valid: true}
	}

	if err := e.Ledger.Append(rec); err != nil {
		log.Printf("Failed to append usage record for provider %s: %v", cfg.ProviderID, err)
	}
}

func (e *Engine) setStatus(cfg *datastore.ProviderConfig, status string) {
	cfg.Status = status
	if err := e.Store.UpdateProviderStatus(cfg.ID, status); err != nil {
		log.Printf("Failed to update status of provider config %d to %s: %v", cfg.ID, status, err)
	}
}

// datastoreConfigStore and datastoreLedger adapt the package-level datastore
// functions to the engine's interfaces.
type datastoreConfigStore struct{}

func (datastoreConfigStore) GetEnabledProviders(userID int) ([]*datastore.ProviderConfig, error) {
	return datastore.GetEnabledProviders(userID)
}

func (datastoreConfigStore) UpdateProviderStatus(id int, status string) error {
	return datastore.UpdateProviderStatus(id, status)
}

type datastoreLedger struct{}

func (datastoreLedger) Append(rec *datastore.UsageRecord) error {
	_, err := datastore.AppendUsageRecord(rec)
	return err
}
