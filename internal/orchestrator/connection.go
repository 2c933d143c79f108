package orchestrator

import (
	"context"
	"log"
	"time"

	"ai-content-replacer-pro/backend/internal/providercatalog"
)

// ConnectionTestResult reports the outcome of a one-shot API probe.
type ConnectionTestResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ResponseTimeMs int64  `json:"response_time_ms,omitempty"`
}

const connectionTestPrompt = "Test connection - respond with 'OK' only."

// TestConnection verifies a provider credential by issuing a minimal
// generation request. The plaintext key arrives from the admin form and is
// never persisted here.
func (e *Engine) TestConnection(ctx context.Context, providerID, apiKey, model string) *ConnectionTestResult {
	provider, err := providercatalog.Get(providerID)
	if err != nil {
		return &ConnectionTestResult{Success: false, Message: "Unsupported provider"}
	}
	if model == "" {
		model = provider.DefaultModel
	}

	client, err := e.ResolveClient(providerID)
	if err != nil {
		return &ConnectionTestResult{Success: false, Message: err.Error()}
	}

	start := time.Now()
	resp := client.Generate(ctx, apiKey, model, connectionTestPrompt)
	elapsed := time.Since(start).Milliseconds()

	if !resp.Success {
		log.Printf("Connection test for provider %s failed: %s", providerID, resp.Error)
		return &ConnectionTestResult{Success: false, Message: resp.Error}
	}

	return &ConnectionTestResult{
		Success:        true,
		Message:        "API connection successful",
		ResponseTimeMs: elapsed,
	}
}
