package providerclients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Generation request knobs shared by every provider family.
const (
	maxOutputTokens = 2000
	temperature     = 0.7
)

// defaultTimeout bounds every provider call so one unresponsive endpoint
// cannot stall the candidate loop.
const defaultTimeout = 30 * time.Second

// Response is the normalized outcome of one provider call. Clients never
// panic or leak errors past their boundary: the orchestrator relies on
// always getting this shape so it can fall through to the next candidate
// without per-provider special cases.
type Response struct {
	Success      bool   `json:"success"`
	Content      string `json:"content,omitempty"`
	TokensUsed   int    `json:"tokens_used,omitempty"`
	Error        string `json:"error,omitempty"`
	NetworkError bool   `json:"network_error,omitempty"` // transport failure (DNS/timeout/TLS)
}

// Client is the capability each provider family implements.
type Client interface {
	Generate(ctx context.Context, apiKey, model, prompt string) Response
}

// New selects the client for a catalog provider id. Adding a provider means
// adding one client type here; the orchestrator is untouched.
func New(providerID string) (Client, error) {
	switch providerID {
	case "openai":
		return NewOpenAIClient(), nil
	case "anthropic":
		return NewAnthropicClient(), nil
	case "google":
		return NewGoogleClient(), nil
	case "groq":
		return NewGroqClient(), nil
	default:
		return nil, fmt.Errorf("no client available for provider: %s", providerID)
	}
}

// EstimateTokens is the named fallback estimator for providers that do not
// report usage (e.g. Google): roughly 1 token per 4 characters of English
// text. Cost figures derived from it are approximate.
func EstimateTokens(text string) int {
	estimate := len(text) / 4
	if estimate < 1 {
		return 1
	}
	return estimate
}

func newHTTPClient() *http.Client {
	// TLS verification stays on: the default transport is used deliberately.
	return &http.Client{Timeout: defaultTimeout}
}

// postJSON issues one synchronous POST with a JSON body. A non-nil error
// means the request never produced an HTTP response (transport failure);
// non-200 statuses come back as a normal result for the caller to shape.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload interface{}) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	httpResp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return httpResp.StatusCode, respBody, nil
}

// apiError shapes a non-200 response into "HTTP <status>: <provider message>".
// Providers disagree on where the message lives; both common spots are tried.
func apiError(status int, body []byte) string {
	message := fmt.Sprintf("HTTP %d", status)

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error.Message != "" {
			message += ": " + envelope.Error.Message
		} else if envelope.Message != "" {
			message += ": " + envelope.Message
		}
	}
	return message
}

// networkFailure normalizes a transport error.
func networkFailure(provider string, err error) Response {
	log.Printf("%s API request failed before receiving a response: %v", provider, err)
	return Response{
		Success:      false,
		Error:        fmt.Sprintf("network error calling %s: %v", provider, err),
		NetworkError: true,
	}
}
