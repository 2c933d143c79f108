package providerclients

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"
)

// AnthropicClient speaks the messages wire format: the key travels in the
// x-api-key header alongside a pinned anthropic-version header, not as a
// bearer token.
type AnthropicClient struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewAnthropicClient creates a client against the production endpoint.
func NewAnthropicClient() *AnthropicClient {
	return &AnthropicClient{
		Endpoint:   anthropicEndpoint,
		HTTPClient: newHTTPClient(),
	}
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Generate sends one prompt and returns the normalized result.
func (c *AnthropicClient) Generate(ctx context.Context, apiKey, model, prompt string) Response {
	payload := anthropicRequest{
		Model:     model,
		MaxTokens: maxOutputTokens,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}
	headers := map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": anthropicVersion,
	}

	status, body, err := postJSON(ctx, c.HTTPClient, c.Endpoint, headers, payload)
	if err != nil {
		return networkFailure("Anthropic", err)
	}
	if status != http.StatusOK {
		log.Printf("Anthropic API error: %s", apiError(status, body))
		return Response{Success: false, Error: apiError(status, body)}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Response{Success: false, Error: "invalid JSON response from Anthropic"}
	}
	if len(parsed.Content) == 0 {
		return Response{Success: false, Error: "Anthropic response contained no content blocks"}
	}

	content := strings.TrimSpace(parsed.Content[0].Text)
	tokens := parsed.Usage.InputTokens + parsed.Usage.OutputTokens
	if tokens == 0 {
		tokens = EstimateTokens(prompt + content)
	}

	return Response{Success: true, Content: content, TokensUsed: tokens}
}
