package providerclients

import (
	"context"
	"net/http"
)

const groqEndpoint = "https://api.groq.com/openai/v1/chat/completions"

// GroqClient uses the OpenAI-compatible chat-completions format on Groq's
// host. Only the endpoint differs.
type GroqClient struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewGroqClient creates a client against the production endpoint.
func NewGroqClient() *GroqClient {
	return &GroqClient{
		Endpoint:   groqEndpoint,
		HTTPClient: newHTTPClient(),
	}
}

// Generate sends one prompt and returns the normalized result.
func (c *GroqClient) Generate(ctx context.Context, apiKey, model, prompt string) Response {
	return generateChatCompletion(ctx, c.HTTPClient, "Groq", c.Endpoint, apiKey, model, prompt)
}
