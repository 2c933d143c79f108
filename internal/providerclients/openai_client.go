package providerclients

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIClient speaks the chat-completions wire format: message-array JSON
// body, bearer-token authentication.
type OpenAIClient struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewOpenAIClient creates a client against the production endpoint.
func NewOpenAIClient() *OpenAIClient {
	return &OpenAIClient{
		Endpoint:   openAIEndpoint,
		HTTPClient: newHTTPClient(),
	}
}

// chatCompletionRequest is the request body shared by OpenAI-compatible APIs.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse covers the fields this system reads; the real
// response carries more.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Generate sends one prompt and returns the normalized result.
func (c *OpenAIClient) Generate(ctx context.Context, apiKey, model, prompt string) Response {
	return generateChatCompletion(ctx, c.HTTPClient, "OpenAI", c.Endpoint, apiKey, model, prompt)
}

// generateChatCompletion implements the OpenAI-compatible call path, shared
// with Groq which exposes the same wire format on a different host.
func generateChatCompletion(ctx context.Context, client *http.Client, providerName, endpoint, apiKey, model, prompt string) Response {
	payload := chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxOutputTokens,
		Temperature: temperature,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + apiKey,
	}

	status, body, err := postJSON(ctx, client, endpoint, headers, payload)
	if err != nil {
		return networkFailure(providerName, err)
	}
	if status != http.StatusOK {
		log.Printf("%s API error: %s", providerName, apiError(status, body))
		return Response{Success: false, Error: apiError(status, body)}
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Response{Success: false, Error: "invalid JSON response from " + providerName}
	}
	if len(parsed.Choices) == 0 {
		return Response{Success: false, Error: providerName + " response contained no choices"}
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	tokens := parsed.Usage.TotalTokens
	if tokens == 0 {
		tokens = EstimateTokens(prompt + content)
	}

	return Response{Success: true, Content: content, TokensUsed: tokens}
}
