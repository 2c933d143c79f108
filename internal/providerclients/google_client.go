package providerclients

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
)

const googleBaseURL = "https://generativelanguage.googleapis.com/v1/models/"

// GoogleClient speaks the Gemini generateContent format: contents/parts JSON
// body, API key as a query parameter, model name embedded in the URL path.
type GoogleClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewGoogleClient creates a client against the production endpoint.
func NewGoogleClient() *GoogleClient {
	return &GoogleClient{
		BaseURL:    googleBaseURL,
		HTTPClient: newHTTPClient(),
	}
}

type googleRequest struct {
	Contents         []googleContent        `json:"contents"`
	GenerationConfig googleGenerationConfig `json:"generationConfig"`
}

type googleContent struct {
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text string `json:"text"`
}

type googleGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type googleResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends one prompt and returns the normalized result. Gemini does
// not report token usage here, so usage is estimated.
func (c *GoogleClient) Generate(ctx context.Context, apiKey, model, prompt string) Response {
	endpoint := fmt.Sprintf("%s%s:generateContent?key=%s", c.BaseURL, model, url.QueryEscape(apiKey))

	payload := googleRequest{
		Contents: []googleContent{
			{Parts: []googlePart{{Text: prompt}}},
		},
		GenerationConfig: googleGenerationConfig{
			MaxOutputTokens: maxOutputTokens,
			Temperature:     temperature,
		},
	}

	status, body, err := postJSON(ctx, c.HTTPClient, endpoint, nil, payload)
	if err != nil {
		return networkFailure("Google", err)
	}
	if status != http.StatusOK {
		log.Printf("Google API error: %s", apiError(status, body))
		return Response{Success: false, Error: apiError(status, body)}
	}

	var parsed googleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Response{Success: false, Error: "invalid JSON response from Google"}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return Response{Success: false, Error: "Google response contained no candidates"}
	}

	content := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	return Response{
		Success:    true,
		Content:    content,
		TokensUsed: EstimateTokens(prompt + content),
	}
}
