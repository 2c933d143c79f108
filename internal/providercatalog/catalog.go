package providercatalog

import (
	"errors"
	"fmt"
)

// Provider describes one supported AI provider family. The catalog is static:
// entries are defined at process start and are not user-editable beyond
// selection in a ProviderConfig.
type Provider struct {
	ID              string   `json:"id"`
	DisplayName     string   `json:"display_name"`
	SupportedModels []string `json:"supported_models"`
	DefaultModel    string   `json:"default_model"`
	Endpoint        string   `json:"endpoint"`
}

// ErrNotFound is returned by Get for an unknown provider id.
var ErrNotFound = errors.New("provider not found")

// catalog holds the supported providers in registration order.
// The order is meaningful: it breaks priority ties between configs.
var catalog = []Provider{
	{
		ID:              "openai",
		DisplayName:     "OpenAI",
		SupportedModels: []string{"gpt-3.5-turbo", "gpt-4", "gpt-4-turbo", "gpt-4o"},
		DefaultModel:    "gpt-3.5-turbo",
		Endpoint:        "https://api.openai.com/v1/chat/completions",
	},
	{
		ID:              "anthropic",
		DisplayName:     "Anthropic Claude",
		SupportedModels: []string{"claude-3-haiku-20240307", "claude-3-sonnet-20240229", "claude-3-opus-20240229"},
		DefaultModel:    "claude-3-haiku-20240307",
		Endpoint:        "https://api.anthropic.com/v1/messages",
	},
	{
		ID:              "google",
		DisplayName:     "Google Gemini",
		SupportedModels: []string{"gemini-pro", "gemini-pro-vision", "gemini-1.5-flash"},
		DefaultModel:    "gemini-pro",
		Endpoint:        "https://generativelanguage.googleapis.com/v1/models/",
	},
	{
		ID:              "groq",
		DisplayName:     "Groq",
		SupportedModels: []string{"llama3-70b-8192", "llama3-8b-8192", "mixtral-8x7b-32768"},
		DefaultModel:    "llama3-70b-8192",
		Endpoint:        "https://api.groq.com/openai/v1/chat/completions",
	},
}

// Get returns the catalog entry for the given provider id.
func Get(id string) (*Provider, error) {
	for i := range catalog {
		if catalog[i].ID == id {
			p := catalog[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("provider %q: %w", id, ErrNotFound)
}

// List returns all supported providers in catalog order.
func List() []Provider {
	out := make([]Provider, len(catalog))
	copy(out, catalog)
	return out
}

// CatalogIndex returns the registration position of a provider id, used to
// break priority ties between configs. Unknown ids sort last.
func CatalogIndex(id string) int {
	for i := range catalog {
		if catalog[i].ID == id {
			return i
		}
	}
	return len(catalog)
}

// SupportsModel reports whether the provider lists the given model.
func SupportsModel(id, model string) bool {
	p, err := Get(id)
	if err != nil {
		return false
	}
	for _, m := range p.SupportedModels {
		if m == model {
			return true
		}
	}
	return false
}
