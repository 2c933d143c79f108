package providercatalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKnownProvider(t *testing.T) {
	p, err := Get("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "Anthropic Claude", p.DisplayName)
	assert.Equal(t, "claude-3-haiku-20240307", p.DefaultModel)
	assert.Contains(t, p.SupportedModels, p.DefaultModel)
}

func TestGetUnknownProvider(t *testing.T) {
	_, err := Get("azure")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListIsStableCatalogOrder(t *testing.T) {
	first := List()
	second := List()
	require.Equal(t, first, second)

	ids := make([]string, 0, len(first))
	for _, p := range first {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"openai", "anthropic", "google", "groq"}, ids)
}

func TestListReturnsCopy(t *testing.T) {
	l := List()
	l[0].ID = "mutated"
	p, err := Get("openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", p.ID)
}

func TestCatalogIndex(t *testing.T) {
	assert.Equal(t, 0, CatalogIndex("openai"))
	assert.Equal(t, 3, CatalogIndex("groq"))
	assert.Equal(t, len(List()), CatalogIndex("nonsense"))
}

func TestSupportsModel(t *testing.T) {
	assert.True(t, SupportsModel("groq", "llama3-8b-8192"))
	assert.False(t, SupportsModel("groq", "gpt-4"))
	assert.False(t, SupportsModel("unknown", "gpt-4"))
}
