package promptbuilder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-content-replacer-pro/backend/internal/datastore"
)

func TestBuildTitleWithoutProfile(t *testing.T) {
	prompt := Build(Task{
		OriginalText: "Welcome to Our Website",
		Context:      ContextTitle,
	})

	assert.Contains(t, prompt, "Rewrite this page/post title")
	assert.Contains(t, prompt, "Welcome to Our Website")
	assert.NotContains(t, prompt, "Business Context")
	// Requirements block is never omitted.
	assert.Contains(t, prompt, "Content Requirements:")
	assert.Contains(t, prompt, "- Write in a professional tone")
}

func TestBuildWithFullProfile(t *testing.T) {
	profile := &datastore.BusinessProfile{
		BusinessName:   "Acme Plumbing",
		BusinessType:   "Plumbing service",
		Description:    "Emergency plumbing for the metro area",
		TargetAudience: "Homeowners",
		Tone:           "Friendly",
		Location:       "Austin, TX",
		Keywords:       []string{"plumber", "emergency", "drain", "leak", "water heater", "extra", "ignored"},
	}

	prompt := Build(Task{
		OriginalText: "Lorem ipsum dolor sit amet",
		Context:      ContextMainContent,
		Profile:      profile,
	})

	assert.Contains(t, prompt, "Business Context:")
	assert.Contains(t, prompt, "- Business Name: Acme Plumbing")
	assert.Contains(t, prompt, "- Brand Tone: Friendly")
	assert.Contains(t, prompt, "- Location: Austin, TX")
	assert.Contains(t, prompt, "- Write in a friendly tone")

	// Only the first five keywords, in stored order.
	assert.Contains(t, prompt, "plumber, emergency, drain, leak, water heater")
	assert.NotContains(t, prompt, "extra")
	assert.NotContains(t, prompt, "ignored")

	// Block order: context, then requirements, then task.
	ctxIdx := strings.Index(prompt, "Business Context:")
	reqIdx := strings.Index(prompt, "Content Requirements:")
	taskIdx := strings.Index(prompt, "Task: ")
	assert.Less(t, ctxIdx, reqIdx)
	assert.Less(t, reqIdx, taskIdx)
}

func TestBuildDefaultsForSparseProfile(t *testing.T) {
	prompt := Build(Task{
		OriginalText: "text",
		Context:      ContextExcerpt,
		Profile:      &datastore.BusinessProfile{BusinessName: "Acme"},
	})

	assert.Contains(t, prompt, "- Business Type: Not specified")
	assert.Contains(t, prompt, "- Target Audience: General audience")
	assert.Contains(t, prompt, "- Brand Tone: Professional")
	assert.NotContains(t, prompt, "- Location:")
	assert.NotContains(t, prompt, "Keywords to include")
}

func TestBuildMaxWordsCeiling(t *testing.T) {
	with := Build(Task{OriginalText: "x", Context: ContextTitle, MaxWords: 10})
	assert.Contains(t, with, "- Keep content under 10 words")

	without := Build(Task{OriginalText: "x", Context: ContextTitle})
	assert.NotContains(t, without, "Keep content under")
}

func TestBuildContextTemplates(t *testing.T) {
	cases := map[string]string{
		ContextTitle:           "Original title:",
		ContextExcerpt:         "Original excerpt:",
		ContextMainContent:     "Keep all HTML tags and formatting intact",
		ContextMetaDescription: "under 160 characters",
	}
	for context, marker := range cases {
		prompt := Build(Task{OriginalText: "sample", Context: context})
		assert.Contains(t, prompt, marker, "context %s", context)
		assert.Contains(t, prompt, "sample")
	}
}

func TestBuildUnknownContextFallsBackToMainContent(t *testing.T) {
	prompt := Build(Task{OriginalText: "sample", Context: "sidebar_widget"})
	assert.Contains(t, prompt, "Keep all HTML tags and formatting intact")
}

func TestBuildIsDeterministic(t *testing.T) {
	task := Task{
		OriginalText: "sample",
		Context:      ContextMainContent,
		Profile:      &datastore.BusinessProfile{BusinessName: "Acme", Keywords: []string{"a", "b"}},
		MaxWords:     50,
	}
	assert.Equal(t, Build(task), Build(task))
}
