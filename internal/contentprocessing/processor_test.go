package contentprocessing

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-content-replacer-pro/backend/internal/datastore"
	"ai-content-replacer-pro/backend/internal/orchestrator"
	"ai-content-replacer-pro/backend/internal/promptbuilder"
)

type generatorCall struct {
	text        string
	contextType string
}

type fakeGenerator struct {
	calls   []generatorCall
	failAll bool
	content string
}

func (f *fakeGenerator) Generate(ctx context.Context, originalText, contextType string, userID int, profile *datastore.BusinessProfile, opts orchestrator.Options) *orchestrator.Result {
	f.calls = append(f.calls, generatorCall{text: originalText, contextType: contextType})
	if f.failAll {
		return &orchestrator.Result{Success: false, Error: "All API providers failed or unavailable"}
	}
	content := f.content
	if content == "" {
		content = "rewritten " + contextType
	}
	return &orchestrator.Result{Success: true, Content: content, TokensUsed: 10, Cost: 0.02, ProviderUsed: "openai"}
}

type fakeBackupper struct {
	saved map[int64]string
	err   error
}

func (f *fakeBackupper) SaveBackup(ctx context.Context, userID int, contentItemID int64, contentType string, original string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.saved == nil {
		f.saved = make(map[int64]string)
	}
	key := fmt.Sprintf("backups/user_%d/item_%d/original.txt", userID, contentItemID)
	f.saved[contentItemID] = original
	return key, nil
}

func newTestProcessor(gen *fakeGenerator, backups Backupper) *Processor {
	p := NewProcessor(gen, backups)
	p.sleep = func(time.Duration) {}
	return p
}

func richItem(id int64) Item {
	return Item{
		ID:      id,
		Type:    "post",
		Title:   "Ten Tips For Better Websites",
		Content: strings.Repeat("generic words about nothing in particular ", 10),
		Excerpt: "A generic excerpt about websites.",
	}
}

func TestProcessBatchRequiresProfileAndItems(t *testing.T) {
	p := newTestProcessor(&fakeGenerator{}, nil)

	result := p.ProcessBatch(context.Background(), 1, nil, []Item{richItem(1)}, Options{})
	require.False(t, result.Success)
	assert.Equal(t, "Please set up your business profile first.", result.Error)

	result = p.ProcessBatch(context.Background(), 1, &datastore.BusinessProfile{}, nil, Options{})
	require.False(t, result.Success)
	assert.Equal(t, "No content found to process.", result.Error)
}

func TestProcessBatchRewritesAllParts(t *testing.T) {
	gen := &fakeGenerator{}
	p := newTestProcessor(gen, nil)

	item := richItem(7)
	item.MetaDescription = "Old meta description."
	result := p.ProcessBatch(context.Background(), 1, &datastore.BusinessProfile{BusinessName: "Acme"}, []Item{item}, Options{OptimizeSEO: true})

	require.True(t, result.Success)
	assert.Equal(t, 1, result.ProcessedCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Equal(t, 40, result.TotalTokens)
	assert.InDelta(t, 0.08, result.TotalCost, 1e-9)

	require.Len(t, result.Items, 1)
	itemResult := result.Items[0]
	assert.Equal(t, []string{"main_content", "title", "excerpt", "meta_description"}, itemResult.ChangesMade)
	assert.NotEmpty(t, itemResult.NewContent)
	assert.NotEmpty(t, itemResult.NewTitle)

	// Each pass carries its own context type.
	contexts := make([]string, 0, len(gen.calls))
	for _, call := range gen.calls {
		contexts = append(contexts, call.contextType)
	}
	assert.Equal(t, []string{
		promptbuilder.ContextMainContent,
		promptbuilder.ContextTitle,
		promptbuilder.ContextExcerpt,
		promptbuilder.ContextMetaDescription,
	}, contexts)
}

func TestProcessBatchSkipsShortAndLongContent(t *testing.T) {
	gen := &fakeGenerator{}
	p := newTestProcessor(gen, nil)

	short := Item{ID: 1, Type: "post", Content: "too short"}
	long := Item{ID: 2, Type: "post", Content: strings.Repeat("word ", 2500)}
	profile := &datastore.BusinessProfile{BusinessName: "Acme"}

	result := p.ProcessBatch(context.Background(), 1, profile, []Item{short, long}, Options{})

	assert.Equal(t, 2, result.SkippedCount)
	assert.Equal(t, 0, result.ProcessedCount)
	assert.Empty(t, gen.calls)

	// force_long_content lets the long item through.
	result = p.ProcessBatch(context.Background(), 1, profile, []Item{long}, Options{ForceLongContent: true})
	assert.Equal(t, 1, result.ProcessedCount)
}

func TestProcessBatchSkipsGenericTitles(t *testing.T) {
	gen := &fakeGenerator{}
	p := newTestProcessor(gen, nil)

	item := richItem(3)
	item.Title = "Hello world!"
	item.Excerpt = ""
	result := p.ProcessBatch(context.Background(), 1, &datastore.BusinessProfile{}, []Item{item}, Options{})

	require.Equal(t, 1, result.ProcessedCount)
	assert.Equal(t, []string{"main_content"}, result.Items[0].ChangesMade)
}

func TestProcessBatchContinuesPastFailedItem(t *testing.T) {
	gen := &fakeGenerator{failAll: true}
	p := newTestProcessor(gen, nil)

	result := p.ProcessBatch(context.Background(), 1, &datastore.BusinessProfile{}, []Item{richItem(1), richItem(2)}, Options{})

	// The run itself completes even though every item failed.
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.FailedCount)
	assert.Equal(t, 0, result.ProcessedCount)
	assert.Equal(t, "All API providers failed or unavailable", result.Items[0].Error)
}

func TestProcessBatchBacksUpBeforeReplacement(t *testing.T) {
	backups := &fakeBackupper{}
	p := newTestProcessor(&fakeGenerator{}, backups)

	item := richItem(42)
	result := p.ProcessBatch(context.Background(), 1, &datastore.BusinessProfile{}, []Item{item}, Options{BackupOriginal: true})

	require.Equal(t, 1, result.ProcessedCount)
	assert.NotEmpty(t, result.Items[0].BackupKey)
	assert.Contains(t, backups.saved[42], item.Title)
	assert.Contains(t, backups.saved[42], "generic words")
}

func TestProcessBatchBackupFailureIsNonFatal(t *testing.T) {
	backups := &fakeBackupper{err: fmt.Errorf("minio unreachable")}
	p := newTestProcessor(&fakeGenerator{}, backups)

	result := p.ProcessBatch(context.Background(), 1, &datastore.BusinessProfile{}, []Item{richItem(1)}, Options{BackupOriginal: true})

	require.Equal(t, 1, result.ProcessedCount)
	assert.Empty(t, result.Items[0].BackupKey)
}

func TestProcessBatchReportsFidelityScore(t *testing.T) {
	gen := &fakeGenerator{content: strings.Repeat("generic words about nothing in particular ", 10)}
	p := newTestProcessor(gen, nil)

	item := richItem(5)
	item.Title = "Hello world!"
	item.Excerpt = ""
	result := p.ProcessBatch(context.Background(), 1, &datastore.BusinessProfile{}, []Item{item}, Options{})

	require.Equal(t, 1, result.ProcessedCount)
	// Identical rewrite scores a perfect 1.0.
	assert.InDelta(t, 1.0, result.Items[0].FidelityScore, 1e-9)
}

func TestCleanGeneratedContent(t *testing.T) {
	cleaned := CleanGeneratedContent("Here's the rewritten version: A fresh take on things.", "original", promptbuilder.ContextTitle)
	assert.Equal(t, "A fresh take on things.", cleaned)

	cleaned = CleanGeneratedContent("I have rewritten your text: Better words.", "original", promptbuilder.ContextExcerpt)
	assert.Equal(t, "Better words.", cleaned)

	// No disclaimer, nothing stripped.
	cleaned = CleanGeneratedContent("Plain output.", "original", promptbuilder.ContextTitle)
	assert.Equal(t, "Plain output.", cleaned)
}

func TestCleanGeneratedContentRewrapsParagraphs(t *testing.T) {
	original := "<p>First paragraph.</p>\n\n<p>Second paragraph.</p>"
	generated := "New first paragraph.\n\nNew second paragraph."

	cleaned := CleanGeneratedContent(generated, original, promptbuilder.ContextMainContent)
	assert.Equal(t, "<p>New first paragraph.</p>\n\n<p>New second paragraph.</p>", cleaned)

	// Generated content that already has markup is left alone.
	withTags := "<h2>Kept</h2>"
	assert.Equal(t, withTags, CleanGeneratedContent(withTags, original, promptbuilder.ContextMainContent))

	// Plain-text originals never get wrapped.
	assert.Equal(t, generated, CleanGeneratedContent(generated, "plain original", promptbuilder.ContextMainContent))
}

func TestProcessBatchStopsOnCancellation(t *testing.T) {
	gen := &fakeGenerator{}
	p := newTestProcessor(gen, nil)

	ctx, cancel := context.WithCancel(context.Background())
	items := make([]Item, 12)
	for i := range items {
		items[i] = richItem(int64(i + 1))
	}
	// Cancel before the run; the first batch still completes, later ones do not.
	cancel()

	result := p.ProcessBatch(ctx, 1, &datastore.BusinessProfile{}, items, Options{BatchSize: 5})
	assert.Len(t, result.Items, 5)
}
