package contentprocessing

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"ai-content-replacer-pro/backend/internal/contentmetrics"
	"ai-content-replacer-pro/backend/internal/datastore"
	"ai-content-replacer-pro/backend/internal/orchestrator"
	"ai-content-replacer-pro/backend/internal/promptbuilder"
)

const (
	defaultBatchSize = 5
	batchDelay       = 1 * time.Second

	minProcessableWords = 10
	maxProcessableWords = 2000

	titleMaxWords   = 10
	excerptMaxWords = 50
)

// genericTitles never get rewritten; anything else is assumed customized
// and worth adapting to the business.
var genericTitles = map[string]bool{
	"Hello world!": true,
	"Sample Page":  true,
	"About":        true,
	"Contact":      true,
	"Home":         true,
}

// Item is one piece of content queued for rewriting. Items arrive as plain
// records; callers do any CMS-specific extraction before handing them over.
type Item struct {
	ID              int64  `json:"id"`
	Type            string `json:"type"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	Excerpt         string `json:"excerpt"`
	MetaDescription string `json:"meta_description"`
}

// Options control a batch run.
type Options struct {
	BatchSize        int  `json:"batch_size"`
	BackupOriginal   bool `json:"backup_original"`
	OptimizeSEO      bool `json:"optimize_seo"`
	ForceLongContent bool `json:"force_long_content"`
}

// ItemResult reports the outcome for a single item. Rewritten fields are
// returned to the caller, who owns applying them to the underlying store.
type ItemResult struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Success     bool     `json:"success"`
	Skipped     bool     `json:"skipped"`
	Error       string   `json:"error,omitempty"`
	TokensUsed  int      `json:"tokens_used"`
	Cost        float64  `json:"cost"`
	ChangesMade []string `json:"changes_made"`

	NewTitle           string `json:"new_title,omitempty"`
	NewContent         string `json:"new_content,omitempty"`
	NewExcerpt         string `json:"new_excerpt,omitempty"`
	NewMetaDescription string `json:"new_meta_description,omitempty"`

	BackupKey     string  `json:"backup_key,omitempty"`
	FidelityScore float64 `json:"fidelity_score"`
}

// BatchResult aggregates a whole run.
type BatchResult struct {
	Success          bool         `json:"success"`
	Error            string       `json:"error,omitempty"`
	ProcessedCount   int          `json:"processed_count"`
	FailedCount      int          `json:"failed_count"`
	SkippedCount     int          `json:"skipped_count"`
	Items            []ItemResult `json:"items"`
	TotalTokens      int          `json:"total_tokens"`
	TotalCost        float64      `json:"total_cost"`
	ProcessingTimeMs int64        `json:"processing_time_ms"`
}

// Generator produces rewritten text. Satisfied by orchestrator.Engine.
type Generator interface {
	Generate(ctx context.Context, originalText, contextType string, userID int, profile *datastore.BusinessProfile, opts orchestrator.Options) *orchestrator.Result
}

// Backupper snapshots original content before replacement. Satisfied by
// contentstore.BackupStore. May be nil when backups are not configured.
type Backupper interface {
	SaveBackup(ctx context.Context, userID int, contentItemID int64, contentType string, original string) (string, error)
}

// Processor drives batched content rewriting.
type Processor struct {
	Generator Generator
	Backups   Backupper

	// sleep is replaceable in tests.
	sleep func(time.Duration)
}

func NewProcessor(generator Generator, backups Backupper) *Processor {
	return &Processor{
		Generator: generator,
		Backups:   backups,
		sleep:     time.Sleep,
	}
}

// ProcessBatch rewrites every item for the given user. Items are walked in
// fixed-size batches with a short pause between batches so a large site does
// not hammer the upstream APIs. A failed item never aborts the run.
func (p *Processor) ProcessBatch(ctx context.Context, userID int, profile *datastore.BusinessProfile, items []Item, opts Options) *BatchResult {
	if profile == nil {
		return &BatchResult{Success: false, Error: "Please set up your business profile first."}
	}
	if len(items) == 0 {
		return &BatchResult{Success: false, Error: "No content found to process."}
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}

	result := &BatchResult{Success: true}
	startTime := time.Now()

	batchCount := (len(items) + opts.BatchSize - 1) / opts.BatchSize
	for start := 0; start < len(items); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(items) {
			end = len(items)
		}

		for i := start; i < end; i++ {
			itemResult := p.processItem(ctx, userID, profile, items[i], opts)
			result.Items = append(result.Items, itemResult)

			if itemResult.Success {
				result.ProcessedCount++
				result.TotalTokens += itemResult.TokensUsed
				result.TotalCost += itemResult.Cost
			} else if itemResult.Skipped {
				result.SkippedCount++
			} else {
				result.FailedCount++
			}
		}

		// Small delay between batches to avoid overwhelming APIs.
		if batchCount > 1 && end < len(items) {
			p.sleep(batchDelay)
		}

		if ctx.Err() != nil {
			log.Printf("Batch processing cancelled after %d of %d items: %v", end, len(items), ctx.Err())
			break
		}
	}

	result.ProcessingTimeMs = time.Since(startTime).Milliseconds()
	return result
}

func (p *Processor) processItem(ctx context.Context, userID int, profile *datastore.BusinessProfile, item Item, opts Options) ItemResult {
	result := ItemResult{
		ID:          item.ID,
		Title:       item.Title,
		Type:        item.Type,
		ChangesMade: []string{},
	}

	if reason, skip := shouldSkip(item, opts); skip {
		result.Skipped = true
		result.Error = reason
		return result
	}

	if opts.BackupOriginal && p.Backups != nil {
		backupKey, err := p.Backups.SaveBackup(ctx, userID, item.ID, "original", backupPayload(item))
		if err != nil {
			log.Printf("Warning: failed to back up content item %d before replacement: %v", item.ID, err)
		} else {
			result.BackupKey = backupKey
		}
	}

	// Main content pass.
	if strings.TrimSpace(item.Content) != "" {
		gen := p.Generator.Generate(ctx, item.Content, promptbuilder.ContextMainContent, userID, profile, orchestrator.Options{
			ContentType:   item.Type,
			ContentItemID: item.ID,
		})
		if gen.Success {
			result.NewContent = CleanGeneratedContent(gen.Content, item.Content, promptbuilder.ContextMainContent)
			result.ChangesMade = append(result.ChangesMade, "main_content")
			result.TokensUsed += gen.TokensUsed
			result.Cost += gen.Cost
			result.FidelityScore = contentmetrics.SimilarityScore(item.Content, result.NewContent)
		} else {
			result.Error = gen.Error
		}
	}

	// Title pass, skipped for stock CMS titles.
	if item.Title != "" && !genericTitles[item.Title] {
		gen := p.Generator.Generate(ctx, item.Title, promptbuilder.ContextTitle, userID, profile, orchestrator.Options{
			MaxWords:      titleMaxWords,
			ContentType:   item.Type,
			ContentItemID: item.ID,
		})
		if gen.Success {
			result.NewTitle = CleanGeneratedContent(gen.Content, item.Title, promptbuilder.ContextTitle)
			result.ChangesMade = append(result.ChangesMade, "title")
			result.TokensUsed += gen.TokensUsed
			result.Cost += gen.Cost
		}
	}

	// Excerpt pass.
	if strings.TrimSpace(item.Excerpt) != "" {
		gen := p.Generator.Generate(ctx, item.Excerpt, promptbuilder.ContextExcerpt, userID, profile, orchestrator.Options{
			MaxWords:      excerptMaxWords,
			ContentType:   item.Type,
			ContentItemID: item.ID,
		})
		if gen.Success {
			result.NewExcerpt = CleanGeneratedContent(gen.Content, item.Excerpt, promptbuilder.ContextExcerpt)
			result.ChangesMade = append(result.ChangesMade, "excerpt")
			result.TokensUsed += gen.TokensUsed
			result.Cost += gen.Cost
		}
	}

	// Meta description pass.
	if opts.OptimizeSEO && strings.TrimSpace(item.MetaDescription) != "" {
		gen := p.Generator.Generate(ctx, item.MetaDescription, promptbuilder.ContextMetaDescription, userID, profile, orchestrator.Options{
			ContentType:   item.Type,
			ContentItemID: item.ID,
		})
		if gen.Success {
			result.NewMetaDescription = CleanGeneratedContent(gen.Content, item.MetaDescription, promptbuilder.ContextMetaDescription)
			result.ChangesMade = append(result.ChangesMade, "meta_description")
			result.TokensUsed += gen.TokensUsed
			result.Cost += gen.Cost
		}
	}

	result.Success = len(result.ChangesMade) > 0
	if !result.Success && result.Error == "" {
		result.Error = "No changes were needed"
	}
	return result
}

func shouldSkip(item Item, opts Options) (string, bool) {
	wordCount := len(strings.Fields(stripTags(item.Content)))
	if wordCount < minProcessableWords {
		return "Content skipped based on criteria", true
	}
	if wordCount > maxProcessableWords && !opts.ForceLongContent {
		return "Content skipped based on criteria", true
	}
	return "", false
}

// backupPayload flattens an item into one restorable snapshot.
func backupPayload(item Item) string {
	return fmt.Sprintf("TITLE:\n%s\n\nEXCERPT:\n%s\n\nMETA_DESCRIPTION:\n%s\n\nCONTENT:\n%s", item.Title, item.Excerpt, item.MetaDescription, item.Content)
}

var (
	disclaimerPrefix = regexp.MustCompile(`(?i)^(Here's|Here is|I've rewritten|I have rewritten).*?:`)
	htmlTag          = regexp.MustCompile(`<[^>]+>`)
)

// CleanGeneratedContent strips leading AI meta text from model output and,
// for main content whose original carried HTML, rewraps bare paragraphs so
// the replacement does not flatten the markup.
func CleanGeneratedContent(generated string, original string, contextType string) string {
	generated = disclaimerPrefix.ReplaceAllString(generated, "")
	generated = strings.TrimSpace(generated)

	if contextType == promptbuilder.ContextMainContent && htmlTag.MatchString(original) && !htmlTag.MatchString(generated) {
		paragraphs := strings.Split(generated, "\n\n")
		wrapped := make([]string, 0, len(paragraphs))
		for _, p := range paragraphs {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			wrapped = append(wrapped, "<p>"+p+"</p>")
		}
		generated = strings.Join(wrapped, "\n\n")
	}

	return generated
}

func stripTags(s string) string {
	return htmlTag.ReplaceAllString(s, " ")
}
