package promptbuilder

import (
	"fmt"
	"strings"

	"ai-content-replacer-pro/backend/internal/datastore"
)

// Generation contexts. Each selects a distinct task instruction template;
// unrecognized values fall back to main content.
const (
	ContextMainContent     = "main_content"
	ContextTitle           = "title"
	ContextExcerpt         = "excerpt"
	ContextMetaDescription = "meta_description"
)

const defaultTone = "Professional"

// Keywords beyond the first five are dropped; the profile's stored order
// decides which survive.
const maxPromptKeywords = 5

// Task describes one content-generation request to turn into a prompt.
type Task struct {
	OriginalText string
	Context      string
	Profile      *datastore.BusinessProfile // may be nil
	MaxWords     int                        // 0 = no ceiling
}

// Build merges business-profile context and task instructions into the
// enhanced prompt sent to providers. Deterministic and side-effect free:
// the same Task always yields the same string. Blocks are emitted in order
// (business context, requirements, task instruction); only the business
// block is ever omitted, when no profile is present.
func Build(task Task) string {
	var parts []string

	if task.Profile != nil {
		parts = append(parts, businessContextBlock(task.Profile)...)
		parts = append(parts, "")
	}

	parts = append(parts, requirementsBlock(task)...)
	parts = append(parts, "")
	parts = append(parts, "Task: "+taskInstruction(task.Context, task.OriginalText))

	return strings.Join(parts, "\n")
}

func businessContextBlock(profile *datastore.BusinessProfile) []string {
	tone := profile.Tone
	if tone == "" {
		tone = defaultTone
	}

	parts := []string{
		"Business Context:",
		"- Business Name: " + orNotSpecified(profile.BusinessName),
		"- Business Type: " + orNotSpecified(profile.BusinessType),
		"- Description: " + orNotSpecified(profile.Description),
		"- Target Audience: " + orDefault(profile.TargetAudience, "General audience"),
		"- Brand Tone: " + tone,
	}

	if profile.Location != "" {
		parts = append(parts, "- Location: "+profile.Location)
	}
	if len(profile.Keywords) > 0 {
		keywords := profile.Keywords
		if len(keywords) > maxPromptKeywords {
			keywords = keywords[:maxPromptKeywords]
		}
		parts = append(parts, "- Keywords to include: "+strings.Join(keywords, ", "))
	}

	return parts
}

func requirementsBlock(task Task) []string {
	tone := defaultTone
	if task.Profile != nil && task.Profile.Tone != "" {
		tone = task.Profile.Tone
	}

	parts := []string{
		"Content Requirements:",
		"- Write in a " + strings.ToLower(tone) + " tone",
		"- Keep the same structure and format as the original",
		"- Make content relevant to the business and target audience",
		"- Ensure content is engaging and informative",
		"- Do not include placeholder text or generic examples",
	}

	if task.MaxWords > 0 {
		parts = append(parts, fmt.Sprintf("- Keep content under %d words", task.MaxWords))
	}

	return parts
}

func taskInstruction(context, originalText string) string {
	switch context {
	case ContextTitle:
		return "Rewrite this page/post title to be more relevant to the business while keeping it engaging and SEO-friendly. Original title: \n\n" + originalText
	case ContextExcerpt:
		return "Rewrite this excerpt to better represent the business and attract the target audience. Keep it concise and compelling. Original excerpt: \n\n" + originalText
	case ContextMetaDescription:
		return "Create an SEO-optimized meta description for this content that includes relevant business keywords and attracts clicks. Keep it under 160 characters. Content: \n\n" + originalText
	default:
		return "Rewrite this content to be specifically relevant to the business, its services, and target audience. Maintain the same structure and formatting, but replace generic information with business-specific details. Keep all HTML tags and formatting intact. Original content: \n\n" + originalText
	}
}

func orNotSpecified(s string) string {
	return orDefault(s, "Not specified")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
