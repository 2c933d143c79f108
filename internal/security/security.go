package security

import (
	"fmt"
	"regexp"
	"strings"
)

// Content limits enforced before any provider is contacted. Input text has
// already been sanitized upstream; these checks only guard request size.
const (
	maxContentBytes = 100000
	maxLineBytes    = 10000
	maxLines        = 10000
)

// ErrContentTooLarge wraps every content-limit rejection so callers can fail
// fast without contacting a provider.
type ErrContentTooLarge struct {
	Reason string
}

func (e *ErrContentTooLarge) Error() string {
	return "content limit exceeded: " + e.Reason
}

// ValidateContentLimits checks content length and complexity.
// It returns an *ErrContentTooLarge describing the first violated limit.
func ValidateContentLimits(content string) error {
	if len(content) > maxContentBytes {
		return &ErrContentTooLarge{Reason: "content too large (max 100KB)"}
	}

	lines := strings.Split(content, "\n")
	if len(lines) > maxLines {
		return &ErrContentTooLarge{Reason: "too many lines (max 10,000)"}
	}
	for _, line := range lines {
		if len(line) > maxLineBytes {
			return &ErrContentTooLarge{Reason: "lines too long (max 10KB per line)"}
		}
	}

	return nil
}

// MaskAPIKey returns a display-safe form of an API key: first 4 characters,
// a run of stars, last 4 characters. Keys shorter than 8 characters are
// fully masked. The plaintext key must never appear in logs or responses.
func MaskAPIKey(apiKey string) string {
	if len(apiKey) < 8 {
		return "****"
	}

	middle := len(apiKey) - 8
	if middle > 20 {
		middle = 20
	}
	return apiKey[:4] + strings.Repeat("*", middle) + apiKey[len(apiKey)-4:]
}

// keyFormatPatterns holds per-provider API key shapes. Providers not listed
// here fall back to a minimum-length check.
var keyFormatPatterns = map[string]*regexp.Regexp{
	"openai":    regexp.MustCompile(`^sk-[a-zA-Z0-9]{48,}$`),
	"anthropic": regexp.MustCompile(`^sk-ant-[a-zA-Z0-9_-]{95,}$`),
	"google":    regexp.MustCompile(`^[a-zA-Z0-9_-]{39}$`),
	"groq":      regexp.MustCompile(`^gsk_[a-zA-Z0-9]{56}$`),
}

// ValidateKeyFormat checks that an API key matches the expected shape for
// the given provider. Unknown providers only require a key longer than 10
// characters.
func ValidateKeyFormat(providerID, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("API key for provider %q is empty", providerID)
	}

	pattern, ok := keyFormatPatterns[providerID]
	if !ok {
		if len(apiKey) <= 10 {
			return fmt.Errorf("API key for provider %q is too short", providerID)
		}
		return nil
	}

	if !pattern.MatchString(apiKey) {
		return fmt.Errorf("API key does not match the expected format for provider %q", providerID)
	}
	return nil
}
