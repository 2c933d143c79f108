package contentmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordChangeRate(t *testing.T) {
	assert.Equal(t, 0.0, WordChangeRate("", ""))
	assert.Equal(t, 0.0, WordChangeRate("hello world", "hello world"))
	assert.Equal(t, 1.0, WordChangeRate("", "anything at all"))

	// One substitution out of two words.
	assert.InDelta(t, 0.5, WordChangeRate("hello world", "hello there"), 1e-9)

	// Full replacement.
	assert.InDelta(t, 1.0, WordChangeRate("a b c", "x y z"), 1e-9)

	// Insertions can push the rate above 1.0.
	rate := WordChangeRate("short", "a much longer rewritten sentence entirely")
	assert.Greater(t, rate, 1.0)
}

func TestCharChangeRate(t *testing.T) {
	assert.Equal(t, 0.0, CharChangeRate("", ""))
	assert.Equal(t, 0.0, CharChangeRate("title", "title"))
	assert.Equal(t, 1.0, CharChangeRate("", "x"))

	// Rune-aware: one substituted character in a multibyte string.
	assert.InDelta(t, 0.25, CharChangeRate("日本語だ", "日本語よ"), 1e-9)
}

func TestSimilarityScore(t *testing.T) {
	assert.Equal(t, 1.0, SimilarityScore("same text here", "same text here"))
	assert.Equal(t, 0.0, SimilarityScore("a", "completely different and much longer text"))
	assert.InDelta(t, 0.5, SimilarityScore("hello world", "hello there"), 1e-9)
}
