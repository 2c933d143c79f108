package contentmetrics

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// WordChangeRate measures how far the rewritten content drifted from the
// original at word granularity.
// Rate = (Substitutions + Insertions + Deletions) / Number of words in original
func WordChangeRate(original string, rewritten string) float64 {
	if original == "" && rewritten == "" {
		return 0.0
	}

	wordsOriginal := strings.Fields(original)
	wordsRewritten := strings.Fields(rewritten)

	nOriginal := len(wordsOriginal)
	if nOriginal == 0 {
		if len(wordsRewritten) == 0 {
			return 0.0
		}
		// Everything in the rewrite is an insertion against an empty original.
		return 1.0
	}

	options := levenshtein.Options{
		InsCost: 1,
		DelCost: 1,
		SubCost: 1,
		Matches: levenshtein.IdenticalRunes,
	}

	// The library computes distances over rune sequences, so intern each
	// distinct word as a unique rune; equal words map to equal runes.
	wordRunes := make(map[string]rune, len(wordsOriginal)+len(wordsRewritten))
	encode := func(words []string) []rune {
		encoded := make([]rune, len(words))
		for i, w := range words {
			r, ok := wordRunes[w]
			if !ok {
				r = rune(len(wordRunes) + 1)
				wordRunes[w] = r
			}
			encoded[i] = r
		}
		return encoded
	}

	distance := levenshtein.DistanceForStrings(encode(wordsOriginal), encode(wordsRewritten), options)
	return float64(distance) / float64(nOriginal)
}

// CharChangeRate is WordChangeRate at rune granularity. It is the better
// signal for short fields like titles where word counts are tiny.
func CharChangeRate(original string, rewritten string) float64 {
	if original == "" && rewritten == "" {
		return 0.0
	}

	runesOriginal := []rune(original)
	runesRewritten := []rune(rewritten)

	nOriginal := len(runesOriginal)
	if nOriginal == 0 {
		if len(runesRewritten) == 0 {
			return 0.0
		}
		return 1.0
	}

	options := levenshtein.Options{
		InsCost: 1,
		DelCost: 1,
		SubCost: 1,
		Matches: levenshtein.IdenticalRunes,
	}

	distance := levenshtein.DistanceForStrings(runesOriginal, runesRewritten, options)
	return float64(distance) / float64(nOriginal)
}

// SimilarityScore folds the word change rate into a 0..1 score where 1.0
// means the rewrite is identical to the original and 0.0 means nothing
// survived. Rates above 1.0 (the rewrite grew a lot) clamp to 0.0.
func SimilarityScore(original string, rewritten string) float64 {
	rate := WordChangeRate(original, rewritten)
	if rate >= 1.0 {
		return 0.0
	}
	return 1.0 - rate
}
