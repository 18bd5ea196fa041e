package services

import (
	"math"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// PlagiarismScore measures how close a paraphrased candidate stays to the
// original text. It returns an integer from 0 to 100 where higher means more
// similar to the original, combining word overlap (60%) with character-level
// edit distance (40%).
//
// The lexical component divides by the original's token count only, so the
// metric is asymmetric: it measures how much of the original's vocabulary
// survives in the candidate. Acceptance thresholds are tuned against this
// exact formula.
func PlagiarismScore(original, candidate string) int {
	originalTokens := tokenizeWords(original)
	candidateTokens := tokenizeWords(candidate)

	candidateSet := make(map[string]bool, len(candidateTokens))
	for _, token := range candidateTokens {
		candidateSet[token] = true
	}

	lexicalSimilarity := 0.0
	if len(originalTokens) > 0 {
		matched := 0
		for _, token := range originalTokens {
			if candidateSet[token] {
				matched++
			}
		}
		lexicalSimilarity = float64(matched) / float64(len(originalTokens))
	}

	structuralSimilarity := 0.0
	maxLen := len([]rune(original))
	if candidateLen := len([]rune(candidate)); candidateLen > maxLen {
		maxLen = candidateLen
	}
	if maxLen > 0 {
		dist := levenshtein.ComputeDistance(original, candidate)
		structuralSimilarity = 1 - float64(dist)/float64(maxLen)
	}

	score := math.Round(math.Min(100, (lexicalSimilarity*0.6+structuralSimilarity*0.4)*100))
	return int(score)
}

// tokenizeWords splits text into lowercase word tokens, treating any rune
// that is not a letter or digit as a separator
func tokenizeWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
