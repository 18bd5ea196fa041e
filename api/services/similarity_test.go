package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlagiarismScoreIdentity(t *testing.T) {
	inputs := []string{
		"The cat sat on the mat.",
		"a",
		"Numbers like 42 and 7 count as tokens",
		"Unicode précis naïve café",
	}

	for _, input := range inputs {
		assert.Equal(t, 100, PlagiarismScore(input, input), "identical strings must score 100: %q", input)
	}
}

func TestPlagiarismScoreDeterministicAndBounded(t *testing.T) {
	pairs := [][2]string{
		{"The cat sat on the mat.", "The cat sat on the mat."},
		{"The cat sat on the mat.", "A feline rested upon the rug."},
		{"hello world", ""},
		{"", "hello world"},
		{"short", "a much longer candidate string that shares nothing"},
	}

	for _, pair := range pairs {
		first := PlagiarismScore(pair[0], pair[1])
		second := PlagiarismScore(pair[0], pair[1])
		assert.Equal(t, first, second, "score must be deterministic for %q vs %q", pair[0], pair[1])
		assert.GreaterOrEqual(t, first, 0)
		assert.LessOrEqual(t, first, 100)
	}
}

func TestPlagiarismScoreWellParaphrasedTextScoresLow(t *testing.T) {
	original := "The quick brown fox jumps over the lazy dog."
	candidate := "A fast dark fox leaps above the sleepy canine."

	score := PlagiarismScore(original, candidate)
	require.Less(t, score, 80, "a thorough rewrite must pass the acceptance gate")
	assert.Greater(t, score, 0, "shared words still contribute some similarity")
}

func TestPlagiarismScoreMonotonicUnderGrowingEditDistance(t *testing.T) {
	// Candidates keep both original tokens, so lexical overlap is fixed
	// while trailing punctuation grows the edit distance.
	original := "hello world"
	candidates := []string{
		"hello world",
		"hello world!",
		"hello world!!!!",
		"hello world!!!!!!!!",
	}

	previous := 101
	for _, candidate := range candidates {
		score := PlagiarismScore(original, candidate)
		assert.LessOrEqual(t, score, previous, "score must not increase as edit distance grows: %q", candidate)
		previous = score
	}
}

func TestPlagiarismScoreOriginalWithoutTokens(t *testing.T) {
	// Punctuation-only originals have no word tokens; lexical similarity
	// is treated as zero instead of dividing by zero.
	score := PlagiarismScore("!!! ???", "some actual words")
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
	assert.Less(t, score, 50)
}

func TestPlagiarismScoreAsymmetry(t *testing.T) {
	// The lexical component divides by the original's token count only,
	// so swapping arguments changes the score.
	short := "alpha beta"
	long := "alpha beta gamma delta epsilon zeta eta theta"

	assert.NotEqual(t, PlagiarismScore(short, long), PlagiarismScore(long, short))
}

func TestTokenizeWords(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"The cat sat.", []string{"the", "cat", "sat"}},
		{"hyphen-ated words", []string{"hyphen", "ated", "words"}},
		{"42 items", []string{"42", "items"}},
		{"   ", nil},
		{"!!!", nil},
	}

	for _, tt := range tests {
		got := tokenizeWords(tt.input)
		if tt.want == nil {
			assert.Empty(t, got, "input %q", tt.input)
			continue
		}
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}
