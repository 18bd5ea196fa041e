package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider scripts generator behavior per call and records sampling params
type fakeProvider struct {
	calls      int
	lastParams SamplingParams
	generate   func(call int, prompt string) (string, error)
}

func (f *fakeProvider) GenerateText(ctx context.Context, prompt, systemPrompt string, params SamplingParams) (string, error) {
	f.calls++
	f.lastParams = params
	return f.generate(f.calls, prompt)
}

func (f *fakeProvider) GenerateJSON(ctx context.Context, prompt, systemPrompt string, params SamplingParams) (string, error) {
	return f.GenerateText(ctx, prompt, systemPrompt, params)
}

func (f *fakeProvider) GetProviderName() string {
	return "fake"
}

func newTestParaphraser(fake *fakeProvider) *Paraphraser {
	p := NewParaphraser(fake)
	p.backoff = func(int) time.Duration { return 0 }
	return p
}

const loopOriginal = "The quick brown fox jumps over the lazy dog."
const loopRewrite = "A fast dark fox leaps above the sleepy canine."

func TestParaphraseAcceptsLowSimilarityOnFirstAttempt(t *testing.T) {
	fake := &fakeProvider{generate: func(call int, prompt string) (string, error) {
		return loopRewrite, nil
	}}
	p := newTestParaphraser(fake)

	result, err := p.Paraphrase(context.Background(), loopOriginal, DefaultParaphraseOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, loopRewrite, result.Text)
	assert.Less(t, result.PlagiarismScore, 80)
	assert.True(t, result.Success)
}

func TestParaphraseRetryBound(t *testing.T) {
	// Candidate identical to the original scores 100 and keeps triggering
	// retries; the loop must stop at MaxAttempts calls.
	fake := &fakeProvider{generate: func(call int, prompt string) (string, error) {
		return loopOriginal, nil
	}}
	p := newTestParaphraser(fake)

	opts := DefaultParaphraseOptions()
	opts.MaxAttempts = 3

	result, err := p.Paraphrase(context.Background(), loopOriginal, opts)
	require.NoError(t, err)

	assert.Equal(t, 3, fake.calls, "never a 4th generator call")
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 100, result.PlagiarismScore)
	assert.False(t, result.Success)
}

func TestParaphraseFallsBackToLeastSimilarCandidateOnExhaustion(t *testing.T) {
	original := "The system processes incoming records and writes nightly summaries to the archive."
	candidates := []string{
		original,
		"The system processes incoming records and writes nightly summaries to the archives.",
		"The system processes arriving records and writes nightly digests to the archive.",
	}

	// All candidates stay at or above the retry ceiling, with the last
	// being the least similar recorded.
	for _, candidate := range candidates {
		require.GreaterOrEqual(t, PlagiarismScore(original, candidate), 80)
	}
	require.Less(t, PlagiarismScore(original, candidates[2]), PlagiarismScore(original, candidates[0]))
	require.Less(t, PlagiarismScore(original, candidates[2]), PlagiarismScore(original, candidates[1]))

	fake := &fakeProvider{generate: func(call int, prompt string) (string, error) {
		return candidates[call-1], nil
	}}
	p := newTestParaphraser(fake)

	opts := DefaultParaphraseOptions()
	opts.MaxAttempts = 3

	result, err := p.Paraphrase(context.Background(), original, opts)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, candidates[2], result.Text, "exhaustion returns the final, least similar candidate")
	assert.GreaterOrEqual(t, result.PlagiarismScore, 80)
	assert.False(t, result.Success)
}

func TestParaphraseEnsureChangesDisabledAcceptsImmediately(t *testing.T) {
	fake := &fakeProvider{generate: func(call int, prompt string) (string, error) {
		return loopOriginal, nil
	}}
	p := newTestParaphraser(fake)

	opts := DefaultParaphraseOptions()
	opts.EnsureChanges = false

	result, err := p.Paraphrase(context.Background(), loopOriginal, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, 100, result.PlagiarismScore)
	assert.False(t, result.Success, "an unchanged candidate never clears the threshold")
}

func TestParaphraseCreativityClamp(t *testing.T) {
	run := func(creativity float64) SamplingParams {
		fake := &fakeProvider{generate: func(call int, prompt string) (string, error) {
			return loopRewrite, nil
		}}
		p := newTestParaphraser(fake)

		opts := DefaultParaphraseOptions()
		opts.Creativity = creativity

		_, err := p.Paraphrase(context.Background(), loopOriginal, opts)
		require.NoError(t, err)
		return fake.lastParams
	}

	clamped := run(5.0)
	reference := run(1.0)

	assert.Equal(t, reference, clamped, "creativity above 1.0 behaves exactly like 1.0")
	assert.Equal(t, 1.0, clamped.Temperature)
	assert.InDelta(t, 1.0-1.0/3, clamped.TopP, 1e-9)

	low := run(-2.0)
	assert.Equal(t, 0.1, low.Temperature, "creativity below 0.1 clamps up")
}

func TestParaphraseFailsFastOnEmptyText(t *testing.T) {
	fake := &fakeProvider{generate: func(call int, prompt string) (string, error) {
		t.Fatal("generator must not be called for invalid input")
		return "", nil
	}}
	p := newTestParaphraser(fake)

	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := p.Paraphrase(context.Background(), input, DefaultParaphraseOptions())
		assert.ErrorIs(t, err, ErrInvalidText, "input %q", input)
	}
	assert.Equal(t, 0, fake.calls)
}

func TestParaphraseExhaustedWhenEveryAttemptFails(t *testing.T) {
	fake := &fakeProvider{generate: func(call int, prompt string) (string, error) {
		return "", errors.New("upstream unavailable")
	}}
	p := newTestParaphraser(fake)

	opts := DefaultParaphraseOptions()
	opts.MaxAttempts = 3

	_, err := p.Paraphrase(context.Background(), loopOriginal, opts)
	assert.ErrorIs(t, err, ErrGenerationExhausted)
	assert.Equal(t, 3, fake.calls)
}

func TestParaphraseEmptyContentCountsAsFailedAttempt(t *testing.T) {
	fake := &fakeProvider{generate: func(call int, prompt string) (string, error) {
		if call == 1 {
			return "   ", nil
		}
		return loopRewrite, nil
	}}
	p := newTestParaphraser(fake)

	result, err := p.Paraphrase(context.Background(), loopOriginal, DefaultParaphraseOptions())
	require.NoError(t, err)

	assert.Equal(t, 2, fake.calls)
	assert.Equal(t, loopRewrite, result.Text)
}

func TestParaphraseHonorsContextDuringBackoff(t *testing.T) {
	fake := &fakeProvider{generate: func(call int, prompt string) (string, error) {
		return "", errors.New("upstream unavailable")
	}}
	p := NewParaphraser(fake)
	p.backoff = func(int) time.Duration { return time.Hour }

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := p.Paraphrase(ctx, loopOriginal, DefaultParaphraseOptions())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fake.calls)
}

func TestParaphraseDomainPreprocessingReachesPrompt(t *testing.T) {
	var seenPrompt string
	fake := &fakeProvider{generate: func(call int, prompt string) (string, error) {
		seenPrompt = prompt
		return loopRewrite, nil
	}}
	p := newTestParaphraser(fake)

	opts := DefaultParaphraseOptions()
	opts.Domain = "legal"

	_, err := p.Paraphrase(context.Background(), "Please review the contract before signing.", opts)
	require.NoError(t, err)

	assert.Contains(t, seenPrompt, "legal document")
	assert.NotContains(t, seenPrompt, "contract")
}

func TestParaphraseUnknownToneAndDomainFallBack(t *testing.T) {
	var seenPrompt string
	fake := &fakeProvider{generate: func(call int, prompt string) (string, error) {
		seenPrompt = prompt
		return loopRewrite, nil
	}}
	p := newTestParaphraser(fake)

	opts := DefaultParaphraseOptions()
	opts.Tone = "sarcastic"
	opts.Domain = "astrology"

	result, err := p.Paraphrase(context.Background(), loopOriginal, opts)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Contains(t, seenPrompt, Tones[DefaultTone])
	assert.Contains(t, seenPrompt, Domains[DefaultDomain])
}

func TestParaphraseAvoidWordsAppearInPrompt(t *testing.T) {
	var seenPrompt string
	fake := &fakeProvider{generate: func(call int, prompt string) (string, error) {
		seenPrompt = prompt
		return loopRewrite, nil
	}}
	p := newTestParaphraser(fake)

	opts := DefaultParaphraseOptions()
	opts.AvoidWords = []string{"basically", "actually"}

	_, err := p.Paraphrase(context.Background(), loopOriginal, opts)
	require.NoError(t, err)
	assert.Contains(t, seenPrompt, "basically, actually")

	opts.AvoidWords = nil
	_, err = p.Paraphrase(context.Background(), loopOriginal, opts)
	require.NoError(t, err)
	assert.Contains(t, seenPrompt, "Avoid these words: none")
}

func TestDecideOutcomes(t *testing.T) {
	tests := []struct {
		name          string
		score         int
		attempt       int
		maxAttempts   int
		ensureChanges bool
		want          attemptOutcome
	}{
		{"changes not required", 100, 1, 3, false, outcomeAccept},
		{"below ceiling", 79, 1, 3, true, outcomeAccept},
		{"at ceiling with attempts left", 80, 1, 3, true, outcomeRetry},
		{"at ceiling on last attempt", 80, 3, 3, true, outcomeAccept},
		{"high similarity mid-loop", 95, 2, 3, true, outcomeRetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decide(tt.score, tt.attempt, tt.maxAttempts, tt.ensureChanges))
		})
	}
}

func TestParaphraseBatchPartialFailureIsolation(t *testing.T) {
	texts := []string{
		"First passage about migrating herds across the plains.",
		"Second passage that the generator can never handle.",
		"Third passage describing tidal patterns along the coast.",
	}

	fake := &fakeProvider{generate: func(call int, prompt string) (string, error) {
		if strings.Contains(prompt, texts[1]) {
			return "", errors.New("upstream unavailable")
		}
		return loopRewrite, nil
	}}
	p := newTestParaphraser(fake)

	var events []BatchProgress
	results := p.ParaphraseBatch(context.Background(), texts, DefaultParaphraseOptions(), func(progress BatchProgress) {
		events = append(events, progress)
	})

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.Equal(t, loopRewrite, results[0].Text)
	assert.Equal(t, texts[1], results[1].Text, "failed item keeps its original text verbatim")
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)

	require.Len(t, events, 3, "one progress event per completed item")
	assert.Equal(t, []int{33, 67, 100}, []int{events[0].Progress, events[1].Progress, events[2].Progress})
	for i, event := range events {
		assert.Equal(t, i+1, event.Completed)
		assert.Equal(t, 3, event.Total)
		require.NotNil(t, event.CurrentResult)
		assert.Equal(t, results[i].Text, event.CurrentResult.Text)
	}
}

func TestClampCreativity(t *testing.T) {
	assert.Equal(t, 0.1, clampCreativity(0.0))
	assert.Equal(t, 0.1, clampCreativity(-5))
	assert.Equal(t, 0.5, clampCreativity(0.5))
	assert.Equal(t, 1.0, clampCreativity(5.0))
}
