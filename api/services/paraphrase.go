package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrInvalidText is returned before any generation attempt when the
	// input is empty or whitespace-only
	ErrInvalidText = errors.New("text must be a non-empty string")

	// ErrGenerationExhausted is returned when every attempt failed to
	// produce a usable candidate
	ErrGenerationExhausted = errors.New("failed to generate valid paraphrase after multiple attempts")
)

// retryCeiling is the fixed similarity score at or above which a candidate
// triggers a retry when EnsureChanges is set. It is deliberately independent
// of the caller-supplied PlagiarismThreshold, which only determines the
// final Success flag.
const retryCeiling = 80

// ParaphraseOptions configures one paraphrase invocation. Zero values for
// Tone, Domain, MaxAttempts, Creativity and PlagiarismThreshold fall back
// to defaults; unknown tone/domain keys fall back silently as well.
type ParaphraseOptions struct {
	Tone                string
	Domain              string
	AvoidWords          []string
	EnsureChanges       bool
	MaxAttempts         int
	Creativity          float64
	PlagiarismThreshold int
}

// DefaultParaphraseOptions returns the options used when a caller supplies none
func DefaultParaphraseOptions() ParaphraseOptions {
	return ParaphraseOptions{
		Tone:                DefaultTone,
		Domain:              DefaultDomain,
		AvoidWords:          []string{},
		EnsureChanges:       true,
		MaxAttempts:         3,
		Creativity:          0.7,
		PlagiarismThreshold: retryCeiling,
	}
}

// ParaphraseResult is the outcome of one paraphrase invocation. Success
// reports whether the returned text cleared the caller's plagiarism
// threshold; a result with Success=false still carries the best text and
// its achieved score.
type ParaphraseResult struct {
	Text            string `json:"text"`
	PlagiarismScore int    `json:"plagiarismScore"`
	Attempts        int    `json:"attempts"`
	Success         bool   `json:"success"`
}

// BatchProgress is reported after each completed item of a batch
type BatchProgress struct {
	Progress      int               `json:"progress"`
	Completed     int               `json:"completed"`
	Total         int               `json:"total"`
	CurrentResult *ParaphraseResult `json:"currentResult"`
}

// Paraphraser rewrites text via an AI provider, scoring each candidate
// against the original and retrying until the rewrite is distinct enough
// or attempts are exhausted. Tone/domain tables are fixed at construction.
type Paraphraser struct {
	provider AIProvider
	tones    map[string]string
	domains  map[string]string
	backoff  func(attempt int) time.Duration
}

func NewParaphraser(provider AIProvider) *Paraphraser {
	return NewParaphraserWithTables(provider, Tones, Domains)
}

// NewParaphraserWithTables allows substituting restricted tone/domain tables
func NewParaphraserWithTables(provider AIProvider, tones, domains map[string]string) *Paraphraser {
	return &Paraphraser{
		provider: provider,
		tones:    tones,
		domains:  domains,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * time.Second
		},
	}
}

// attemptOutcome names the decision taken after scoring one candidate
type attemptOutcome int

const (
	outcomeAccept attemptOutcome = iota
	outcomeRetry
)

// decide applies the acceptance policy for a scored candidate: accept when
// the caller does not insist on changes, when the candidate is below the
// retry ceiling, or when this was the last attempt.
func decide(score, attempt, maxAttempts int, ensureChanges bool) attemptOutcome {
	if !ensureChanges || score < retryCeiling || attempt == maxAttempts {
		return outcomeAccept
	}
	return outcomeRetry
}

// clampCreativity bounds the creativity knob to [0.1, 1.0]
func clampCreativity(creativity float64) float64 {
	return math.Min(math.Max(creativity, 0.1), 1.0)
}

func (p *Paraphraser) normalize(opts ParaphraseOptions) ParaphraseOptions {
	if opts.Tone == "" {
		opts.Tone = DefaultTone
	}
	if opts.Domain == "" {
		opts.Domain = DefaultDomain
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 3
	}
	if opts.Creativity == 0 {
		opts.Creativity = 0.7
	}
	if opts.PlagiarismThreshold == 0 {
		opts.PlagiarismThreshold = retryCeiling
	}
	opts.Creativity = clampCreativity(opts.Creativity)
	return opts
}

// Paraphrase rewrites text according to opts. Attempts run strictly in
// order; each one builds the instruction payload, calls the provider,
// validates and scores the candidate, then accepts, retries, or falls back
// to the best candidate seen. Generation failures on non-final attempts are
// retried after a linear backoff; ctx cancels both the provider call and
// the backoff wait.
func (p *Paraphraser) Paraphrase(ctx context.Context, text string, opts ParaphraseOptions) (*ParaphraseResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidText
	}

	opts = p.normalize(opts)

	toneInstruction, ok := p.tones[opts.Tone]
	if !ok {
		toneInstruction = p.tones[DefaultTone]
	}
	domainInstruction, ok := p.domains[opts.Domain]
	if !ok {
		domainInstruction = p.domains[DefaultDomain]
	}

	systemPrompt := paraphraseSystemPrompt(opts.Creativity, toneInstruction, domainInstruction)
	preprocessedText := preprocessForDomain(text, opts.Domain)
	userPrompt := paraphraseUserPrompt(opts.Creativity, toneInstruction, domainInstruction, opts.AvoidWords, preprocessedText)

	params := SamplingParams{
		Temperature: opts.Creativity,
		TopP:        1 - opts.Creativity/3,
		MaxTokens:   4000,
	}

	bestResult := text
	bestScore := 0

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		content, err := p.provider.GenerateText(ctx, userPrompt, systemPrompt, params)
		if err == nil && strings.TrimSpace(content) == "" {
			err = errors.New("no content generated")
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Error().Err(err).Int("attempt", attempt).Msg("Paraphrase attempt failed")
			if attempt == opts.MaxAttempts {
				return nil, ErrGenerationExhausted
			}
			// Backoff applies only to generation failures, not to the
			// too-similar retry path
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.backoff(attempt)):
			}
			continue
		}

		// Score against the raw original, not the preprocessed text
		score := PlagiarismScore(text, content)

		if decide(score, attempt, opts.MaxAttempts, opts.EnsureChanges) == outcomeAccept {
			return &ParaphraseResult{
				Text:            content,
				PlagiarismScore: score,
				Attempts:        attempt,
				Success:         score < opts.PlagiarismThreshold,
			}, nil
		}

		if score > bestScore {
			bestScore = score
			bestResult = content
		}
	}

	// Unreachable under normal flow because the final attempt always
	// accepts, but guards against it: fall back to the best candidate
	// tracked across attempts, judged against the fixed retry ceiling.
	return &ParaphraseResult{
		Text:            bestResult,
		PlagiarismScore: bestScore,
		Attempts:        opts.MaxAttempts,
		Success:         bestScore < retryCeiling,
	}, nil
}

// ParaphraseBatch applies Paraphrase to each element of texts in order,
// reporting progress after each completed item. A failed item keeps its
// original text verbatim and the batch continues.
func (p *Paraphraser) ParaphraseBatch(ctx context.Context, texts []string, opts ParaphraseOptions, onProgress func(BatchProgress)) []ParaphraseResult {
	results := make([]ParaphraseResult, 0, len(texts))
	total := len(texts)

	for i, text := range texts {
		result, err := p.Paraphrase(ctx, text, opts)
		if err != nil {
			log.Error().Err(err).Int("item", i).Msg("Batch item failed, keeping original text")
			result = &ParaphraseResult{
				Text:            text,
				PlagiarismScore: 100,
				Attempts:        0,
				Success:         false,
			}
		}
		results = append(results, *result)

		if onProgress != nil {
			onProgress(BatchProgress{
				Progress:      int(math.Round(float64(i+1) / float64(total) * 100)),
				Completed:     i + 1,
				Total:         total,
				CurrentResult: result,
			})
		}
	}

	return results
}
