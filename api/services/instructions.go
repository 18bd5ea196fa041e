package services

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	DefaultTone   = "professional"
	DefaultDomain = "general"
)

// Tones maps a register name to the instruction sentence sent to the model
var Tones = map[string]string{
	"formal":       "Use very formal, academic language with complex sentence structures.",
	"professional": "Maintain a business-appropriate tone with clear, concise language.",
	"casual":       "Use everyday conversational language with contractions and simple words.",
	"persuasive":   "Emphasize convincing language with rhetorical devices and strong arguments.",
	"creative":     "Incorporate vivid imagery, metaphors, and unconventional phrasing.",
	"technical":    "Use precise terminology and assume reader has domain knowledge.",
}

// Domains maps a subject-matter category to its instruction sentence
var Domains = map[string]string{
	"legal":     "Use legal terminology precisely. Maintain exact meaning of legal concepts.",
	"medical":   "Use accurate medical terminology. Don't alter specific medical terms.",
	"academic":  "Maintain scholarly tone with citations if present. Keep technical terms.",
	"technical": "Preserve exact meaning of technical specifications and parameters.",
	"general":   "Standard paraphrasing rules apply across all vocabulary.",
}

var domainRewrites = map[string]*regexp.Regexp{
	"legal":     regexp.MustCompile(`(?i)\bcontract\b|\bagreement\b`),
	"medical":   regexp.MustCompile(`(?i)\bdisease\b|\bcondition\b`),
	"academic":  regexp.MustCompile(`(?i)\bresearch\b|\bstudy\b`),
	"technical": regexp.MustCompile(`(?i)\bsoftware\b|\bhardware\b`),
}

var domainReplacements = map[string]string{
	"legal":     "legal document",
	"medical":   "health issue",
	"academic":  "academic work",
	"technical": "technology",
}

// preprocessForDomain normalizes domain-specific vocabulary before the text
// is sent to the generator. Unrecognized domains pass through unchanged.
func preprocessForDomain(text, domain string) string {
	re, ok := domainRewrites[domain]
	if !ok {
		return text
	}
	return re.ReplaceAllString(text, domainReplacements[domain])
}

// paraphraseSystemPrompt builds the system instruction for one paraphrase call
func paraphraseSystemPrompt(creativity float64, toneInstruction, domainInstruction string) string {
	return fmt.Sprintf(`You are an advanced paraphrasing tool. Follow these rules strictly:

1. Preserve the original meaning and factual information
2. Change sentence structure and word choice significantly (%.0f%% creativity)
3. Use different vocabulary where possible
4. %s
5. Maintain the original length of the text and detail level
6. Never add new information or change the original intent or remove key details
7. For technical terms, keep them unchanged unless a more common synonym exists
8. Output only the paraphrased text, no additional comments or explanations
9. %s`, creativity*100, toneInstruction, domainInstruction)
}

// paraphraseUserPrompt builds the user message carrying the requirements and
// the domain-preprocessed text to transform
func paraphraseUserPrompt(creativity float64, toneInstruction, domainInstruction string, avoidWords []string, text string) string {
	avoid := strings.Join(avoidWords, ", ")
	if avoid == "" {
		avoid = "none"
	}

	return fmt.Sprintf(`Paraphrase the following text with these requirements:
1. %s
2. %s
3. Creativity level: %.0f%%
4. Avoid these words: %s
5. Preserve all original meaning

Text to paraphrase:
%s`, toneInstruction, domainInstruction, creativity*100, avoid, text)
}
