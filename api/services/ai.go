package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SamplingParams controls the generator's sampling behavior for one call
type SamplingParams struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// DefaultSampling is used when a caller has no specific sampling needs
var DefaultSampling = SamplingParams{Temperature: 0.7, TopP: 1.0, MaxTokens: 4096}

// AIProvider is the interface for AI model providers
type AIProvider interface {
	GenerateText(ctx context.Context, prompt, systemPrompt string, params SamplingParams) (string, error)
	GenerateJSON(ctx context.Context, prompt, systemPrompt string, params SamplingParams) (string, error)
	GetProviderName() string
}

// GroqProvider implements Groq's OpenAI-compatible chat completions API
type GroqProvider struct {
	APIKey string
	Model  string
}

// OpenAIProvider implements OpenAI
type OpenAIProvider struct {
	APIKey string
	Model  string
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

func NewAIProvider(provider, apiKey, model string) AIProvider {
	switch strings.ToLower(provider) {
	case "openai":
		return &OpenAIProvider{
			APIKey: apiKey,
			Model:  model,
		}
	default:
		return &GroqProvider{
			APIKey: apiKey,
			Model:  model,
		}
	}
}

func (g *GroqProvider) GetProviderName() string {
	return "groq"
}

func (g *GroqProvider) GenerateText(ctx context.Context, prompt, systemPrompt string, params SamplingParams) (string, error) {
	return chatCompletion(ctx, "https://api.groq.com/openai/v1/chat/completions", g.APIKey, g.Model, prompt, systemPrompt, params, false)
}

// GenerateJSON requests a JSON-object response (for curriculum/lesson generation)
func (g *GroqProvider) GenerateJSON(ctx context.Context, prompt, systemPrompt string, params SamplingParams) (string, error) {
	return chatCompletion(ctx, "https://api.groq.com/openai/v1/chat/completions", g.APIKey, g.Model, prompt, systemPrompt, params, true)
}

func (o *OpenAIProvider) GetProviderName() string {
	return "openai"
}

func (o *OpenAIProvider) GenerateText(ctx context.Context, prompt, systemPrompt string, params SamplingParams) (string, error) {
	return chatCompletion(ctx, "https://api.openai.com/v1/chat/completions", o.APIKey, o.Model, prompt, systemPrompt, params, false)
}

func (o *OpenAIProvider) GenerateJSON(ctx context.Context, prompt, systemPrompt string, params SamplingParams) (string, error) {
	return chatCompletion(ctx, "https://api.openai.com/v1/chat/completions", o.APIKey, o.Model, prompt, systemPrompt, params, true)
}

func chatCompletion(ctx context.Context, url, apiKey, model, prompt, systemPrompt string, params SamplingParams, jsonMode bool) (string, error) {
	reqBody := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": params.Temperature,
		"top_p":       params.TopP,
		"max_tokens":  params.MaxTokens,
	}
	if jsonMode {
		reqBody["response_format"] = map[string]string{
			"type": "json_object",
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}
