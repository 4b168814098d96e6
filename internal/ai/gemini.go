package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenerationConfig holds the sampling parameters sent with every request.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

// DefaultGenerationConfig is tuned for short, factual health commentary.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{Temperature: 0.4, TopP: 0.95, TopK: 40, MaxOutputTokens: 4096}
}

// DefaultModels is the fallback order tried when none is configured.
var DefaultModels = []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"}

// GeminiClient generates text with Google's Gemini API.
type GeminiClient struct {
	client *genai.Client
	config *genai.GenerateContentConfig
}

// NewGeminiClient creates a client bound to apiKey.
func NewGeminiClient(ctx context.Context, apiKey string, cfg GenerationConfig) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, config: contentConfig(cfg)}, nil
}

func contentConfig(cfg GenerationConfig) *genai.GenerateContentConfig {
	threshold := genai.HarmBlockThresholdBlockMediumAndAbove
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(cfg.Temperature),
		TopP:            genai.Ptr(cfg.TopP),
		TopK:            genai.Ptr(cfg.TopK),
		MaxOutputTokens: cfg.MaxOutputTokens,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: threshold},
			{Category: genai.HarmCategoryHateSpeech, Threshold: threshold},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: threshold},
			{Category: genai.HarmCategoryDangerousContent, Threshold: threshold},
		},
	}
}

// Generate sends prompt to model and returns the concatenated text parts.
// A blocked or empty candidate yields an empty string and no error.
func (c *GeminiClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), c.config)
	if err != nil {
		return "", fmt.Errorf("gemini generate (%s): %w", model, err)
	}
	return resp.Text(), nil
}
