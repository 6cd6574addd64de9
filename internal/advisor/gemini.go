// Package advisor answers financial questions using the Gemini API.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiAdvisor generates advice text via the Gemini generateContent
// API.
type GeminiAdvisor struct {
	client *genai.Client
	model  string
}

// NewGeminiAdvisor creates a GeminiAdvisor with the given API key and
// model name.
func NewGeminiAdvisor(ctx context.Context, apiKey, model string) (*GeminiAdvisor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiAdvisor{client: client, model: model}, nil
}

// Close releases the underlying API client.
func (a *GeminiAdvisor) Close() error {
	return a.client.Close()
}

// Generate sends the prompt to Gemini and concatenates the text parts
// of the first candidate.
func (a *GeminiAdvisor) Generate(ctx context.Context, prompt string) (string, error) {
	model := a.client.GenerativeModel(a.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}
