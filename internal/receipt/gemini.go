// Package receipt extracts candidate transactions from receipt images
// using the Gemini API.
package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"fintrack/internal/services"
)

const extractionPrompt = `You are an OCR receipt parser with multilingual support.

TASK:
1. Detect the language of the receipt automatically.
2. Translate ALL extracted item names, notes, store names, and descriptions to ENGLISH.
3. Extract ONLY purchasable items from the receipt.
4. ALWAYS output final JSON IN ENGLISH ONLY.

CATEGORY RULES (IMPORTANT):
Classify items strictly into one of:
["food","travel","education","bills","salary"]

Use the following classification logic:
- food -> edible items, snacks, groceries, drinks, meals.
- travel -> fuel, tolls, parking, bus/train/auto fares.
- education -> notebooks, pens, books, stationery, school/college materials.
- bills -> medicines, pharmacy items, cosmetics, household goods, tools,
  electronics, repairs, services, misc shopping.
- salary -> income entries only.

If an item does NOT belong to food, travel, education, or salary, classify it as bills.
Never default to food unless the item is clearly edible.

CRITICAL RULES:
1. Return ONLY pure JSON. No markdown, no backticks, no explanation.
2. Amounts are integers in cents.
3. Output must follow EXACTLY this structure:

{
  "transactions": [
    {
      "amount": 0,
      "type": "expense",
      "category": "food",
      "note": ""
    }
  ]
}`

// extractionResponse mirrors the JSON structure the prompt demands.
type extractionResponse struct {
	Transactions []services.Candidate `json:"transactions"`
}

// GeminiExtractor extracts transactions from receipt images via the
// Gemini generateContent API.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates a GeminiExtractor with the given API key
// and model name.
func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiExtractor{client: client, model: model}, nil
}

// Close releases the underlying API client.
func (e *GeminiExtractor) Close() error {
	return e.client.Close()
}

// Extract sends the image and the category-controlled prompt to Gemini
// and decodes the returned transaction list. The model's category
// strings are untrusted; validation happens downstream.
func (e *GeminiExtractor) Extract(ctx context.Context, image []byte, mimeType string) ([]services.Candidate, error) {
	model := e.client.GenerativeModel(e.model)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx,
		genai.ImageData(formatFromMIME(mimeType), image),
		genai.Text(extractionPrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	// Models occasionally wrap the payload in a code fence despite the
	// JSON response type.
	clean := strings.TrimSpace(text.String())
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var parsed extractionResponse
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	return parsed.Transactions, nil
}

// formatFromMIME maps a MIME type to the image format label Gemini
// expects (the subtype, e.g. "image/png" -> "png").
func formatFromMIME(mimeType string) string {
	if _, sub, ok := strings.Cut(mimeType, "/"); ok && sub != "" {
		return sub
	}
	return "jpeg"
}
