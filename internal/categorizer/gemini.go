package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"the305/accountant/internal/ledgererr"
	"the305/accountant/internal/logging"
)

const suggestPrompt = `You are categorizing a personal finance transaction.

Merchant: %s
Bank description: %s

Pick the single best category for this transaction (for example Groceries,
Dining, Transport, Shopping, Utilities, Entertainment, Health, Travel,
Subscriptions, Income, Transfer). Respond in exactly this format:

Category: <category>
Subcategory: <subcategory or blank>
Confidence: <number between 0 and 1>`

// GeminiClient implements AIClient against the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    logging.Logger
}

// NewGeminiClient connects to Gemini with the given API key and model
// name.
func NewGeminiClient(ctx context.Context, apiKey, model string, log logging.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiClient{
		client: client,
		model:  client.GenerativeModel(model),
		log:    log,
	}, nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Suggest asks Gemini for a categorization and parses the line-oriented
// response.
func (c *GeminiClient) Suggest(ctx context.Context, merchant, description string) (Suggestion, error) {
	prompt := fmt.Sprintf(suggestPrompt, merchant, description)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return Suggestion{}, ledgererr.ErrTimeout
		}
		return Suggestion{}, &ledgererr.ProviderError{Provider: "gemini", Err: err}
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return Suggestion{}, &ledgererr.ProviderError{Provider: "gemini", Err: fmt.Errorf("empty response")}
	}

	text := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	sugg := parseSuggestion(text)
	c.log.Debug("gemini suggestion",
		logging.F("merchant", merchant),
		logging.F("category", sugg.Category),
		logging.F("confidence", sugg.Confidence))
	return sugg, nil
}

// parseSuggestion reads the "Key: value" lines the prompt asks for.
// Missing confidence defaults to 0.5 so a provider that drops the line
// is still usable under a permissive threshold.
func parseSuggestion(text string) Suggestion {
	sugg := Suggestion{Confidence: 0.5}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Category:"):
			sugg.Category = strings.TrimSpace(strings.TrimPrefix(line, "Category:"))
		case strings.HasPrefix(line, "Subcategory:"):
			sugg.Subcategory = strings.TrimSpace(strings.TrimPrefix(line, "Subcategory:"))
		case strings.HasPrefix(line, "Confidence:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "Confidence:"))
			if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 && v <= 1 {
				sugg.Confidence = v
			}
		}
	}
	return sugg
}
