package service

import (
	"context"
	"encoding/json"
	"fmt"

	"shopmate/internal/model"
)

const composerSystemPrompt = `You are an enthusiastic and helpful shopping assistant who loves finding the perfect products for customers.
Your role is to:
1. Start with a brief, friendly greeting
2. Present each product with ONLY its title and a personalized reason
3. Ask ONE follow-up question to improve future recommendations, considering any previous questions asked

STRICT PRODUCT FORMAT:
For each product, use exactly this format:

**[Product Title]**
- [personalized reason focusing on features and user preferences]

DO NOT include:
- Price information
- Rating or review information
- Store/seller information
- Links or calls to action
- Technical specifications

After presenting all products, ask ONE natural follow-up question based on
the initial response and the current preferences, e.g.:
- "Would you prefer to see options sorted by customer ratings or price?"
- "What's your budget range for these items?"
- "What size are you looking for in these items?"

Keep explanations focused on how features benefit the user, use natural
conversational language, and avoid repeating questions that were already
asked in the initial response.`

// Composer produces the enriched product presentation via the AI client
type Composer struct {
	ai *OpenAIClient
}

// NewComposer creates a new response composer
func NewComposer(ai *OpenAIClient) *Composer {
	return &Composer{ai: ai}
}

// composerProduct is the per-product context handed to the model
type composerProduct struct {
	Number      int      `json:"number"`
	Title       string   `json:"title"`
	Price       string   `json:"price"`
	Rating      *float64 `json:"rating"`
	ReviewCount int      `json:"review_count"`
	Store       string   `json:"store"`
	Link        string   `json:"link"`
}

// paramSummary is the preference context handed to the model
type paramSummary struct {
	Query   string               `json:"query"`
	Filters *model.SearchFilters `json:"filters"`
	SortBy  *model.SortOption    `json:"sort_by"`
}

// ComposeProductResponse generates a personalized presentation of the
// ranked products. The caller falls back to FailoverResponse on error.
func (c *Composer) ComposeProductResponse(ctx context.Context, products []model.Product, params *model.SearchParameters, draft string) (string, error) {
	summary := paramSummary{Query: params.Query()}
	if params != nil {
		summary.Filters = params.Filters
		summary.SortBy = params.SortBy
	}

	details := make([]composerProduct, 0, len(products))
	for i, p := range products {
		details = append(details, composerProduct{
			Number:      i + 1,
			Title:       p.Title,
			Price:       p.DisplayPrice,
			Rating:      p.Rating,
			ReviewCount: p.RatingCount,
			Store:       p.Source,
			Link:        p.Link,
		})
	}

	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal preference summary: %w", err)
	}
	detailsJSON, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal product details: %w", err)
	}

	userPrompt := fmt.Sprintf(`Initial response: %s

Current user preferences: %s

Available products: %s

Generate a response following the STRICT PRODUCT FORMAT.
DO NOT include any price, rating, store information, or additional details.`,
		draft, summaryJSON, detailsJSON)

	resp, err := c.ai.ChatCompletion(ctx, ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: composerSystemPrompt},
			{Role: model.RoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("response composition failed: %w", err)
	}

	text := resp.Content()
	if text == "" {
		return "", fmt.Errorf("response composition returned empty content")
	}
	return text, nil
}

// FailoverResponse renders a deterministic numbered list of product
// titles, used whenever composition fails.
func FailoverResponse(products []model.Product) string {
	if len(products) == 0 {
		return "I couldn't find any products matching your criteria. Would you like to try with different preferences?"
	}

	text := "Here are some products that match your requirements:\n\n"
	for i, p := range products {
		text += fmt.Sprintf("%d. %s\n", i+1, p.Title)
	}
	return text
}
