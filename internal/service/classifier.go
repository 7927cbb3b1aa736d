package service

import (
	"context"
	"fmt"

	"shopmate/internal/aiutil"
	"shopmate/internal/model"
)

const stateSystemPrompt = `You are a shopping assistant helping to understand conversation flow.
Your role is to analyze messages and determine the appropriate conversation state.

IMPORTANT GUIDELINES:
- For greetings or general messages without product mentions:
  * Set state to "collecting_info"
  * Provide a welcoming response asking what they're looking for

- For shopping requests or product selections:
  * When user provides ANY of these:
    - Specific product name/category (e.g. "pink dress shoes", "laptop")
    - Clear product attributes (e.g. "size 4", "for girls")
    - Product preferences (e.g. "highly rated", "under $50")
    -> Set state to "ready_to_search"
    -> Respond with enthusiasm about finding matching items
  * ONLY set to "collecting_info" when:
    - User gives no product info at all
    - User asks for general shopping help
    - User needs guidance on product types

- For dissatisfaction or explicit new search requests:
  * Set state to "initial"
  * Ask what they'd like to look for instead

- ONLY set state to "ended" when:
  * User explicitly ends the conversation (e.g., "goodbye", "thanks, bye")
  * User clearly indicates no more help needed
  * Do NOT end just because user shows interest in a product

Your response should be a JSON object with these fields:
{
    "state": "initial/collecting_info/ready_to_search/ended",
    "response": "string (your helpful response to the user)"
}`

const extractorSystemPrompt = `Your role is to analyze user messages and extract structured search parameters.

You must output a valid JSON object with:
- base_query: Required main search term combining attributes with hyphens
- filters: Optional object with:
  - price_range: Optional object with min/max numbers
  - min_rating: Optional float between 1-5
  - free_shipping: Optional boolean
  - free_returns: Optional boolean
- sort_by: Optional sort order for products:
  - "rating": ONLY set when user explicitly asks to sort by rating
  - "rating_count": ONLY set when user explicitly asks to sort by number of reviews
  - "rating_weighted": ONLY set when user explicitly asks for best/most popular/recommended
  - "price_low": ONLY set when user explicitly asks to sort by price low to high
  - "price_high": ONLY set when user explicitly asks to sort by price high to low

Guidelines:
1. base_query: Combine attributes with hyphens
   e.g. "black-leather-laptop-bag-15-inch"

2. price_range: Extract from:
   - Numbers: "under $50" -> max: 50
   - Ranges: "$100-200" -> min: 100, max: 200
   - Terms: "budget" -> max: 50, "premium" -> min: 300

3. min_rating: Map from:
   - Stars: "4 stars" -> 4.0
   - Terms: "best" -> 4.0, "good" -> 3.0

4. Set shipping/returns flags if explicitly requested

5. sort_by: ONLY set when user EXPLICITLY requests a specific sort order.
   DO NOT set sort_by if user doesn't mention sorting. Leave it null.

IMPORTANT: Consider the entire conversation context when extracting parameters.
- Update or refine parameters based on new information
- Maintain previously specified preferences unless explicitly changed
- Combine related information from multiple messages

If no product is being discussed yet, set base_query to null.`

// ConversationClassifier classifies the conversation state using the AI client
type ConversationClassifier struct {
	ai *OpenAIClient
}

// NewConversationClassifier creates a new state classifier
func NewConversationClassifier(ai *OpenAIClient) *ConversationClassifier {
	return &ConversationClassifier{ai: ai}
}

// ClassifyState asks the model for the next conversation state and reply text
func (c *ConversationClassifier) ClassifyState(ctx context.Context, message string, history []model.Turn) (model.StateClassification, error) {
	resp, err := c.ai.ChatCompletion(ctx, ChatCompletionRequest{
		Messages:       buildMessages(stateSystemPrompt, history, message),
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return model.StateClassification{}, fmt.Errorf("state classification failed: %w", err)
	}

	var result model.StateClassification
	if err := aiutil.ParseJSON(resp.Content(), &result); err != nil {
		return model.StateClassification{}, fmt.Errorf("state classification returned invalid JSON: %w", err)
	}

	if !result.State.Valid() {
		return model.StateClassification{}, fmt.Errorf("state classification returned unknown state %q", result.State)
	}

	return result, nil
}

// ParamExtractor extracts structured search parameters using the AI client
type ParamExtractor struct {
	ai *OpenAIClient
}

// NewParamExtractor creates a new parameter extractor
func NewParamExtractor(ai *OpenAIClient) *ParamExtractor {
	return &ParamExtractor{ai: ai}
}

// ExtractParameters asks the model for search parameters reflecting the
// full conversation context, not just the latest message.
func (e *ParamExtractor) ExtractParameters(ctx context.Context, message string, history []model.Turn) (*model.SearchParameters, error) {
	resp, err := e.ai.ChatCompletion(ctx, ChatCompletionRequest{
		Messages:       buildMessages(extractorSystemPrompt, history, message),
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("parameter extraction failed: %w", err)
	}

	var params model.SearchParameters
	if err := aiutil.ParseJSON(resp.Content(), &params); err != nil {
		return nil, fmt.Errorf("parameter extraction returned invalid JSON: %w", err)
	}

	sanitizeParameters(&params)
	return &params, nil
}

// sanitizeParameters drops values the model should not have produced:
// unknown sort options, ratings outside 0-5, empty query strings.
func sanitizeParameters(params *model.SearchParameters) {
	if params.BaseQuery != nil && *params.BaseQuery == "" {
		params.BaseQuery = nil
	}
	if params.SortBy != nil && !params.SortBy.Valid() {
		params.SortBy = nil
	}
	if params.Filters != nil && params.Filters.MinRating != nil {
		if *params.Filters.MinRating < 0 || *params.Filters.MinRating > 5 {
			params.Filters.MinRating = nil
		}
	}
}

// buildMessages assembles system prompt + history + current user message
func buildMessages(systemPrompt string, history []model.Turn, message string) []ChatMessage {
	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: "system", Content: systemPrompt})
	for _, turn := range history {
		messages = append(messages, ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, ChatMessage{Role: model.RoleUser, Content: message})
	return messages
}
