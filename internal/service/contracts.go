package service

import (
	"context"

	"shopmate/internal/model"
)

// StateClassifier decides the conversation state for the latest user turn.
// Any failure (network, timeout, malformed output) surfaces as an error;
// the caller substitutes a fallback, never the user.
type StateClassifier interface {
	ClassifyState(ctx context.Context, message string, history []model.Turn) (model.StateClassification, error)
}

// ParameterExtractor turns the conversation into structured search parameters.
type ParameterExtractor interface {
	ExtractParameters(ctx context.Context, message string, history []model.Turn) (*model.SearchParameters, error)
}

// CatalogSearcher retrieves candidate products for the given parameters.
type CatalogSearcher interface {
	SearchProducts(ctx context.Context, params *model.SearchParameters) ([]model.Product, error)
}

// ResponseComposer turns ranked products into a conversational presentation.
type ResponseComposer interface {
	ComposeProductResponse(ctx context.Context, products []model.Product, params *model.SearchParameters, draft string) (string, error)
}

// ImageDescriber produces a hyphenated product description from raw image bytes.
type ImageDescriber interface {
	DescribeImage(ctx context.Context, imageData []byte) (string, error)
}

// Compile-time interface checks
var (
	_ StateClassifier    = (*ConversationClassifier)(nil)
	_ ParameterExtractor = (*ParamExtractor)(nil)
	_ CatalogSearcher    = (*SerperClient)(nil)
	_ ResponseComposer   = (*Composer)(nil)
	_ ImageDescriber     = (*ImageAnalyzer)(nil)
	_ Embedder           = (*OpenAIClient)(nil)
)
