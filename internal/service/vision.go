package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"shopmate/internal/aiutil"
)

const visionSystemPrompt = `You are a shopping assistant specialized in analyzing product images.
Your task is to describe the product in a natural, conversational way that can be used for product search.
Focus on key details that would be useful for finding similar products:
- Product type and key attributes (combined into a hyphenated base_query)
- Potential use cases

Format your response as a JSON object with:
- base_query: Hyphenated string combining product type and key attributes
  (e.g., "black-leather-crossbody-handbag", "blue-running-shoes-with-mesh")

Example:
{
    "base_query": "red-leather-crossbody-handbag-with-gold-chain"
}`

// ImageAnalyzer extracts a searchable product description from an image
type ImageAnalyzer struct {
	ai *OpenAIClient
}

// NewImageAnalyzer creates a new image analyzer
func NewImageAnalyzer(ai *OpenAIClient) *ImageAnalyzer {
	return &ImageAnalyzer{ai: ai}
}

// DescribeImage returns a normalized hyphenated description of the
// product in the image, e.g. "blue-running-shoes-with-mesh".
func (a *ImageAnalyzer) DescribeImage(ctx context.Context, imageData []byte) (string, error) {
	if len(imageData) == 0 {
		return "", fmt.Errorf("empty image data")
	}

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageData)

	resp, err := a.ai.ChatCompletion(ctx, ChatCompletionRequest{
		Model:     a.ai.VisionModel(),
		MaxTokens: a.ai.VisionMaxTokens(),
		Messages: []ChatMessage{
			{Role: "system", Content: visionSystemPrompt},
			{Role: "user", Content: []ContentPart{
				{Type: "text", Text: "Please analyze this product image and describe what you see:"},
				{Type: "image_url", ImageURL: &ImageURL{URL: dataURL}},
			}},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("image analysis failed: %w", err)
	}

	var result struct {
		BaseQuery string `json:"base_query"`
	}
	if err := aiutil.ParseJSON(resp.Content(), &result); err != nil {
		return "", fmt.Errorf("image analysis returned invalid JSON: %w", err)
	}
	if result.BaseQuery == "" {
		return "", fmt.Errorf("image analysis returned no description")
	}

	return result.BaseQuery, nil
}
