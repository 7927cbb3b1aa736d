package model

// ChatRequest is the incoming text turn payload.
type ChatRequest struct {
	Text      string `json:"text" binding:"required"`
	SessionID string `json:"sessionId" binding:"required"`
}

// ChatResponse is the per-turn response returned to the client.
// Products and SearchParams are empty/absent unless a search fired this turn.
type ChatResponse struct {
	Text         string            `json:"text"`
	Timestamp    string            `json:"timestamp"`
	Products     []Product         `json:"products"`
	SearchParams *SearchParameters `json:"search_params"`
	SearchID     string            `json:"search_id,omitempty"`
}

// ImageChatResponse is the response for an image upload turn.
type ImageChatResponse struct {
	Success     bool          `json:"success"`
	Text        string        `json:"text"`
	Error       *string       `json:"error"`
	UserMessage *ImageMessage `json:"user_message"`
	Timestamp   string        `json:"timestamp"`
}

// ImageMessage echoes the uploaded image back to the client for display.
type ImageMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// FeedbackRequest records a user action against a previously returned search.
type FeedbackRequest struct {
	SearchID  string `json:"search_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Action    string `json:"action" binding:"required"` // click, contact, view_details
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
