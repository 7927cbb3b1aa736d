package handler

import (
	"net/http"

	"shopmate/internal/model"
	"shopmate/internal/service"

	"github.com/gin-gonic/gin"
)

// FeedbackHandler handles feedback-related HTTP requests
type FeedbackHandler struct {
	chat *service.ChatService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(chat *service.ChatService) *FeedbackHandler {
	return &FeedbackHandler{chat: chat}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Validate action type
	validActions := map[string]bool{
		"click":        true,
		"contact":      true,
		"view_details": true,
	}
	if !validActions[req.Action] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid action. Must be one of: click, contact, view_details",
		})
		return
	}

	if err := h.chat.LogFeedback(c.Request.Context(), req.SearchID, req.ProductID, req.Action); err != nil {
		c.JSON(http.StatusServiceUnavailable, model.FeedbackResponse{
			Success: false,
			Message: "Failed to log feedback: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.FeedbackResponse{
		Success: true,
		Message: "Feedback recorded",
	})
}
