package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shopmate/internal/model"
	"shopmate/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chat      *service.ChatService
	uploadDir string
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *service.ChatService, uploadDir string) *ChatHandler {
	return &ChatHandler{chat: chat, uploadDir: uploadDir}
}

// HandleText handles POST /api/chat/text
func (h *ChatHandler) HandleText(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	response := h.chat.HandleMessage(c.Request.Context(), req.SessionID, req.Text)
	c.JSON(http.StatusOK, response)
}

// HandleImage handles POST /api/chat/image (multipart form: image + sessionId)
func (h *ChatHandler) HandleImage(c *gin.Context) {
	sessionID := c.PostForm("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID is required"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image: " + err.Error()})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image: " + err.Error()})
		return
	}

	// Save the upload so the frontend can display it back
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	filename := fmt.Sprintf("image_%s%s", time.Now().Format("20060102_150405.000"), ext)
	savePath := filepath.Join(h.uploadDir, filename)
	if err := os.WriteFile(savePath, imageData, 0o644); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image: " + err.Error()})
		return
	}

	imageURL := "/api/images/" + filename
	response := h.chat.HandleImage(c.Request.Context(), sessionID, imageData, imageURL)
	c.JSON(http.StatusOK, response)
}

// ServeImage handles GET /api/images/:name
func (h *ChatHandler) ServeImage(c *gin.Context) {
	name := c.Param("name")
	// Reject anything that could escape the upload directory
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image name"})
		return
	}

	path := filepath.Join(h.uploadDir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	c.File(path)
}
