package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/web-terminal-gateway/backend/internal/model"
	"github.com/web-terminal-gateway/backend/internal/web"
)

// WebHandler handles browser session lifecycle requests.
type WebHandler struct {
	manager *web.Manager
}

// NewWebHandler creates a new WebHandler.
func NewWebHandler(manager *web.Manager) *WebHandler {
	return &WebHandler{manager: manager}
}

// CreateWebSessionRequest represents the request body for creating a
// browser session.
type CreateWebSessionRequest struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Create registers a new browser session. Capacity is enforced here, not
// mid-stream: an over-limit request gets a 429 and nothing is allocated.
func (h *WebHandler) Create(c *gin.Context) {
	var req CreateWebSessionRequest
	c.ShouldBindJSON(&req)

	descriptor, err := h.manager.Create(req.URL, req.Width, req.Height)
	if err != nil {
		if errors.Is(err, model.ErrTooManySessions) {
			c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": descriptor})
}
