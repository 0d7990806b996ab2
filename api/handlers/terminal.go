package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/web-terminal-gateway/backend/internal/model"
	"github.com/web-terminal-gateway/backend/internal/terminal"
)

// TerminalHandler handles terminal lifecycle requests.
type TerminalHandler struct {
	manager *terminal.Manager
	shell   string
}

// NewTerminalHandler creates a new TerminalHandler.
func NewTerminalHandler(manager *terminal.Manager, shell string) *TerminalHandler {
	return &TerminalHandler{manager: manager, shell: shell}
}

// CreateTerminalRequest represents the request body for creating a terminal.
type CreateTerminalRequest struct {
	Title string `json:"title"`
}

// Config reports the client-facing terminal transport configuration.
func (h *TerminalHandler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"shell":     h.shell,
		"wsPath":    "/ws/terminal",
		"webWsPath": "/ws/web",
	})
}

// List returns every terminal, most recently updated first.
func (h *TerminalHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "terminals": h.manager.List()})
}

// Create spawns a new terminal session.
func (h *TerminalHandler) Create(c *gin.Context) {
	var req CreateTerminalRequest
	c.ShouldBindJSON(&req)

	summary, err := h.manager.Create(req.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "terminal": summary})
}

// Exit force-terminates a terminal session. Terminating an exited terminal
// just returns its summary again.
func (h *TerminalHandler) Exit(c *gin.Context) {
	summary, err := h.manager.Terminate(c.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrTerminalNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Terminal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "terminal": summary})
}
