package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/web-terminal-gateway/backend/internal/terminal"
	"github.com/web-terminal-gateway/backend/internal/workspace"
)

// WorkspaceHandler handles workspace layout persistence.
type WorkspaceHandler struct {
	store     *workspace.Store
	terminals *terminal.Manager
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(store *workspace.Store, terminals *terminal.Manager) *WorkspaceHandler {
	return &WorkspaceHandler{store: store, terminals: terminals}
}

// PutWorkspaceRequest represents the replacement request body. The client
// may wrap the state in a "workspace" field or send it bare.
type PutWorkspaceRequest struct {
	Workspace *workspace.State `json:"workspace"`
	workspace.State
}

// Get returns the workspace restored against the currently running
// terminals: leaves for vanished terminals are gone, empty tabs dropped.
func (h *WorkspaceHandler) Get(c *gin.Context) {
	restored := h.store.Restored(h.terminals.RunningIDs())
	c.JSON(http.StatusOK, gin.H{"ok": true, "workspace": restored})
}

// Put sanitizes and stores a client-submitted workspace, returning what
// was actually accepted.
func (h *WorkspaceHandler) Put(c *gin.Context) {
	var req PutWorkspaceRequest
	c.ShouldBindJSON(&req)

	state := req.State
	if req.Workspace != nil {
		state = *req.Workspace
	}

	accepted := h.store.Replace(state)
	c.JSON(http.StatusOK, gin.H{"ok": true, "workspace": accepted})
}
