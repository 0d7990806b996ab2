package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/web-terminal-gateway/backend/internal/config"
	"github.com/web-terminal-gateway/backend/internal/terminal"
	"github.com/web-terminal-gateway/backend/internal/web"
	"github.com/web-terminal-gateway/backend/internal/workspace"
)

// HealthHandler reports liveness and a few gauges. It requires no auth.
type HealthHandler struct {
	cfg       *config.Config
	terminals *terminal.Manager
	sessions  *web.Manager
	store     *workspace.Store
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(cfg *config.Config, terminals *terminal.Manager, sessions *web.Manager, store *workspace.Store) *HealthHandler {
	return &HealthHandler{cfg: cfg, terminals: terminals, sessions: sessions, store: store}
}

// Health returns the gateway health document.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"service":       "web-terminal-gateway",
		"port":          h.cfg.Server.Port,
		"workdir":       h.cfg.Server.Workdir,
		"authRequired":  true,
		"shell":         h.cfg.Terminal.Shell,
		"terminals":     h.terminals.Count(),
		"webSessions":   h.sessions.Count(),
		"workspaceTabs": len(h.store.Current().Tabs),
	})
}
