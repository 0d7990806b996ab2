package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/web-terminal-gateway/backend/internal/auth"
	"github.com/web-terminal-gateway/backend/internal/logging"
	"github.com/web-terminal-gateway/backend/internal/terminal"
	"github.com/web-terminal-gateway/backend/internal/web"
	"github.com/web-terminal-gateway/backend/internal/ws"
)

// WebSocketHandler upgrades and services the terminal and browser session
// sockets. Auth happens before the upgrade: an unauthenticated request
// never becomes a WebSocket.
type WebSocketHandler struct {
	store     *auth.Store
	terminals *terminal.Manager
	sessions  *web.Manager
	logger    *logging.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(store *auth.Store, terminals *terminal.Manager, sessions *web.Manager, logger *logging.Logger) *WebSocketHandler {
	return &WebSocketHandler{store: store, terminals: terminals, sessions: sessions, logger: logger}
}

// Terminal serves GET /ws/terminal?terminalId=...
func (h *WebSocketHandler) Terminal(c *gin.Context) {
	if !auth.Authenticated(h.store, c.Request) {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Unauthorized"})
		return
	}

	conn, err := ws.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("terminal ws upgrade failed", logging.Error(err))
		return
	}
	client := ws.NewClient(conn)
	go client.WritePump()

	session, ok := h.terminals.Get(c.Query("terminalId"))
	if !ok {
		client.SendMessage(&ws.Message{Type: ws.MessageTypeError, Error: "Terminal not found"})
		client.Close()
		return
	}

	session.Attach(client)

	client.ReadPump(func(data []byte) {
		var msg ws.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
		switch msg.Type {
		case ws.MessageTypeInput:
			session.Write([]byte(msg.Data))
		case ws.MessageTypePing:
			client.SendMessage(&ws.Message{Type: ws.MessageTypePong})
		}
	}, func() {
		session.Detach(client)
	})
}

// Web serves GET /ws/web?sessionId=...
func (h *WebSocketHandler) Web(c *gin.Context) {
	if !auth.Authenticated(h.store, c.Request) {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Unauthorized"})
		return
	}

	conn, err := ws.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("web ws upgrade failed", logging.Error(err))
		return
	}
	client := ws.NewClient(conn)
	go client.WritePump()

	sessionID := c.Query("sessionId")
	if err := h.sessions.Attach(sessionID, client); err != nil {
		client.SendMessage(&ws.Message{Type: ws.MessageTypeError, Error: err.Error()})
		client.Close()
		return
	}
	session, ok := h.sessions.Get(sessionID)
	if !ok {
		client.Close()
		return
	}

	client.ReadPump(func(data []byte) {
		var msg ws.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
		switch msg.Type {
		case ws.MessageTypeNav:
			session.Navigate(msg.URL)
		case ws.MessageTypeResize:
			session.Resize(msg.Width, msg.Height)
		case ws.MessageTypeInput:
			if err := session.DispatchInput(msg.Event); err != nil {
				client.SendMessage(&ws.Message{
					Type:  ws.MessageTypeError,
					Error: "Input failed: " + err.Error(),
				})
			}
		case ws.MessageTypePing:
			client.SendMessage(&ws.Message{Type: ws.MessageTypePong})
		}
	}, func() {
		session.Detach(client)
	})
}
