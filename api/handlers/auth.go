// Package handlers provides HTTP API request handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/web-terminal-gateway/backend/internal/auth"
	"github.com/web-terminal-gateway/backend/internal/logging"
)

// AuthHandler handles login, logout, and auth status checks.
type AuthHandler struct {
	store  *auth.Store
	logger *logging.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store *auth.Store, logger *logging.Logger) *AuthHandler {
	return &AuthHandler{store: store, logger: logger}
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Password string `json:"password"`
}

// Login checks the password and issues a session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	// A malformed body just means a wrong password.
	c.ShouldBindJSON(&req)

	if !h.store.CheckPassword(req.Password) {
		h.logger.Warn("login rejected", logging.String("remote", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Invalid credentials"})
		return
	}

	session := h.store.Create()
	http.SetCookie(c.Writer, auth.SessionCookie(c.Request, session))
	c.JSON(http.StatusOK, gin.H{"ok": true, "authenticated": true})
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.store.Revoke(auth.RequestToken(c.Request))
	http.SetCookie(c.Writer, auth.ClearCookie(c.Request))
	c.JSON(http.StatusOK, gin.H{"ok": true, "authenticated": false})
}

// Status reports whether the request carries a live session.
func (h *AuthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"authenticated": auth.Authenticated(h.store, c.Request),
	})
}
