package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware returns a gin middleware that rejects requests without a live
// auth session. Privileged routes are guarded uniformly before any work.
func Middleware(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !store.Validate(RequestToken(c.Request)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"ok":    false,
				"error": "Unauthorized",
			})
			return
		}
		c.Next()
	}
}

// Authenticated reports whether the request carries a live session.
func Authenticated(store *Store, r *http.Request) bool {
	return store.Validate(RequestToken(r))
}
