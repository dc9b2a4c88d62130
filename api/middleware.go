package api

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// contextKeyToken holds the resolved session token in Gin's context
	contextKeyToken = "session_token"
	// contextKeyUserID holds the resolved user id in Gin's context
	contextKeyUserID = "user_id"
)

// RequireSession returns a middleware that resolves the session token from
// the Authorization header or session cookie and rejects unauthenticated
// requests.
func (h *Handlers) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			RespondUnauthorized(c, "not authenticated")
			c.Abort()
			return
		}

		userID, ok := h.auth.UserIDForToken(token)
		if !ok {
			RespondUnauthorized(c, "session expired or invalid")
			c.Abort()
			return
		}

		c.Set(contextKeyToken, token)
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

// sessionToken extracts the session token from a Bearer header or cookie
func sessionToken(c *gin.Context) string {
	header := c.Request.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	token, err := c.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return token
}
