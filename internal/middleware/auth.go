package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextUserID is the gin context key holding the authenticated uuid.UUID.
const ContextUserID = "user_id"

// SessionParser validates a session token and returns its user id.
type SessionParser interface {
	ParseSessionToken(token string) (uuid.UUID, error)
}

// SessionAuth requires a valid session, read from the cookie or, failing
// that, from an "Authorization: Bearer" header.
func SessionAuth(sessions SessionParser, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		tokenStr := sessionToken(c, cookieName)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}

		userID, err := sessions.ParseSessionToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired session"})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
