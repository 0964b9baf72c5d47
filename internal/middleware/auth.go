package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todolist/internal/session"
)

const (
	// ContextUserKey is the gin context key carrying the principal's id.
	ContextUserKey = "user_id"
	// SessionCookieName is the cookie fallback for the session token.
	SessionCookieName = "session_token"
)

// TokenFromRequest extracts the session token, preferring the
// Authorization header over the cookie. Returns "" when neither is set.
func TokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie
}

// RequireAuth resolves the request's session token and aborts with 401
// before any authorization or repository work when it is absent,
// unknown or expired. On success the principal's id is stored in the
// context under ContextUserKey.
func RequireAuth(registry session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"errors": "User is not authenticated",
			})
			return
		}

		userID, err := registry.Resolve(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				logrus.WithError(err).Error("Error resolving session")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"errors": "Internal server error",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"errors": "User is not authenticated",
			})
			return
		}

		c.Set(ContextUserKey, userID)
		c.Next()
	}
}
