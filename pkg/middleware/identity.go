package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey    = "userID"
	UserEmailKey = "userEmail"
)

// IdentityMiddleware trusts the X-User-ID header set by the upstream auth
// proxy. Authentication itself happens outside this service.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user id is required in 'X-User-ID' header"})
			return
		}
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed 'X-User-ID' header"})
			return
		}
		c.Set(UserIDKey, userID)
		c.Set(UserEmailKey, c.GetHeader("X-User-Email"))
		c.Next()
	}
}
