package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AdminTokenAuth is a middleware that guards administrative routes with a
// shared token. The configured value is a bcrypt hash of the token, so the
// plaintext never lives in configuration.
func AdminTokenAuth(adminTokenHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		if adminTokenHash == "" {
			logger.Error("Admin token hash is not configured, rejecting request")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Administrative access is not configured"})
			return
		}

		token := c.GetHeader("X-Admin-Token")
		if token == "" {
			logger.Warn("Admin token header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-Admin-Token header required"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(adminTokenHash), []byte(token)); err != nil {
			logger.Warn("Admin token mismatch")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid admin token"})
			return
		}

		c.Set("authMethod", "admin_token")
		c.Next()
	}
}
