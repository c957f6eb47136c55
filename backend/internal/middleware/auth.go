package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthzConfig struct {
	// Secret overrides JWT_SECRET, mainly for tests.
	Secret string
}

// AuthzMiddleware validates the Bearer token and stores the caller's
// user_id in the request context. It never touches the database; project
// level authorization happens in the service layer.
func AuthzMiddleware(config AuthzConfig) gin.HandlerFunc {
	secret := config.Secret
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		secret = "default_secret_change_in_production"
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := utils.ParseJWT(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		if tokenType, ok := claims["type"].(string); ok && tokenType == "refresh" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "refresh token cannot be used for access"})
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || !utils.IsValidUUID(userID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
