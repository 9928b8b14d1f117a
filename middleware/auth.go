package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"erp-assistant-backend/internal/auth"
	"erp-assistant-backend/internal/config"
	"erp-assistant-backend/utils"
)

type AuthMiddleware struct {
	config *config.Config
}

func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{config: cfg}
}

// RequireAdmin guards administrative endpoints with a bearer token
// signed with the admin secret and carrying the admin role.
func (a *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := extractBearerToken(authHeader)

		if tokenString == "" {
			utils.RespondWithUnauthorized(c, "unauthorized", "Authentication token is required")
			c.Abort()
			return
		}

		claims, err := auth.ValidateAdminToken(tokenString, a.config.AdminJWTSecret)
		if err != nil {
			utils.RespondWithUnauthorized(c, "invalid_token", "Authentication token is invalid or expired")
			c.Abort()
			return
		}

		c.Set("admin_subject", claims.Subject)
		c.Next()
	}
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
