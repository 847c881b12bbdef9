package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/auth"
)

const apiKeyActor = "api-key"

// RequireAdmin accepts either a matching X-API-KEY header (for back office
// scripts) or a session token with an admin role.
func RequireAdmin(tokens *auth.Tokens, apiKey string) gin.HandlerFunc {
	validate := ValidateToken(tokens, auth.RoleAdmin, auth.RoleSuperAdmin)
	return func(c *gin.Context) {
		if key := c.GetHeader("X-API-KEY"); key != "" {
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				abort(c, apperr.Unauthorized("invalid API key"))
				return
			}
			c.Set(ctxUserID, apiKeyActor)
			c.Set(ctxRole, auth.RoleAdmin)
			c.Next()
			return
		}
		validate(c)
	}
}
