package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/auth"
)

const (
	ctxClaims = "claims"
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxEmail  = "email"
)

// bearerToken reads the session token from the Authorization header or, for
// websocket upgrades, the token query parameter.
func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return h
	}
	return c.Query("token")
}

// ValidateToken requires a valid session token whose role is one of roles.
// With no roles any signed-in caller, guests included, is accepted.
func ValidateToken(tokens *auth.Tokens, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			abort(c, apperr.Unauthorized("authorization header is missing"))
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			abort(c, apperr.Unauthorized("invalid or expired token"))
			return
		}
		if len(roles) > 0 && !hasRole(claims.Role, roles) {
			abort(c, apperr.Forbidden("insufficient role"))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ctxClaims, claims)
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxRole, claims.Role)
	c.Set(ctxEmail, claims.Email)
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// UserID returns the authenticated caller's id, or "" outside ValidateToken.
func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func Role(c *gin.Context) string {
	return c.GetString(ctxRole)
}

// Actor names the caller for audit fields like cancelledBy.
func Actor(c *gin.Context) string {
	if email := c.GetString(ctxEmail); email != "" {
		return email
	}
	return UserID(c)
}

func IsAdmin(c *gin.Context) bool {
	r := Role(c)
	return r == auth.RoleAdmin || r == auth.RoleSuperAdmin
}
