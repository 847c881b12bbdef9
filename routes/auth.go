package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, d Deps) {
	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimit(d.Limiter, "auth", d.Log))
	{
		authGroup.POST("/login", auth.UserLogin(d.DB, d.Verifier, d.Tokens, d.Log))
		authGroup.POST("/admin", auth.AdminLogin(d.DB, d.Verifier, d.Tokens, d.Config.SuperAdminEmail, d.Log))
		authGroup.POST("/guest", auth.GuestLogin(d.DB, d.Tokens))
	}
}
