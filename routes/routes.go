package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/notification"
	"github.com/junaidrashid-git/storefront-api/ratelimit"
	"github.com/junaidrashid-git/storefront-api/realtime"
	"github.com/junaidrashid-git/storefront-api/storage"
	"gorm.io/gorm"
)

// Deps carries every collaborator the handlers need.
type Deps struct {
	DB        *gorm.DB
	Config    config.Config
	Log       *logger.Logger
	Mailer    mailer.Mailer
	Store     storage.Store
	Events    events.Publisher
	Hub       *realtime.Hub
	Verifier  auth.Verifier
	Tokens    *auth.Tokens
	Limiter   ratelimit.Limiter
	Formatter *notification.Formatter
}

// SetupRoutes is the single entry point that wires up every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	r.GET("/healthz", healthz(d.DB))

	SetupAuthRoutes(r, d)
	SetupPublicRoutes(r, d)
	SetupUserRoutes(r, d)
	SetupOrderRoutes(r, d)
	SetupAdminRoutes(r, d)
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
