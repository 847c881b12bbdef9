package adminController

import (
	"time"

	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/storage"
	"gorm.io/gorm"
)

// Deps are shared by the back-office handlers.
type Deps struct {
	DB                *gorm.DB
	Store             storage.Store
	Mailer            mailer.Mailer
	Log               *logger.Logger
	StoreName         string
	LowStockThreshold int
	Now               func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
