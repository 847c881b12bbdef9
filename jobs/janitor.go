// Package jobs holds the background work the API runs alongside the server.
package jobs

import (
	"context"
	"time"

	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
)

// Janitor drops expired guest sessions and unconfirmed newsletter sign-ups.
type Janitor struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Interval time.Duration
}

type PurgeResult struct {
	Guests            int64
	PendingSubscribes int64
}

// RunOnce purges everything that expired before at.
func (j *Janitor) RunOnce(ctx context.Context, at time.Time) (PurgeResult, error) {
	var res PurgeResult
	var err error
	db := j.DB.WithContext(ctx)
	if res.Guests, err = models.PurgeExpiredGuests(db, at); err != nil {
		return res, err
	}
	if res.PendingSubscribes, err = models.PurgeExpiredPendingSubscribers(db, at); err != nil {
		return res, err
	}
	return res, nil
}

// Run purges once immediately, then every Interval until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	interval := j.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		res, err := j.RunOnce(ctx, time.Now())
		switch {
		case err != nil:
			j.Log.Error("❌ janitor run failed", "error", err)
		case res.Guests > 0 || res.PendingSubscribes > 0:
			j.Log.Info("🧹 janitor purged expired records", "guests", res.Guests, "pending_subscribers", res.PendingSubscribes)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
