package models

import (
	"fmt"
	"time"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxOrdersPerDay is the last sequence that fits the four-digit suffix.
const MaxOrdersPerDay = 9999

// OrderCounter is the per-day sequence behind order numbers.
type OrderCounter struct {
	Day string `gorm:"primaryKey;size:8"`
	Seq int    `gorm:"not null"`
}

// NextOrderNumber bumps the counter for the day of at (in loc) and formats the
// result. Past MaxOrdersPerDay it fails with a Conflict and the caller's
// transaction rolls the bump back. Must run inside the checkout transaction: the upsert holds the row
// lock until commit.
func NextOrderNumber(tx *gorm.DB, at time.Time, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.UTC
	}
	day := at.In(loc).Format("20060102")

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"seq": gorm.Expr("order_counters.seq + 1"),
		}),
	}).Create(&OrderCounter{Day: day, Seq: 1}).Error
	if err != nil {
		return "", fmt.Errorf("bump order counter %s: %w", day, err)
	}

	var counter OrderCounter
	if err := tx.Where("day = ?", day).First(&counter).Error; err != nil {
		return "", fmt.Errorf("read order counter %s: %w", day, err)
	}
	if counter.Seq > MaxOrdersPerDay {
		return "", apperr.Conflict("order numbers for %s are exhausted", day)
	}
	return FormatOrderNumber(day, counter.Seq), nil
}
