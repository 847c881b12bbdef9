package models

import (
	"time"

	"gorm.io/gorm"
)

// NewsletterPreferences are the topics a subscriber wants mail about.
type NewsletterPreferences struct {
	NewProducts   bool `json:"newProducts"`
	Offers        bool `json:"offers"`
	Announcements bool `json:"announcements"`
}

func DefaultNewsletterPreferences() NewsletterPreferences {
	return NewsletterPreferences{NewProducts: true, Offers: true, Announcements: true}
}

// PendingSubscriber waits for its confirmation token to be redeemed.
type PendingSubscriber struct {
	ID          uint                  `gorm:"primaryKey" json:"id"`
	Email       string                `gorm:"uniqueIndex;not null" json:"email"`
	Token       string                `gorm:"uniqueIndex;size:64;not null" json:"-"`
	Preferences NewsletterPreferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	ExpiresAt   time.Time             `gorm:"index;not null" json:"expiresAt"`
	CreatedAt   time.Time             `json:"createdAt"`
}

func (p PendingSubscriber) Expired(at time.Time) bool {
	return !at.Before(p.ExpiresAt)
}

type Subscriber struct {
	ID               uint                  `gorm:"primaryKey" json:"id"`
	Email            string                `gorm:"uniqueIndex;not null" json:"email"`
	Preferences      NewsletterPreferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	Active           bool                  `gorm:"not null;index" json:"active"`
	ConfirmedAt      time.Time             `json:"confirmedAt"`
	UnsubscribeToken string                `gorm:"uniqueIndex;size:64;not null" json:"-"`
	CreatedAt        time.Time             `json:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

// PurgeExpiredPendingSubscribers drops unconfirmed sign-ups past their expiry.
func PurgeExpiredPendingSubscribers(db *gorm.DB, at time.Time) (int64, error) {
	res := db.Where("expires_at <= ?", at).Delete(&PendingSubscriber{})
	return res.RowsAffected, res.Error
}
