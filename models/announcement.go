package models

import (
	"time"

	"gorm.io/gorm"
)

type Announcement struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"not null" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	Image     string         `json:"image,omitempty"`
	ImageKey  string         `json:"-"`
	Active    bool           `gorm:"not null;index" json:"active"`
	StartsAt  *time.Time     `json:"startsAt,omitempty"`
	EndsAt    *time.Time     `json:"endsAt,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// LiveAt reports whether the announcement should be shown at t.
func (a Announcement) LiveAt(t time.Time) bool {
	if !a.Active {
		return false
	}
	if a.StartsAt != nil && t.Before(*a.StartsAt) {
		return false
	}
	if a.EndsAt != nil && !t.Before(*a.EndsAt) {
		return false
	}
	return true
}

func ActiveAnnouncements(db *gorm.DB, at time.Time) ([]Announcement, error) {
	var out []Announcement
	err := db.Where("active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", at).
		Where("ends_at IS NULL OR ends_at > ?", at).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
