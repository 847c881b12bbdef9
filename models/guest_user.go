package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type GuestUser struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ExpiresAt time.Time `gorm:"index" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// PurgeExpiredGuests removes guest sessions past their expiry together with their carts.
func PurgeExpiredGuests(db *gorm.DB, at time.Time) (int64, error) {
	var purged int64
	err := db.Transaction(func(tx *gorm.DB) error {
		expired := tx.Model(&GuestUser{}).Select("id").Where("expires_at < ?", at)
		carts := tx.Model(&Cart{}).Select("id").Where("user_id IN (?)", expired)
		if err := tx.Where("cart_id IN (?)", carts).Delete(&CartItem{}).Error; err != nil {
			return fmt.Errorf("delete guest cart items: %w", err)
		}
		if err := tx.Where("user_id IN (?)", expired).Delete(&Cart{}).Error; err != nil {
			return fmt.Errorf("delete guest carts: %w", err)
		}
		res := tx.Where("expires_at < ?", at).Delete(&GuestUser{})
		if res.Error != nil {
			return fmt.Errorf("delete guests: %w", res.Error)
		}
		purged = res.RowsAffected
		return nil
	})
	return purged, err
}
