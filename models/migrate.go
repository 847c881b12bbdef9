package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every table the API owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&GuestUser{},
		&Admin{},
		&Category{},
		&Product{},
		&Cart{},
		&CartItem{},
		&WishlistItem{},
		&OrderCounter{},
		&Order{},
		&OrderItem{},
		&PendingSubscriber{},
		&Subscriber{},
		&Announcement{},
		&PaymentQR{},
	)
}
