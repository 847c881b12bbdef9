package models

import "time"

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"unique;not null" json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	ImageKey    string    `json:"-"`
	Products    []Product `gorm:"many2many:product_categories" json:"products,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
