package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"not null;index" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	OnSale      bool            `gorm:"not null;default:false" json:"onSale"`
	Discount    int             `gorm:"not null;default:0;check:chk_products_discount,discount >= 0 AND discount <= 100" json:"discount"`
	Stock       int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	Active      bool            `gorm:"not null" json:"active"`
	Image       string          `json:"image"`
	ImageKey    string          `json:"-"`
	Categories  []Category      `gorm:"many2many:product_categories;" json:"categories,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// EffectivePrice is the unit price a buyer pays right now, rounded to cents.
func (p Product) EffectivePrice() decimal.Decimal {
	if !p.OnSale || p.Discount == 0 {
		return p.Price
	}
	cut := p.Price.Mul(decimal.NewFromInt(int64(p.Discount))).Div(hundred)
	return p.Price.Sub(cut).Round(2)
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validation("product name is required")
	}
	if p.Price.IsNegative() {
		return apperr.Validation("price must not be negative")
	}
	if p.Discount < 0 || p.Discount > 100 {
		return apperr.Validation("discount must be between 0 and 100")
	}
	if p.Stock < 0 {
		return apperr.Validation("stock must not be negative")
	}
	return nil
}

// DecreaseStock takes qty units off a product in a single conditional update,
// so concurrent buyers can never drive stock below zero.
func DecreaseStock(tx *gorm.DB, productID uint, qty int) error {
	if qty < 1 {
		return apperr.Validation("quantity must be at least 1")
	}
	res := tx.Model(&Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("decrease stock of product %d: %w", productID, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var p Product
	if err := tx.Select("id", "name", "stock").First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("product %d not found", productID)
		}
		return fmt.Errorf("load product %d: %w", productID, err)
	}
	return apperr.InsufficientStock(apperr.StockShortage{
		ProductID: p.ID,
		Name:      p.Name,
		Requested: qty,
		Available: p.Stock,
	})
}

// IncreaseStock adds qty units unconditionally (restocks and manual corrections).
func IncreaseStock(tx *gorm.DB, productID uint, qty int) error {
	if qty < 1 {
		return apperr.Validation("quantity must be at least 1")
	}
	res := tx.Model(&Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("increase stock of product %d: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product %d not found", productID)
	}
	return nil
}
