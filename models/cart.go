package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"uniqueIndex;not null" json:"userId"`                     // one cart per user
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"` // cascade delete items if cart is deleted
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"-"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"productId"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

func (c *Cart) find(productID uint) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem merges quantity into an existing line for the product or appends a new one.
func (c *Cart) AddItem(product Product, quantity int) error {
	if quantity < 1 {
		return apperr.Validation("quantity must be at least 1")
	}
	now := time.Now()
	if i := c.find(product.ID); i >= 0 {
		c.Items[i].Quantity += quantity
		c.Items[i].Product = product
	} else {
		c.Items = append(c.Items, CartItem{
			CartID:    c.ID,
			ProductID: product.ID,
			Product:   product,
			Quantity:  quantity,
			AddedAt:   now,
		})
	}
	c.UpdatedAt = now
	return nil
}

// RemoveItem drops the line for productID. Absent products are ignored.
func (c *Cart) RemoveItem(productID uint) {
	if i := c.find(productID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		c.UpdatedAt = time.Now()
	}
}

// UpdateQuantity sets the quantity of an existing line; quantity <= 0 removes it.
func (c *Cart) UpdateQuantity(productID uint, quantity int) error {
	i := c.find(productID)
	if i < 0 {
		return apperr.NotFound("product %d is not in the cart", productID)
	}
	if quantity <= 0 {
		c.RemoveItem(productID)
		return nil
	}
	c.Items[i].Quantity = quantity
	c.UpdatedAt = time.Now()
	return nil
}

func (c *Cart) Clear() {
	c.Items = nil
	c.UpdatedAt = time.Now()
}

func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

// ItemCount is the number of units in the cart, not the number of lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// TotalPrice prices every line from the product currently attached to it.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Snapshot freezes the cart lines into order items and returns their total.
func (c *Cart) Snapshot() ([]OrderItem, decimal.Decimal) {
	items := make([]OrderItem, 0, len(c.Items))
	total := decimal.Zero
	for _, it := range c.Items {
		oi := NewOrderItem(it.Product, it.Quantity)
		total = total.Add(oi.Total)
		items = append(items, oi)
	}
	return items, total
}

// LoadCart returns the user's cart with live products attached. A user without a
// cart gets an empty, unsaved one.
func LoadCart(db *gorm.DB, userID string) (*Cart, error) {
	var cart Cart
	err := db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("added_at ASC, id ASC") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Cart{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart for %s: %w", userID, err)
	}
	return &cart, nil
}

// SaveCart persists the cart row and makes the stored lines match cart.Items.
func SaveCart(tx *gorm.DB, cart *Cart) error {
	if cart.ID == 0 {
		if err := tx.Omit(clause.Associations).Create(cart).Error; err != nil {
			return fmt.Errorf("create cart: %w", err)
		}
	} else if err := tx.Omit(clause.Associations).Save(cart).Error; err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	keep := make([]uint, 0, len(cart.Items))
	for i := range cart.Items {
		cart.Items[i].CartID = cart.ID
		keep = append(keep, cart.Items[i].ProductID)
	}

	stale := tx.Where("cart_id = ?", cart.ID)
	if len(keep) > 0 {
		stale = stale.Where("product_id NOT IN ?", keep)
	}
	if err := stale.Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("prune cart items: %w", err)
	}

	for i := range cart.Items {
		it := &cart.Items[i]
		if it.ID != 0 {
			if err := tx.Model(&CartItem{}).Where("id = ?", it.ID).UpdateColumn("quantity", it.Quantity).Error; err != nil {
				return fmt.Errorf("update cart item: %w", err)
			}
			continue
		}
		// Another request may have inserted the same product since the cart was loaded.
		err := tx.Omit("Product").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
		}).Create(it).Error
		if err != nil {
			return fmt.Errorf("insert cart item: %w", err)
		}
	}
	return nil
}
