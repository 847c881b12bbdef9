package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/notification"
	"gorm.io/gorm"
)

const maxNotesLen = 500

type AddressInput struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zipCode" binding:"required"`
	Country string `json:"country" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
}

type CheckoutRequest struct {
	ShippingAddress AddressInput         `json:"shippingAddress"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod" binding:"required,oneof=cash_on_delivery bank_transfer mobile_money"`
	Notes           string               `json:"notes" binding:"max=500"`
}

// Validate repeats the binding rules for callers that skip gin binding.
func (r CheckoutRequest) Validate() error {
	a := r.ShippingAddress
	for field, v := range map[string]string{
		"street": a.Street, "city": a.City, "state": a.State,
		"zipCode": a.ZipCode, "country": a.Country, "phone": a.Phone,
	} {
		if strings.TrimSpace(v) == "" {
			return apperr.Validation("shippingAddress.%s is required", field)
		}
	}
	if !r.PaymentMethod.Valid() {
		return apperr.Validation("invalid payment method %q", r.PaymentMethod)
	}
	if len([]rune(r.Notes)) > maxNotesLen {
		return apperr.Validation("notes must be at most %d characters", maxNotesLen)
	}
	return nil
}

func (a AddressInput) model() models.ShippingAddress {
	return models.ShippingAddress{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		ZipCode: strings.TrimSpace(a.ZipCode),
		Country: strings.TrimSpace(a.Country),
		Phone:   strings.TrimSpace(a.Phone),
	}
}

// Options tune checkout for the store.
type Options struct {
	Location  *time.Location // day boundary for order numbers
	Formatter *notification.Formatter
	Now       func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// PlaceOrder turns the user's cart into a pending order. Everything happens in
// one transaction: either the order exists, stock is taken and the cart is
// empty, or nothing changed.
func PlaceOrder(ctx context.Context, db *gorm.DB, userID string, req CheckoutRequest, opts Options) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	formatter := opts.Formatter
	if formatter == nil {
		var err error
		if formatter, err = notification.NewFormatter(""); err != nil {
			return nil, err
		}
	}

	var order *models.Order
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := models.LoadCart(tx, userID)
		if err != nil {
			return err
		}
		if cart.IsEmpty() {
			return apperr.Validation("cart is empty")
		}
		if err := checkAvailability(tx, cart); err != nil {
			return err
		}

		now := opts.now()
		number, err := models.NextOrderNumber(tx, now, opts.Location)
		if err != nil {
			return err
		}

		items, total := cart.Snapshot()
		order = &models.Order{
			OrderNumber:     number,
			UserID:          userID,
			Items:           items,
			TotalAmount:     total,
			Status:          models.OrderStatusPending,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   models.PaymentStatusPending,
			ShippingAddress: req.ShippingAddress.model(),
			Notes:           strings.TrimSpace(req.Notes),
		}

		contact, err := contactFor(tx, userID)
		if err != nil {
			return err
		}
		msg, err := formatter.Format(order, contact)
		if err != nil {
			return err
		}
		order.RecordNotification(msg)

		if err := tx.Create(order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("order number %s already exists", number)
			}
			return fmt.Errorf("create order %s: %w", number, err)
		}

		for _, it := range cart.Items {
			if err := models.DecreaseStock(tx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		cart.Clear()
		return models.SaveCart(tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// checkAvailability reports every missing product, then every short line at
// once so the buyer can fix the whole cart in one go.
func checkAvailability(tx *gorm.DB, cart *models.Cart) error {
	var shortages []apperr.StockShortage
	for _, it := range cart.Items {
		p := it.Product
		if p.ID == 0 || !p.Active {
			return apperr.NotFound("product %d is no longer available", it.ProductID)
		}
		if it.Quantity > p.Stock {
			shortages = append(shortages, apperr.StockShortage{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: it.Quantity,
				Available: p.Stock,
			})
		}
	}
	if len(shortages) == 0 {
		return nil
	}
	sort.Slice(shortages, func(i, j int) bool { return shortages[i].ProductID < shortages[j].ProductID })
	return apperr.InsufficientStock(shortages...)
}

// contactFor looks up the buyer's name and email. Guests have no user row and
// get an empty contact.
func contactFor(tx *gorm.DB, userID string) (notification.Contact, error) {
	var u models.User
	err := tx.Select("name", "email").Where("id = ?", userID).First(&u).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notification.Contact{}, nil
	case err != nil:
		return notification.Contact{}, fmt.Errorf("load contact for %s: %w", userID, err)
	}
	return notification.Contact{Name: u.Name, Email: u.Email}, nil
}
