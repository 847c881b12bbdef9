package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string

const (
	OrderStatusPending    OrderStatus = "pending"    // placed, awaiting confirmation
	OrderStatusConfirmed  OrderStatus = "confirmed"  // accepted by the store
	OrderStatusProcessing OrderStatus = "processing" // being packed
	OrderStatusShipped    OrderStatus = "shipped"    // out for delivery
	OrderStatusDelivered  OrderStatus = "delivered"  // customer received it
	OrderStatusCancelled  OrderStatus = "cancelled"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"

	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMobileMoney    PaymentMethod = "mobile_money"
)

const (
	MinCancelReasonLen = 5
	MaxCancelReasonLen = 200
)

// fulfilment order; cancelled sits outside it.
var statusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusConfirmed:  1,
	OrderStatusProcessing: 2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == OrderStatusCancelled
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo allows forward moves (skipping steps is fine) and cancellation
// from any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() || !next.Valid() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

func ParseOrderStatus(v string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", apperr.Validation("invalid order status %q", v)
	}
	return s, nil
}

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCashOnDelivery, PaymentBankTransfer, PaymentMobileMoney:
		return true
	}
	return false
}

// Label is the human readable payment method used in messages and exports.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCashOnDelivery:
		return "Cash on delivery"
	case PaymentBankTransfer:
		return "Bank transfer"
	case PaymentMobileMoney:
		return "Mobile money"
	}
	return string(m)
}

var PaymentMethods = []PaymentMethod{PaymentCashOnDelivery, PaymentBankTransfer, PaymentMobileMoney}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

// String renders the address on one line.
func (a ShippingAddress) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.City, a.State, a.ZipCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type Order struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	OrderNumber         string          `gorm:"uniqueIndex;size:24;not null" json:"orderNumber"`
	UserID              string          `gorm:"index;not null" json:"userId"`
	Items               []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	Status              OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentMethod       PaymentMethod   `gorm:"type:varchar(30);not null" json:"paymentMethod"`
	PaymentStatus       PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"paymentStatus"`
	ShippingAddress     ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	Notes               string          `gorm:"size:500" json:"notes,omitempty"`
	EstimatedDelivery   *time.Time      `json:"estimatedDelivery,omitempty"`
	DeliveredAt         *time.Time      `json:"deliveredAt,omitempty"`
	CancelledAt         *time.Time      `json:"cancelledAt,omitempty"`
	CancelledBy         string          `json:"cancelledBy,omitempty"`
	CancelReason        string          `gorm:"size:200" json:"cancelReason,omitempty"`
	NotificationMessage string          `gorm:"type:text" json:"notificationMessage,omitempty"`
	NotificationSent    bool            `gorm:"not null;default:false" json:"notificationSent"`
	NotificationSentAt  *time.Time      `json:"notificationSentAt,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"-"`
	ProductID uint            `gorm:"index;not null" json:"productId"`
	Name      string          `gorm:"not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
}

// NewOrderItem snapshots the product's name and current effective price.
func NewOrderItem(p Product, quantity int) OrderItem {
	price := p.EffectivePrice()
	return OrderItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     price,
		Quantity:  quantity,
		Total:     price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// ItemsTotal sums the line totals.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Total)
	}
	return total
}

// UpdateStatus moves the order to next, stamping delivery or cancellation metadata.
func (o *Order) UpdateStatus(next OrderStatus, actor string, at time.Time) error {
	if !next.Valid() {
		return apperr.Validation("invalid order status %q", next)
	}
	if !o.Status.CanTransitionTo(next) {
		return apperr.Validation("cannot move order %s from %s to %s", o.OrderNumber, o.Status, next)
	}
	o.Status = next
	switch next {
	case OrderStatusDelivered:
		o.DeliveredAt = &at
	case OrderStatusCancelled:
		o.CancelledAt = &at
		o.CancelledBy = actor
	}
	return nil
}

// Cancel requires a reason of 5 to 200 characters. Stock is not restored.
func (o *Order) Cancel(reason, actor string, at time.Time) error {
	reason = strings.TrimSpace(reason)
	if n := utf8.RuneCountInString(reason); n < MinCancelReasonLen || n > MaxCancelReasonLen {
		return apperr.Validation("cancellation reason must be between %d and %d characters", MinCancelReasonLen, MaxCancelReasonLen)
	}
	if err := o.UpdateStatus(OrderStatusCancelled, actor, at); err != nil {
		return err
	}
	o.CancelReason = reason
	return nil
}

// RecordNotification stores a freshly formatted message as not yet sent.
func (o *Order) RecordNotification(message string) {
	o.NotificationMessage = message
	o.NotificationSent = false
	o.NotificationSentAt = nil
}

func (o *Order) MarkNotificationSent(at time.Time) error {
	if o.NotificationMessage == "" {
		return apperr.Validation("order %s has no notification message", o.OrderNumber)
	}
	o.NotificationSent = true
	o.NotificationSentAt = &at
	return nil
}

// FormatOrderNumber renders EA{YYYYMMDD}{NNNN}.
func FormatOrderNumber(day string, seq int) string {
	return fmt.Sprintf("EA%s%04d", day, seq)
}
