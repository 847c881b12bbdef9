// Package events fans order lifecycle events out to interested sinks.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
)

type Type string

const (
	OrderCreated       Type = "order.created"
	OrderStatusChanged Type = "order.status_changed"
	OrderPaymentUpdate Type = "order.payment_updated"
)

type Event struct {
	Type          Type                 `json:"type"`
	OrderID       uint                 `json:"orderId"`
	OrderNumber   string               `json:"orderNumber"`
	UserID        string               `json:"userId"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	TotalAmount   decimal.Decimal      `json:"totalAmount"`
	Actor         string               `json:"actor,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`
	Order         *models.Order        `json:"order,omitempty"`
}

// NewOrderEvent captures the order as it is right now.
func NewOrderEvent(t Type, o *models.Order, actor string) Event {
	return Event{
		Type:          t,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
		Actor:         actor,
		Timestamp:     time.Now().UTC(),
		Order:         o,
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Multi publishes to every sink and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Emit publishes after a commit. Delivery failures are logged, never returned:
// the order is already durable.
func Emit(ctx context.Context, p Publisher, log *logger.Logger, ev Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Warn("failed to publish order event", "type", ev.Type, "order", ev.OrderNumber, "error", err)
	}
}
