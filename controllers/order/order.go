package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/controllers/params"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/notification"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Deps are the collaborators the order handlers share.
type Deps struct {
	DB         *gorm.DB
	Events     events.Publisher
	Log        *logger.Logger
	Checkout   Options
	StorePhone string // WhatsApp number customers send their order to
}

type UpdateOrderStatusRequest struct {
	Status            string `json:"status" binding:"required"`
	EstimatedDelivery string `json:"estimatedDelivery"` // RFC3339 or YYYY-MM-DD
	Reason            string `json:"reason"`
}

// parseEstimatedDelivery accepts a full RFC3339 timestamp or a calendar date,
// which is taken as midnight in loc.
func parseEstimatedDelivery(v string, loc *time.Location) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, v, loc)
	if err != nil {
		return nil, apperr.Validation("estimatedDelivery must be an RFC3339 timestamp or a YYYY-MM-DD date")
	}
	return &t, nil
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus" binding:"required,oneof=pending paid failed refunded"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type NotificationView struct {
	Message string     `json:"message"`
	Link    string     `json:"link,omitempty"`
	Sent    bool       `json:"sent"`
	SentAt  *time.Time `json:"sentAt,omitempty"`
}

func (d Deps) notificationView(o *models.Order) NotificationView {
	v := NotificationView{Message: o.NotificationMessage, Sent: o.NotificationSent, SentAt: o.NotificationSentAt}
	if d.StorePhone != "" && o.NotificationMessage != "" {
		v.Link = notification.WhatsAppLink(d.StorePhone, o.NotificationMessage)
	}
	return v
}

func (d Deps) emit(ctx context.Context, t events.Type, o *models.Order, actor string) {
	events.Emit(ctx, d.Events, d.Log, events.NewOrderEvent(t, o, actor))
}

// orderQuery scopes a lookup by numeric id or order number.
func orderQuery(tx *gorm.DB, ref string) *gorm.DB {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return tx.Where("id = ?", id)
	}
	return tx.Where("order_number = ?", ref)
}

// findOrder loads one order; userID "" skips the ownership filter.
func findOrder(tx *gorm.DB, ref, userID string) (*models.Order, error) {
	q := orderQuery(tx, ref)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var o models.Order
	err := q.Preload("Items").First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order %s not found", ref)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// mutateOrder locks the order row, applies fn and saves the scalar fields.
func mutateOrder(ctx context.Context, db *gorm.DB, ref, userID string, fn func(*models.Order) error) (*models.Order, error) {
	var order *models.Order
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := findOrder(tx.Clauses(clause.Locking{Strength: "UPDATE"}), ref, userID)
		if err != nil {
			return err
		}
		if err := fn(o); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(o).Error; err != nil {
			return fmt.Errorf("save order %s: %w", o.OrderNumber, err)
		}
		order = o
		return nil
	})
	return order, err
}

func listOrders(c *gin.Context, db *gorm.DB, userID string) {
	page, err := params.Pagination(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	q := db.WithContext(c.Request.Context()).Model(&models.Order{})
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	} else if uid := c.Query("user_id"); uid != "" {
		q = q.Where("user_id = ?", uid)
	}
	if s := c.Query("status"); s != "" {
		status, err := models.ParseOrderStatus(s)
		if err != nil {
			_ = c.Error(err)
			return
		}
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		_ = c.Error(err)
		return
	}
	var orders []models.Order
	err = q.Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(page.Limit).Offset(page.Offset()).
		Find(&orders).Error
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, params.NewPaged(orders, page, total))
}

// POST /user/orders
func Checkout(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}
		userID := middleware.UserID(c)
		order, err := PlaceOrder(c.Request.Context(), d.DB, userID, req, d.Checkout)
		if err != nil {
			_ = c.Error(err)
			return
		}
		d.Log.Info("order placed", "order_number", order.OrderNumber, "user_id", userID, "total", order.TotalAmount.String())
		d.emit(c.Request.Context(), events.OrderCreated, order, userID)

		c.JSON(http.StatusCreated, gin.H{
			"order":        order,
			"notification": d.notificationView(order),
		})
	}
}

// GET /user/orders
func GetUserOrders(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		listOrders(c, d.DB, middleware.UserID(c))
	}
}

// GET /user/orders/:id
func GetUserOrder(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := findOrder(d.DB.WithContext(c.Request.Context()), c.Param("id"), middleware.UserID(c))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// POST /user/orders/:id/cancel
// Customers may cancel until the store starts processing the order.
func CancelUserOrder(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CancelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}
		actor := middleware.UserID(c)
		o, err := mutateOrder(c.Request.Context(), d.DB, c.Param("id"), actor, func(o *models.Order) error {
			if o.Status != models.OrderStatusPending && o.Status != models.OrderStatusConfirmed {
				return apperr.Validation("order %s is %s and can no longer be cancelled online; contact the store", o.OrderNumber, o.Status)
			}
			return o.Cancel(req.Reason, actor, time.Now())
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		d.emit(c.Request.Context(), events.OrderStatusChanged, o, actor)
		c.JSON(http.StatusOK, o)
	}
}

// GET /user/orders/:id/notification
func GetOrderNotification(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := findOrder(d.DB.WithContext(c.Request.Context()), c.Param("id"), middleware.UserID(c))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, d.notificationView(o))
	}
}

// POST /user/orders/:id/notification/sent
func MarkNotificationSent(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := mutateOrder(c.Request.Context(), d.DB, c.Param("id"), middleware.UserID(c), func(o *models.Order) error {
			return o.MarkNotificationSent(time.Now())
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, d.notificationView(o))
	}
}

// GET /admin/orders
func GetAllOrders(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		listOrders(c, d.DB, "")
	}
}

// GET /admin/orders/:id
func GetOrder(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := findOrder(d.DB.WithContext(c.Request.Context()), c.Param("id"), "")
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// PUT /admin/orders/:id/status
// Moving to cancelled goes through Cancel and needs a reason.
func UpdateOrderStatus(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}
		next, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			_ = c.Error(err)
			return
		}
		eta, err := parseEstimatedDelivery(req.EstimatedDelivery, d.Checkout.Location)
		if err != nil {
			_ = c.Error(err)
			return
		}
		actor := middleware.Actor(c)
		o, err := mutateOrder(c.Request.Context(), d.DB, c.Param("id"), "", func(o *models.Order) error {
			now := time.Now()
			if next == models.OrderStatusCancelled {
				return o.Cancel(req.Reason, actor, now)
			}
			if err := o.UpdateStatus(next, actor, now); err != nil {
				return err
			}
			if eta != nil {
				o.EstimatedDelivery = eta
			}
			return nil
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		d.Log.Info("order status changed", "order_number", o.OrderNumber, "status", o.Status, "actor", actor)
		d.emit(c.Request.Context(), events.OrderStatusChanged, o, actor)
		c.JSON(http.StatusOK, o)
	}
}

// POST /admin/orders/:id/cancel
func CancelOrder(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CancelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}
		actor := middleware.Actor(c)
		o, err := mutateOrder(c.Request.Context(), d.DB, c.Param("id"), "", func(o *models.Order) error {
			return o.Cancel(req.Reason, actor, time.Now())
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		d.emit(c.Request.Context(), events.OrderStatusChanged, o, actor)
		c.JSON(http.StatusOK, o)
	}
}

// PUT /admin/orders/:id/payment
func UpdatePaymentStatus(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdatePaymentStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}
		actor := middleware.Actor(c)
		o, err := mutateOrder(c.Request.Context(), d.DB, c.Param("id"), "", func(o *models.Order) error {
			o.PaymentStatus = req.PaymentStatus
			return nil
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		d.emit(c.Request.Context(), events.OrderPaymentUpdate, o, actor)
		c.JSON(http.StatusOK, o)
	}
}
