package adminController

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/params"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
)

type LowStockProduct struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

type Dashboard struct {
	OrdersByStatus   map[models.OrderStatus]int64 `json:"ordersByStatus"`
	TotalOrders      int64                        `json:"totalOrders"`
	Revenue          decimal.Decimal              `json:"revenue"`
	LowStock         []LowStockProduct            `json:"lowStock"`
	Customers        int64                        `json:"customers"`
	Subscribers      int64                        `json:"subscribers"`
	PendingApprovals int64                        `json:"pendingApprovals"`
}

// GetDashboard summarises orders, revenue and inventory. Revenue counts every
// order that was not cancelled.
// GET /admin/dashboard
func GetDashboard(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := d.DB.WithContext(c.Request.Context())
		out := Dashboard{
			OrdersByStatus: map[models.OrderStatus]int64{},
			LowStock:       []LowStockProduct{},
		}

		var counts []struct {
			Status models.OrderStatus
			N      int64
		}
		if err := db.Model(&models.Order{}).Select("status, COUNT(*) AS n").Group("status").Scan(&counts).Error; err != nil {
			_ = c.Error(err)
			return
		}
		for _, s := range []models.OrderStatus{
			models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusProcessing,
			models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled,
		} {
			out.OrdersByStatus[s] = 0
		}
		for _, row := range counts {
			out.OrdersByStatus[row.Status] = row.N
			out.TotalOrders += row.N
		}

		// Summed in Go so decimal precision survives every driver.
		var totals []decimal.Decimal
		err := db.Model(&models.Order{}).
			Where("status <> ?", models.OrderStatusCancelled).
			Pluck("total_amount", &totals).Error
		if err != nil {
			_ = c.Error(err)
			return
		}
		out.Revenue = decimal.Zero
		for _, t := range totals {
			out.Revenue = out.Revenue.Add(t)
		}

		err = db.Model(&models.Product{}).
			Select("id, name, stock").
			Where("active = ? AND stock < ?", true, d.LowStockThreshold).
			Order("stock ASC, id ASC").
			Scan(&out.LowStock).Error
		if err != nil {
			_ = c.Error(err)
			return
		}

		for _, q := range []struct {
			model any
			where string
			args  []any
			dst   *int64
		}{
			{&models.User{}, "", nil, &out.Customers},
			{&models.Subscriber{}, "active = ?", []any{true}, &out.Subscribers},
			{&models.Admin{}, "approved = ?", []any{false}, &out.PendingApprovals},
		} {
			tx := db.Model(q.model)
			if q.where != "" {
				tx = tx.Where(q.where, q.args...)
			}
			if err := tx.Count(q.dst).Error; err != nil {
				_ = c.Error(err)
				return
			}
		}
		c.JSON(http.StatusOK, out)
	}
}

type Customer struct {
	models.User
	OrderCount int64 `json:"orderCount"`
}

// GET /admin/customers
func GetCustomers(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := params.Pagination(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		db := d.DB.WithContext(c.Request.Context())
		q := db.Model(&models.User{})
		if s := strings.TrimSpace(c.Query("search")); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			q = q.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", like, like)
		}

		var total int64
		if err := q.Count(&total).Error; err != nil {
			_ = c.Error(err)
			return
		}
		var users []models.User
		if err := q.Order("created_at DESC, id ASC").Limit(page.Limit).Offset(page.Offset()).Find(&users).Error; err != nil {
			_ = c.Error(err)
			return
		}

		ids := make([]string, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		var counts []struct {
			UserID string
			N      int64
		}
		if len(ids) > 0 {
			err = db.Model(&models.Order{}).Select("user_id, COUNT(*) AS n").
				Where("user_id IN ?", ids).Group("user_id").Scan(&counts).Error
			if err != nil {
				_ = c.Error(err)
				return
			}
		}
		byUser := make(map[string]int64, len(counts))
		for _, row := range counts {
			byUser[row.UserID] = row.N
		}

		out := make([]Customer, 0, len(users))
		for _, u := range users {
			out = append(out, Customer{User: u, OrderCount: byUser[u.ID]})
		}
		c.JSON(http.StatusOK, params.NewPaged(out, page, total))
	}
}
