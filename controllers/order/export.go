package orderControllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var orderExportHeaders = []string{
	"Order Number", "User ID", "Status", "Payment Method", "Payment Status",
	"Items", "Total", "Phone", "Address", "Notes", "Created At", "Delivered At", "Cancelled At",
}

// BuildOrdersWorkbook writes one row per order.
func BuildOrdersWorkbook(orders []models.Order) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, err
	}
	header := sheet.AddRow()
	for _, h := range orderExportHeaders {
		header.AddCell().SetValue(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetValue(o.OrderNumber)
		row.AddCell().SetValue(o.UserID)
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(o.PaymentMethod.Label())
		row.AddCell().SetValue(string(o.PaymentStatus))
		row.AddCell().SetValue(len(o.Items))
		row.AddCell().SetValue(o.TotalAmount.StringFixed(2))
		row.AddCell().SetValue(o.ShippingAddress.Phone)
		row.AddCell().SetValue(o.ShippingAddress.String())
		row.AddCell().SetValue(o.Notes)
		row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(formatOptional(o.DeliveredAt))
		row.AddCell().SetValue(formatOptional(o.CancelledAt))
	}
	return file, nil
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

// GET /admin/orders/export?status=&from=&to=
func ExportOrdersToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.WithContext(c.Request.Context()).Preload("Items").Order("created_at ASC, id ASC")
		if s := c.Query("status"); s != "" {
			status, err := models.ParseOrderStatus(s)
			if err != nil {
				_ = c.Error(err)
				return
			}
			q = q.Where("status = ?", status)
		}
		for param, cond := range map[string]string{"from": "created_at >= ?", "to": "created_at < ?"} {
			if v := c.Query(param); v != "" {
				t, err := time.Parse("2006-01-02", v)
				if err != nil {
					_ = c.Error(apperr.Validation("invalid %s date %q, want YYYY-MM-DD", param, v))
					return
				}
				q = q.Where(cond, t)
			}
		}

		var orders []models.Order
		if err := q.Find(&orders).Error; err != nil {
			_ = c.Error(err)
			return
		}
		file, err := BuildOrdersWorkbook(orders)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", xlsxContentType)
		c.Status(http.StatusOK)
		if err := file.Write(c.Writer); err != nil {
			_ = c.Error(err)
		}
	}
}
