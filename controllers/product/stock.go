package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/controllers/params"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
)

type StockAdjustment struct {
	Delta int `json:"delta" binding:"required"`
}

// AdjustStock restocks (positive delta) or writes off (negative delta) units.
// A write-off larger than the stock on hand is refused.
// POST /admin/products/:id/stock
func AdjustStock(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := params.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		var req StockAdjustment
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}

		var stock int
		err = d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			var err error
			switch {
			case req.Delta > 0:
				err = models.IncreaseStock(tx, id, req.Delta)
			case req.Delta < 0:
				err = models.DecreaseStock(tx, id, -req.Delta)
			default:
				err = apperr.Validation("delta must not be zero")
			}
			if err != nil {
				return err
			}
			var p models.Product
			if err := tx.Select("stock").First(&p, id).Error; err != nil {
				return err
			}
			stock = p.Stock
			return nil
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		d.Log.Info("stock adjusted", "product_id", id, "delta", req.Delta, "stock", stock)
		c.JSON(http.StatusOK, gin.H{"productId": id, "stock": stock})
	}
}
