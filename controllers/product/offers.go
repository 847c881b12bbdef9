package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/params"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
)

type OfferRequest struct {
	Discount int `json:"discount" binding:"required,min=1,max=100"`
}

// GetOffers lists active products currently on sale, deepest discount first.
// GET /offers
func GetOffers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		err := db.WithContext(c.Request.Context()).
			Preload("Categories").
			Where("active = ? AND on_sale = ? AND discount > 0", true, true).
			Order("discount DESC, id ASC").
			Find(&products).Error
		if err != nil {
			_ = c.Error(err)
			return
		}
		if products == nil {
			products = []models.Product{}
		}
		c.JSON(http.StatusOK, products)
	}
}

func setOffer(c *gin.Context, db *gorm.DB, onSale bool, discount int) {
	id, err := params.ID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var product *models.Product
	err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		p, err := findProduct(tx, id, true)
		if err != nil {
			return err
		}
		p.OnSale, p.Discount = onSale, discount
		if err := p.Validate(); err != nil {
			return err
		}
		product = p
		return tx.Model(p).Select("on_sale", "discount").Updates(map[string]any{"on_sale": onSale, "discount": discount}).Error
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// PUT /admin/offers/:id
func StartOffer(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req OfferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}
		setOffer(c, db, true, req.Discount)
	}
}

// DELETE /admin/offers/:id
func EndOffer(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		setOffer(c, db, false, 0)
	}
}
