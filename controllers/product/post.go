package productcontroller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
)

type CreateProductForm struct {
	Name        string `form:"name" binding:"required"`
	Description string `form:"description"`
	Price       string `form:"price" binding:"required"`
	OnSale      bool   `form:"on_sale"`
	Discount    int    `form:"discount" binding:"min=0,max=100"`
	Stock       int    `form:"stock" binding:"min=0"`
	Active      *bool  `form:"active"`
	CategoryIDs string `form:"category_ids"`
}

// CreateProduct creates a product from a multipart form with an optional image.
// POST /admin/products
func CreateProduct(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form CreateProductForm
		if err := c.ShouldBind(&form); err != nil {
			_ = c.Error(err)
			return
		}
		price, err := parsePrice(form.Price)
		if err != nil {
			_ = c.Error(err)
			return
		}
		ids, err := parseIDs(form.CategoryIDs)
		if err != nil {
			_ = c.Error(err)
			return
		}

		p := models.Product{
			Name:        strings.TrimSpace(form.Name),
			Description: strings.TrimSpace(form.Description),
			Price:       price,
			OnSale:      form.OnSale,
			Discount:    form.Discount,
			Stock:       form.Stock,
			Active:      form.Active == nil || *form.Active,
		}
		if err := p.Validate(); err != nil {
			_ = c.Error(err)
			return
		}

		key, url, err := d.optionalImage(c, productImagePrefix)
		if err != nil {
			_ = c.Error(err)
			return
		}
		p.Image, p.ImageKey = url, key

		err = d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			cats, err := loadCategories(tx, ids)
			if err != nil {
				return err
			}
			p.Categories = cats
			return tx.Create(&p).Error
		})
		if err != nil {
			d.dropImage(c.Request.Context(), key)
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}
