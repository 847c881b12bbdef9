package productcontroller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/params"
	"gorm.io/gorm"
)

// UpdateProductForm only touches the fields that were sent.
type UpdateProductForm struct {
	Name        *string `form:"name"`
	Description *string `form:"description"`
	Price       *string `form:"price"`
	OnSale      *bool   `form:"on_sale"`
	Discount    *int    `form:"discount"`
	Stock       *int    `form:"stock"`
	Active      *bool   `form:"active"`
	CategoryIDs *string `form:"category_ids"`
}

// PUT /admin/products/:id
func UpdateProduct(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := params.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		var form UpdateProductForm
		if err := c.ShouldBind(&form); err != nil {
			_ = c.Error(err)
			return
		}

		key, url, err := d.optionalImage(c, productImagePrefix)
		if err != nil {
			_ = c.Error(err)
			return
		}

		var oldKey string
		var updated any
		err = d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			p, err := findProduct(tx, id, true)
			if err != nil {
				return err
			}
			if form.Name != nil {
				p.Name = strings.TrimSpace(*form.Name)
			}
			if form.Description != nil {
				p.Description = strings.TrimSpace(*form.Description)
			}
			if form.Price != nil {
				if p.Price, err = parsePrice(*form.Price); err != nil {
					return err
				}
			}
			if form.OnSale != nil {
				p.OnSale = *form.OnSale
			}
			if form.Discount != nil {
				p.Discount = *form.Discount
			}
			if form.Stock != nil {
				p.Stock = *form.Stock
			}
			if form.Active != nil {
				p.Active = *form.Active
			}
			if err := p.Validate(); err != nil {
				return err
			}
			if key != "" {
				oldKey = p.ImageKey
				p.Image, p.ImageKey = url, key
			}
			if err := tx.Omit("Categories").Save(p).Error; err != nil {
				return err
			}
			if form.CategoryIDs != nil {
				ids, err := parseIDs(*form.CategoryIDs)
				if err != nil {
					return err
				}
				cats, err := loadCategories(tx, ids)
				if err != nil {
					return err
				}
				if err := tx.Model(p).Association("Categories").Replace(cats); err != nil {
					return err
				}
				p.Categories = cats
			}
			updated = p
			return nil
		})
		if err != nil {
			d.dropImage(c.Request.Context(), key)
			_ = c.Error(err)
			return
		}
		d.dropImage(c.Request.Context(), oldKey)
		c.JSON(http.StatusOK, updated)
	}
}
