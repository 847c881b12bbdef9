package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/controllers/params"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
)

var sortColumns = map[string]string{
	"created_at": "products.created_at",
	"price":      "products.price",
	"name":       "products.name",
	"stock":      "products.stock",
	"discount":   "products.discount",
}

// productFilter narrows a product query from the request's query string.
func productFilter(c *gin.Context, q *gorm.DB, includeInactive bool) (*gorm.DB, error) {
	if !includeInactive {
		q = q.Where("products.active = ?", true)
	} else if v := c.Query("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return nil, apperr.Validation("invalid active %q", v)
		}
		q = q.Where("products.active = ?", active)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", like, like)
	}
	if v := c.Query("category_id"); v != "" {
		cid, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, apperr.Validation("invalid category_id %q", v)
		}
		q = q.Where("products.id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).Table("product_categories").Select("product_id").Where("category_id = ?", cid))
	}
	if v := c.Query("on_sale"); v != "" {
		onSale, err := strconv.ParseBool(v)
		if err != nil {
			return nil, apperr.Validation("invalid on_sale %q", v)
		}
		if onSale {
			q = q.Where("products.on_sale = ? AND products.discount > 0", true)
		} else {
			q = q.Where("products.on_sale = ? OR products.discount = 0", false)
		}
	}
	for param, cond := range map[string]string{"min_price": "products.price >= ?", "max_price": "products.price <= ?"} {
		if v := c.Query(param); v != "" {
			p, err := parsePrice(v)
			if err != nil {
				return nil, apperr.Validation("invalid %s %q", param, v)
			}
			q = q.Where(cond, p)
		}
	}
	return q, nil
}

func productOrder(c *gin.Context) (string, error) {
	col, ok := sortColumns[c.DefaultQuery("sort_by", "created_at")]
	if !ok {
		return "", apperr.Validation("invalid sort_by %q", c.Query("sort_by"))
	}
	dir := strings.ToLower(c.DefaultQuery("order", "desc"))
	if dir != "asc" && dir != "desc" {
		dir = "desc"
	}
	return col + " " + dir + ", products.id " + dir, nil
}

// GetProducts lists products with search, category, sale and price filters.
// GET /products, GET /admin/products
func GetProducts(db *gorm.DB, includeInactive bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := params.Pagination(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		order, err := productOrder(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		q, err := productFilter(c, db.WithContext(c.Request.Context()).Model(&models.Product{}), includeInactive)
		if err != nil {
			_ = c.Error(err)
			return
		}

		var total int64
		if err := q.Count(&total).Error; err != nil {
			_ = c.Error(err)
			return
		}
		var products []models.Product
		err = q.Preload("Categories").Order(order).Limit(page.Limit).Offset(page.Offset()).Find(&products).Error
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, params.NewPaged(products, page, total))
	}
}

// GET /products/:id, GET /admin/products/:id
func GetProductByID(db *gorm.DB, includeInactive bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := params.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		p, err := findProduct(db.WithContext(c.Request.Context()), id, includeInactive)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
