package productcontroller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/controllers/params"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
)

type CategoryForm struct {
	Name        string `form:"name" binding:"required"`
	Description string `form:"description"`
}

// CategoryView adds the number of active products to a category.
type CategoryView struct {
	models.Category
	ProductCount int64 `json:"productCount"`
}

// GET /categories
func GetCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tx := db.WithContext(c.Request.Context())
		var cats []models.Category
		if err := tx.Order("name ASC").Find(&cats).Error; err != nil {
			_ = c.Error(err)
			return
		}

		var counts []struct {
			CategoryID uint
			N          int64
		}
		err := tx.Table("product_categories pc").
			Select("pc.category_id, COUNT(*) AS n").
			Joins("JOIN products ON products.id = pc.product_id").
			Where("products.active = ? AND products.deleted_at IS NULL", true).
			Group("pc.category_id").
			Scan(&counts).Error
		if err != nil {
			_ = c.Error(err)
			return
		}
		byID := make(map[uint]int64, len(counts))
		for _, row := range counts {
			byID[row.CategoryID] = row.N
		}

		out := make([]CategoryView, 0, len(cats))
		for _, cat := range cats {
			out = append(out, CategoryView{Category: cat, ProductCount: byID[cat.ID]})
		}
		c.JSON(http.StatusOK, out)
	}
}

// POST /admin/categories
func CreateCategory(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form CategoryForm
		if err := c.ShouldBind(&form); err != nil {
			_ = c.Error(err)
			return
		}
		name := strings.TrimSpace(form.Name)
		if name == "" {
			_ = c.Error(apperr.Validation("category name is required"))
			return
		}

		key, url, err := d.optionalImage(c, categoryImagePrefix)
		if err != nil {
			_ = c.Error(err)
			return
		}
		category := models.Category{
			Name:        name,
			Description: strings.TrimSpace(form.Description),
			Image:       url,
			ImageKey:    key,
		}
		if err := d.DB.WithContext(c.Request.Context()).Create(&category).Error; err != nil {
			d.dropImage(c.Request.Context(), key)
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				err = apperr.Conflict("category %q already exists", name)
			}
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

func findCategory(tx *gorm.DB, id uint) (*models.Category, error) {
	var cat models.Category
	err := tx.First(&cat, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("category %d not found", id)
	}
	return &cat, err
}

// PUT /admin/categories/:id
func UpdateCategory(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := params.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		var form struct {
			Name        *string `form:"name"`
			Description *string `form:"description"`
		}
		if err := c.ShouldBind(&form); err != nil {
			_ = c.Error(err)
			return
		}
		cat, err := findCategory(d.DB.WithContext(c.Request.Context()), id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if form.Name != nil {
			if cat.Name = strings.TrimSpace(*form.Name); cat.Name == "" {
				_ = c.Error(apperr.Validation("category name is required"))
				return
			}
		}
		if form.Description != nil {
			cat.Description = strings.TrimSpace(*form.Description)
		}

		key, url, err := d.optionalImage(c, categoryImagePrefix)
		if err != nil {
			_ = c.Error(err)
			return
		}
		oldKey := ""
		if key != "" {
			oldKey = cat.ImageKey
			cat.Image, cat.ImageKey = url, key
		}
		if err := d.DB.WithContext(c.Request.Context()).Omit("Products").Save(cat).Error; err != nil {
			d.dropImage(c.Request.Context(), key)
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				err = apperr.Conflict("category %q already exists", cat.Name)
			}
			_ = c.Error(err)
			return
		}
		d.dropImage(c.Request.Context(), oldKey)
		c.JSON(http.StatusOK, cat)
	}
}

// DELETE /admin/categories/:id
// Products stay; they just lose the category.
func DeleteCategory(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := params.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		var cat *models.Category
		err = d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if cat, err = findCategory(tx, id); err != nil {
				return err
			}
			if err := tx.Model(cat).Association("Products").Clear(); err != nil {
				return err
			}
			return tx.Delete(cat).Error
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		d.dropImage(c.Request.Context(), cat.ImageKey)
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
	}
}
