package productcontroller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	productImagePrefix  = "products"
	categoryImagePrefix = "categories"
)

// Deps are shared by the catalog handlers.
type Deps struct {
	DB    *gorm.DB
	Store storage.Store
	Log   *logger.Logger
}

// optionalImage stores the "image" form file when one was sent.
func (d Deps) optionalImage(c *gin.Context, prefix string) (key, url string, err error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", "", nil
	}
	if err != nil {
		return "", "", apperr.Validation("invalid image upload: %v", err)
	}
	return storage.PutImage(c.Request.Context(), d.Store, prefix, fh)
}

// dropImage removes a replaced upload; failures only leave an orphan file.
func (d Deps) dropImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := d.Store.Delete(ctx, key); err != nil {
		d.Log.Warn("failed to delete image", "key", key, "error", err)
	}
}

func parsePrice(v string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Zero, apperr.Validation("invalid price %q", v)
	}
	return p.Round(2), nil
}

// parseIDs reads a comma separated id list such as "1, 4,7".
func parseIDs(v string) ([]uint, error) {
	var ids []uint
	for _, tok := range strings.Split(v, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id, err := strconv.ParseUint(tok, 10, 64)
		if err != nil || id == 0 {
			return nil, apperr.Validation("invalid category id %q", tok)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// loadCategories resolves ids, failing on any unknown one.
func loadCategories(tx *gorm.DB, ids []uint) ([]models.Category, error) {
	if len(ids) == 0 {
		return []models.Category{}, nil
	}
	var cats []models.Category
	if err := tx.Where("id IN ?", ids).Find(&cats).Error; err != nil {
		return nil, err
	}
	if len(cats) != len(uniq(ids)) {
		return nil, apperr.NotFound("one or more categories do not exist")
	}
	return cats, nil
}

func uniq(ids []uint) map[uint]struct{} {
	m := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

// findProduct loads a product; inactive ones only when includeInactive.
func findProduct(tx *gorm.DB, id uint, includeInactive bool) (*models.Product, error) {
	q := tx.Preload("Categories").Where("id = ?", id)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	var p models.Product
	err := q.First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

