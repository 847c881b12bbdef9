package wishlistControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	cartControllers "github.com/junaidrashid-git/storefront-api/controllers/cart"
	"github.com/junaidrashid-git/storefront-api/controllers/params"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
)

type AddWishlistInput struct {
	ProductID uint `json:"productId" binding:"required"`
}

type MoveToCartInput struct {
	Quantity int `json:"quantity" binding:"omitempty,min=1"`
}

func list(db *gorm.DB, userID string) ([]models.WishlistItem, error) {
	items := []models.WishlistItem{}
	err := db.Preload("Product").
		Joins("JOIN products ON products.id = wishlist_items.product_id AND products.deleted_at IS NULL").
		Where("wishlist_items.user_id = ?", userID).
		Order("wishlist_items.added_at DESC, wishlist_items.id DESC").
		Find(&items).Error
	return items, err
}

// GET /user/wishlist
func GetWishlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := list(db.WithContext(c.Request.Context()), middleware.UserID(c))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// AddToWishlist is idempotent: adding a product twice keeps one entry.
// POST /user/wishlist
func AddToWishlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AddWishlistInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(err)
			return
		}
		userID := middleware.UserID(c)
		tx := db.WithContext(c.Request.Context())
		if _, err := cartControllers.LoadProduct(tx, input.ProductID); err != nil {
			_ = c.Error(err)
			return
		}

		item := models.WishlistItem{UserID: userID, ProductID: input.ProductID, AddedAt: time.Now()}
		status := http.StatusCreated
		if err := tx.Create(&item).Error; err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				_ = c.Error(err)
				return
			}
			status = http.StatusOK
		}

		items, err := list(tx, userID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(status, items)
	}
}

// DELETE /user/wishlist/:product_id
func RemoveFromWishlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := params.ID(c, "product_id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		userID := middleware.UserID(c)
		tx := db.WithContext(c.Request.Context())
		res := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.WishlistItem{})
		if res.Error != nil {
			_ = c.Error(res.Error)
			return
		}
		if res.RowsAffected == 0 {
			_ = c.Error(apperr.NotFound("product %d is not in the wishlist", productID))
			return
		}
		items, err := list(tx, userID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// MoveToCart adds a wishlisted product to the cart and drops it from the
// wishlist. The wishlist entry stays if the cart rejects the item.
// POST /user/wishlist/:product_id/move-to-cart
func MoveToCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := params.ID(c, "product_id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		var input MoveToCartInput
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&input); err != nil {
				_ = c.Error(err)
				return
			}
		}
		if input.Quantity == 0 {
			input.Quantity = 1
		}
		userID := middleware.UserID(c)
		ctx := c.Request.Context()

		var count int64
		err = db.WithContext(ctx).Model(&models.WishlistItem{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Count(&count).Error
		if err != nil {
			_ = c.Error(err)
			return
		}
		if count == 0 {
			_ = c.Error(apperr.NotFound("product %d is not in the wishlist", productID))
			return
		}

		cart, err := cartControllers.AddItem(ctx, db, userID, productID, input.Quantity)
		if err != nil {
			_ = c.Error(err)
			return
		}
		err = db.WithContext(ctx).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Delete(&models.WishlistItem{}).Error
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, cartControllers.NewView(cart))
	}
}
