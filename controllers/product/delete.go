package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/params"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
)

// DeleteProduct soft deletes the product and drops it from carts and
// wishlists. Past orders keep their snapshot.
// DELETE /admin/products/:id
func DeleteProduct(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := params.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		err = d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if _, err := findProduct(tx, id, true); err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", id).Delete(&models.WishlistItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Product{}, id).Error
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}
