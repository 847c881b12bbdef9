package auth

import (
	"fmt"

	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
)

const (
	MergeNoGuestCart    = "no-guest-cart"
	MergeGuestCartEmpty = "guest-cart-empty"
	MergeSuccess        = "merged-success"
	MergeFailed         = "merge-failed"
)

// MergeGuestCart folds the guest's cart into the user's cart and removes the
// guest cart. Lines for products that are gone or inactive are dropped.
// Returns the number of lines merged.
func MergeGuestCart(db *gorm.DB, guestID, userID string) (int, error) {
	merged := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		guest, err := models.LoadCart(tx, guestID)
		if err != nil {
			return err
		}
		if guest.ID == 0 || guest.IsEmpty() {
			return nil
		}

		cart, err := models.LoadCart(tx, userID)
		if err != nil {
			return err
		}
		for _, it := range guest.Items {
			if it.Product.ID == 0 || !it.Product.Active {
				continue
			}
			if err := cart.AddItem(it.Product, it.Quantity); err != nil {
				return err
			}
			merged++
		}
		if err := models.SaveCart(tx, cart); err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", guest.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("delete guest cart items: %w", err)
		}
		if err := tx.Delete(&models.Cart{}, guest.ID).Error; err != nil {
			return fmt.Errorf("delete guest cart: %w", err)
		}
		return nil
	})
	return merged, err
}
