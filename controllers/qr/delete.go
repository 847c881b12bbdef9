package qrcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
)

// DELETE /admin/payment-methods/:method/qr
func DeletePaymentQR(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		method, err := methodParam(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		db := d.DB.WithContext(c.Request.Context())
		var qr models.PaymentQR
		err = db.Where("method = ?", method).First(&qr).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = c.Error(apperr.NotFound("no QR uploaded for %s", method))
			return
		}
		if err != nil {
			_ = c.Error(err)
			return
		}
		if err := db.Delete(&qr).Error; err != nil {
			_ = c.Error(err)
			return
		}
		if err := d.Store.Delete(c.Request.Context(), qr.FileKey); err != nil {
			d.Log.Warn("failed to delete QR file", "key", qr.FileKey, "error", err)
		}
		d.Log.Info("payment QR deleted", "method", method)
		c.JSON(http.StatusOK, gin.H{"message": "QR file deleted successfully"})
	}
}
