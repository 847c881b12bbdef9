// Package qrcontroller manages the QR images customers scan to pay by a
// manual method.
package qrcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/storage"
	"gorm.io/gorm"
)

const qrPrefix = "qrfiles"

type Deps struct {
	DB    *gorm.DB
	Store storage.Store
	Log   *logger.Logger
}

// PaymentMethodView is one checkout option as shown to customers.
type PaymentMethodView struct {
	Method models.PaymentMethod `json:"method"`
	Label  string               `json:"label"`
	QRURL  string               `json:"qrUrl,omitempty"`
}

func methodParam(c *gin.Context) (models.PaymentMethod, error) {
	m := models.PaymentMethod(c.Param("method"))
	if !m.Valid() {
		return "", apperr.Validation("unknown payment method %q", c.Param("method"))
	}
	return m, nil
}

// GetPaymentMethods lists every payment method with its QR image, if any.
// GET /payment-methods
func GetPaymentMethods(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		qrs, err := models.GetPaymentQRs(db.WithContext(c.Request.Context()))
		if err != nil {
			_ = c.Error(err)
			return
		}
		urls := make(map[models.PaymentMethod]string, len(qrs))
		for _, q := range qrs {
			urls[q.Method] = q.FileURL
		}
		out := make([]PaymentMethodView, 0, len(models.PaymentMethods))
		for _, m := range models.PaymentMethods {
			out = append(out, PaymentMethodView{Method: m, Label: m.Label(), QRURL: urls[m]})
		}
		c.JSON(http.StatusOK, out)
	}
}

// UploadPaymentQR stores the "file" upload as the QR for a method, replacing
// any previous one.
// POST /admin/payment-methods/:method/qr
func UploadPaymentQR(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		method, err := methodParam(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		fh, err := c.FormFile("file")
		if err != nil {
			_ = c.Error(apperr.Validation("no file uploaded"))
			return
		}
		key, url, err := storage.PutImage(c.Request.Context(), d.Store, qrPrefix, fh)
		if err != nil {
			_ = c.Error(err)
			return
		}

		db := d.DB.WithContext(c.Request.Context())
		var previous models.PaymentQR
		hadPrevious := db.Where("method = ?", method).Limit(1).Find(&previous).RowsAffected > 0

		qr, err := models.SavePaymentQR(db, method, key, url)
		if err != nil {
			if derr := d.Store.Delete(c.Request.Context(), key); derr != nil {
				d.Log.Warn("failed to delete orphaned QR upload", "key", key, "error", derr)
			}
			_ = c.Error(err)
			return
		}
		if hadPrevious && previous.FileKey != key {
			if err := d.Store.Delete(c.Request.Context(), previous.FileKey); err != nil {
				d.Log.Warn("failed to delete replaced QR", "key", previous.FileKey, "error", err)
			}
		}
		d.Log.Info("payment QR uploaded", "method", method, "url", url)
		c.JSON(http.StatusOK, gin.H{"message": "File uploaded successfully", "qr": qr})
	}
}
