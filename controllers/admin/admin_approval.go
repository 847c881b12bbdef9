package adminController

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
)

type AdminEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// GET /admin/admins
func GetAllAdmins(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		admins := []models.Admin{}
		if err := db.WithContext(c.Request.Context()).Order("created_at ASC, id ASC").Find(&admins).Error; err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, admins)
	}
}

// ListPendingAdmins returns all admins awaiting approval.
// GET /admin/admins/pending
func ListPendingAdmins(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending := []models.Admin{}
		if err := db.WithContext(c.Request.Context()).Where("approved = ?", false).Order("created_at ASC, id ASC").Find(&pending).Error; err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, pending)
	}
}

func findAdmin(db *gorm.DB, email string) (*models.Admin, error) {
	var admin models.Admin
	err := db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("admin %s not found", email)
	}
	return &admin, err
}

// POST /admin/admins/approve
func ApproveAdmin(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AdminEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}
		db := d.DB.WithContext(c.Request.Context())
		admin, err := findAdmin(db, req.Email)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if admin.Approved {
			_ = c.Error(apperr.Conflict("admin %s is already approved", admin.Email))
			return
		}
		if err := db.Model(admin).Update("approved", true).Error; err != nil {
			_ = c.Error(err)
			return
		}
		d.Log.Info("admin approved", "email", admin.Email, "by", middleware.Actor(c))
		c.JSON(http.StatusOK, gin.H{"message": "Admin approved", "admin": admin})
	}
}

// RejectAdmin removes a pending registration. Approved admins are revoked the same way.
// POST /admin/admins/reject
func RejectAdmin(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AdminEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}
		db := d.DB.WithContext(c.Request.Context())
		admin, err := findAdmin(db, req.Email)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if err := db.Delete(admin).Error; err != nil {
			_ = c.Error(err)
			return
		}
		d.Log.Info("admin rejected", "email", admin.Email, "by", middleware.Actor(c))
		c.JSON(http.StatusOK, gin.H{"message": "Admin rejected"})
	}
}
