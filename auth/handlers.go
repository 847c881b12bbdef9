package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
)

type loginRequest struct {
	IDToken    string `json:"idToken" binding:"required"`
	GuestToken string `json:"guestToken"`
}

// UserLogin verifies the identity token, upserts the customer and merges any
// guest cart the caller was using.
// POST /auth/login
func UserLogin(db *gorm.DB, verifier Verifier, tokens *Tokens, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}

		id, err := verifier.Verify(c.Request.Context(), req.IDToken)
		if err != nil {
			log.Warn("identity token rejected", "error", err)
			_ = c.Error(apperr.Unauthorized("invalid identity token"))
			return
		}

		user, err := upsertUser(db, id)
		if err != nil {
			_ = c.Error(err)
			return
		}

		mergeStatus := MergeNoGuestCart
		if req.GuestToken != "" {
			guest, err := tokens.Parse(req.GuestToken)
			switch {
			case err != nil || guest.Role != RoleGuest:
				mergeStatus = MergeFailed
			default:
				n, err := MergeGuestCart(db, guest.UserID, user.ID)
				switch {
				case err != nil:
					log.Error("guest cart merge failed", "guest_id", guest.UserID, "user_id", user.ID, "error", err)
					mergeStatus = MergeFailed
				case n == 0:
					mergeStatus = MergeGuestCartEmpty
				default:
					mergeStatus = MergeSuccess
				}
			}
		}

		token, err := tokens.Issue(user.ID, user.Email, RoleUser, user.Name, user.Picture)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":     "Login successful",
			"token":       token,
			"user":        user,
			"mergeStatus": mergeStatus,
		})
	}
}

func upsertUser(db *gorm.DB, id *Identity) (*models.User, error) {
	var user models.User
	err := db.Where("id = ?", id.UID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ID:       id.UID,
			Email:    id.Email,
			Name:     id.Name,
			Picture:  id.Picture,
			Provider: "google",
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}
	if err := db.Model(&user).Updates(models.User{Email: id.Email, Name: id.Name, Picture: id.Picture}).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GuestLogin starts an anonymous session that can hold a cart.
// POST /auth/guest
func GuestLogin(db *gorm.DB, tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		guest := models.GuestUser{
			ID:        "guest_" + uuid.NewString(),
			ExpiresAt: time.Now().Add(tokens.GuestTTL()),
		}
		if err := db.Create(&guest).Error; err != nil {
			_ = c.Error(err)
			return
		}
		token, err := tokens.Issue(guest.ID, "", RoleGuest, "", "")
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"token":     token,
			"guestId":   guest.ID,
			"expiresAt": guest.ExpiresAt,
		})
	}
}

// AdminLogin signs in store staff. Unknown emails are registered as pending
// and must be approved by the super admin.
// POST /auth/admin
func AdminLogin(db *gorm.DB, verifier Verifier, tokens *Tokens, superAdminEmail string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			IDToken string `json:"idToken" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}

		id, err := verifier.Verify(c.Request.Context(), req.IDToken)
		if err != nil {
			log.Warn("admin identity token rejected", "error", err)
			_ = c.Error(apperr.Unauthorized("invalid identity token"))
			return
		}

		if superAdminEmail != "" && strings.EqualFold(id.Email, superAdminEmail) {
			respondWithToken(c, tokens, id, RoleSuperAdmin)
			return
		}

		var admin models.Admin
		err = db.Where("email = ?", id.Email).First(&admin).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			admin = models.Admin{Email: id.Email, Name: id.Name, Picture: id.Picture}
			if err := db.Create(&admin).Error; err != nil {
				_ = c.Error(err)
				return
			}
			log.Info("admin registered, pending approval", "email", id.Email)
			_ = c.Error(apperr.Forbidden("pending approval by super admin"))
			return
		}
		if err != nil {
			_ = c.Error(err)
			return
		}

		if err := db.Model(&admin).Updates(models.Admin{Name: id.Name, Picture: id.Picture}).Error; err != nil {
			_ = c.Error(err)
			return
		}
		if !admin.Approved {
			_ = c.Error(apperr.Forbidden("pending approval by super admin"))
			return
		}
		respondWithToken(c, tokens, id, RoleAdmin)
	}
}

func respondWithToken(c *gin.Context, tokens *Tokens, id *Identity, role string) {
	token, err := tokens.Issue(id.UID, id.Email, role, id.Name, id.Picture)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"role":    role,
		"email":   id.Email,
		"name":    id.Name,
		"picture": id.Picture,
	})
}
