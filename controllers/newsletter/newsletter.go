// Package newsletterControllers runs the double opt-in newsletter flow.
package newsletterControllers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/controllers/params"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Deps struct {
	DB        *gorm.DB
	Mailer    mailer.Mailer
	Log       *logger.Logger
	BaseURL   string
	StoreName string
	TokenTTL  time.Duration
	Now       func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Email is checked after normalizeEmail so padded input is accepted.
type SubscribeRequest struct {
	Email       string                        `json:"email" binding:"required"`
	Preferences *models.NewsletterPreferences `json:"preferences"`
}

type UnsubscribeRequest struct {
	Token string `json:"token" binding:"required"`
}

// newToken returns 32 random bytes, hex encoded.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

var validate = validator.New()

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func validEmail(e string) error {
	if err := validate.Var(e, "required,email"); err != nil {
		return apperr.Validation("%q is not a valid email address", e)
	}
	return nil
}

// Subscribe stores (or refreshes) a pending sign-up and mails the
// confirmation link. A second request for the same email replaces the token.
func Subscribe(ctx context.Context, d Deps, email string, prefs models.NewsletterPreferences) (*models.PendingSubscriber, error) {
	email = normalizeEmail(email)
	if err := validEmail(email); err != nil {
		return nil, err
	}
	db := d.DB.WithContext(ctx)

	var active int64
	if err := db.Model(&models.Subscriber{}).Where("email = ? AND active = ?", email, true).Count(&active).Error; err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, apperr.Conflict("%s is already subscribed", email)
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	pending := &models.PendingSubscriber{
		Email:       email,
		Token:       token,
		Preferences: prefs,
		ExpiresAt:   d.now().Add(d.TokenTTL),
	}
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"token", "expires_at", "pref_new_products", "pref_offers", "pref_announcements",
		}),
	}).Create(pending).Error
	if err != nil {
		return nil, err
	}

	link := strings.TrimRight(d.BaseURL, "/") + "/newsletter/confirm?token=" + url.QueryEscape(token)
	_, err = d.Mailer.Send(ctx, mailer.Message{
		To:      []mailer.Address{{Email: email}},
		Subject: fmt.Sprintf("Confirm your %s newsletter subscription", d.StoreName),
		Text: fmt.Sprintf("Thanks for signing up to the %s newsletter.\n\nConfirm your subscription:\n%s\n\nThis link expires in %s. If you did not sign up, ignore this email.",
			d.StoreName, link, d.TokenTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("send confirmation to %s: %w", email, err)
	}
	return pending, nil
}

// Confirm promotes a pending sign-up to an active subscriber.
func Confirm(ctx context.Context, d Deps, token string) (*models.Subscriber, error) {
	var sub *models.Subscriber
	var expired bool
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending models.PendingSubscriber
		err := tx.Where("token = ?", token).First(&pending).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("confirmation token not found")
		}
		if err != nil {
			return err
		}
		if err := tx.Delete(&pending).Error; err != nil {
			return err
		}
		if pending.Expired(d.now()) {
			expired = true
			return nil
		}

		unsubscribe, err := newToken()
		if err != nil {
			return err
		}
		var s models.Subscriber
		err = tx.Where("email = ?", pending.Email).First(&s).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		s.Email = pending.Email
		s.Preferences = pending.Preferences
		s.Active = true
		s.ConfirmedAt = d.now()
		s.UnsubscribeToken = unsubscribe
		if err := tx.Save(&s).Error; err != nil {
			return err
		}
		sub = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, apperr.Validation("confirmation link has expired, please subscribe again")
	}
	return sub, nil
}

// POST /newsletter/subscribe
func SubscribeHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SubscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}
		prefs := models.DefaultNewsletterPreferences()
		if req.Preferences != nil {
			prefs = *req.Preferences
		}
		pending, err := Subscribe(c.Request.Context(), d, req.Email, prefs)
		if err != nil {
			_ = c.Error(err)
			return
		}
		d.Log.Info("newsletter sign-up pending", "email", pending.Email)
		c.JSON(http.StatusAccepted, gin.H{
			"message":   "Check your inbox to confirm your subscription",
			"expiresAt": pending.ExpiresAt,
		})
	}
}

// GET /newsletter/confirm?token=
func ConfirmHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			_ = c.Error(apperr.Validation("token is required"))
			return
		}
		sub, err := Confirm(c.Request.Context(), d, token)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":          "Subscription confirmed",
			"subscriber":       sub,
			"unsubscribeToken": sub.UnsubscribeToken,
		})
	}
}

// POST /newsletter/unsubscribe
func UnsubscribeHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UnsubscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			return
		}
		res := d.DB.WithContext(c.Request.Context()).
			Model(&models.Subscriber{}).
			Where("unsubscribe_token = ? AND active = ?", req.Token, true).
			Update("active", false)
		if res.Error != nil {
			_ = c.Error(res.Error)
			return
		}
		if res.RowsAffected == 0 {
			_ = c.Error(apperr.NotFound("subscription not found"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "You have been unsubscribed"})
	}
}

func subscriberQuery(c *gin.Context, db *gorm.DB) (*gorm.DB, error) {
	q := db.Model(&models.Subscriber{})
	if v := c.Query("active"); v != "" {
		switch v {
		case "true":
			q = q.Where("active = ?", true)
		case "false":
			q = q.Where("active = ?", false)
		default:
			return nil, apperr.Validation("invalid active %q", v)
		}
	}
	if s := strings.TrimSpace(c.Query("search")); s != "" {
		q = q.Where("email LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	return q, nil
}

// GET /admin/newsletter/subscribers
func GetSubscribers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := params.Pagination(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		q, err := subscriberQuery(c, db.WithContext(c.Request.Context()))
		if err != nil {
			_ = c.Error(err)
			return
		}
		var total int64
		if err := q.Count(&total).Error; err != nil {
			_ = c.Error(err)
			return
		}
		var subs []models.Subscriber
		if err := q.Order("created_at DESC, id DESC").Limit(page.Limit).Offset(page.Offset()).Find(&subs).Error; err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, params.NewPaged(subs, page, total))
	}
}

// DELETE /admin/newsletter/subscribers/:id
func DeleteSubscriber(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := params.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		res := db.WithContext(c.Request.Context()).Delete(&models.Subscriber{}, id)
		if res.Error != nil {
			_ = c.Error(res.Error)
			return
		}
		if res.RowsAffected == 0 {
			_ = c.Error(apperr.NotFound("subscriber %d not found", id))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Subscriber deleted"})
	}
}
