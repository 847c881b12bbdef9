package adminController

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/controllers/params"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/storage"
	"gorm.io/gorm"
)

const announcementImagePrefix = "announcements"

// broadcastBatch caps recipients per provider call.
const broadcastBatch = 500

// AnnouncementForm is multipart so an image can ride along. Times are RFC 3339.
type AnnouncementForm struct {
	Title    *string `form:"title"`
	Body     *string `form:"body"`
	Active   *bool   `form:"active"`
	StartsAt *string `form:"starts_at"`
	EndsAt   *string `form:"ends_at"`
}

func parseWindowTime(name, v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, apperr.Validation("invalid %s %q, expected RFC 3339", name, v)
	}
	return &t, nil
}

func (f AnnouncementForm) apply(a *models.Announcement) error {
	var err error
	if f.Title != nil {
		a.Title = strings.TrimSpace(*f.Title)
	}
	if f.Body != nil {
		a.Body = strings.TrimSpace(*f.Body)
	}
	if f.Active != nil {
		a.Active = *f.Active
	}
	if f.StartsAt != nil {
		if a.StartsAt, err = parseWindowTime("starts_at", *f.StartsAt); err != nil {
			return err
		}
	}
	if f.EndsAt != nil {
		if a.EndsAt, err = parseWindowTime("ends_at", *f.EndsAt); err != nil {
			return err
		}
	}
	if a.Title == "" {
		return apperr.Validation("title is required")
	}
	if a.StartsAt != nil && a.EndsAt != nil && !a.EndsAt.After(*a.StartsAt) {
		return apperr.Validation("ends_at must be after starts_at")
	}
	return nil
}

func (d Deps) announcementImage(c *gin.Context) (key, url string, err error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", "", nil
	}
	if err != nil {
		return "", "", apperr.Validation("invalid image upload: %v", err)
	}
	return storage.PutImage(c.Request.Context(), d.Store, announcementImagePrefix, fh)
}

func (d Deps) dropImage(c *gin.Context, key string) {
	if key == "" {
		return
	}
	if err := d.Store.Delete(c.Request.Context(), key); err != nil {
		d.Log.Warn("failed to delete announcement image", "key", key, "error", err)
	}
}

func findAnnouncement(db *gorm.DB, id uint) (*models.Announcement, error) {
	var a models.Announcement
	err := db.First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("announcement %d not found", id)
	}
	return &a, err
}

// GetActiveAnnouncements lists announcements live right now.
// GET /announcements
func GetActiveAnnouncements(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := models.ActiveAnnouncements(d.DB.WithContext(c.Request.Context()), d.now())
		if err != nil {
			_ = c.Error(err)
			return
		}
		if list == nil {
			list = []models.Announcement{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /admin/announcements
func GetAnnouncements(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		list := []models.Announcement{}
		if err := d.DB.WithContext(c.Request.Context()).Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// POST /admin/announcements
func CreateAnnouncement(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form AnnouncementForm
		if err := c.ShouldBind(&form); err != nil {
			_ = c.Error(err)
			return
		}
		a := models.Announcement{Active: true}
		if err := form.apply(&a); err != nil {
			_ = c.Error(err)
			return
		}
		key, url, err := d.announcementImage(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		a.Image, a.ImageKey = url, key
		if err := d.DB.WithContext(c.Request.Context()).Create(&a).Error; err != nil {
			d.dropImage(c, key)
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, a)
	}
}

// PUT /admin/announcements/:id
func UpdateAnnouncement(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := params.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		var form AnnouncementForm
		if err := c.ShouldBind(&form); err != nil {
			_ = c.Error(err)
			return
		}
		db := d.DB.WithContext(c.Request.Context())
		a, err := findAnnouncement(db, id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if err := form.apply(a); err != nil {
			_ = c.Error(err)
			return
		}
		key, url, err := d.announcementImage(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		oldKey := ""
		if key != "" {
			oldKey = a.ImageKey
			a.Image, a.ImageKey = url, key
		}
		if err := db.Save(a).Error; err != nil {
			d.dropImage(c, key)
			_ = c.Error(err)
			return
		}
		d.dropImage(c, oldKey)
		c.JSON(http.StatusOK, a)
	}
}

// DELETE /admin/announcements/:id
func DeleteAnnouncement(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := params.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		db := d.DB.WithContext(c.Request.Context())
		a, err := findAnnouncement(db, id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if err := db.Delete(a).Error; err != nil {
			_ = c.Error(err)
			return
		}
		d.dropImage(c, a.ImageKey)
		c.JSON(http.StatusOK, gin.H{"message": "Announcement deleted"})
	}
}

// BroadcastAnnouncement mails an announcement to every active subscriber who
// opted into announcements, in batches.
// POST /admin/announcements/:id/broadcast
func BroadcastAnnouncement(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := params.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		ctx := c.Request.Context()
		db := d.DB.WithContext(ctx)
		a, err := findAnnouncement(db, id)
		if err != nil {
			_ = c.Error(err)
			return
		}

		var emails []string
		err = db.Model(&models.Subscriber{}).
			Where("active = ? AND pref_announcements = ?", true, true).
			Order("id ASC").
			Pluck("email", &emails).Error
		if err != nil {
			_ = c.Error(err)
			return
		}

		sent := 0
		for start := 0; start < len(emails); start += broadcastBatch {
			end := min(start+broadcastBatch, len(emails))
			to := make([]mailer.Address, 0, end-start)
			for _, e := range emails[start:end] {
				to = append(to, mailer.Address{Email: e})
			}
			msg := mailer.Message{
				To:      to,
				Subject: fmt.Sprintf("%s: %s", d.StoreName, a.Title),
				Text:    a.Body,
			}
			if _, err := d.Mailer.Send(ctx, msg); err != nil {
				d.Log.Error("announcement broadcast failed", "announcement_id", a.ID, "sent", sent, "error", err)
				_ = c.Error(fmt.Errorf("broadcast announcement %d: %w", a.ID, err))
				return
			}
			sent += len(to)
		}
		d.Log.Info("announcement broadcast", "announcement_id", a.ID, "recipients", sent)
		c.JSON(http.StatusOK, gin.H{"message": "Announcement sent", "recipients": sent})
	}
}
