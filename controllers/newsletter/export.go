package newsletterControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// BuildSubscribersWorkbook lays subscribers out one per row.
func BuildSubscribersWorkbook(subs []models.Subscriber) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Subscribers")
	if err != nil {
		return nil, err
	}
	header := sheet.AddRow()
	for _, h := range []string{"Email", "Active", "New Products", "Offers", "Announcements", "Confirmed At"} {
		header.AddCell().SetValue(h)
	}
	for _, s := range subs {
		row := sheet.AddRow()
		row.AddCell().SetValue(s.Email)
		row.AddCell().SetValue(yesNo(s.Active))
		row.AddCell().SetValue(yesNo(s.Preferences.NewProducts))
		row.AddCell().SetValue(yesNo(s.Preferences.Offers))
		row.AddCell().SetValue(yesNo(s.Preferences.Announcements))
		row.AddCell().SetValue(s.ConfirmedAt.Format("2006-01-02 15:04"))
	}
	return file, nil
}

// GET /admin/newsletter/subscribers/export
func ExportSubscribers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := subscriberQuery(c, db.WithContext(c.Request.Context()))
		if err != nil {
			_ = c.Error(err)
			return
		}
		var subs []models.Subscriber
		if err := q.Order("id ASC").Find(&subs).Error; err != nil {
			_ = c.Error(err)
			return
		}
		file, err := BuildSubscribersWorkbook(subs)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=subscribers.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Status(http.StatusOK)
		if err := file.Write(c.Writer); err != nil {
			_ = c.Error(err)
		}
	}
}
