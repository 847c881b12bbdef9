package productcontroller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// BuildProductsWorkbook writes products in the layout ImportProducts reads.
func BuildProductsWorkbook(products []models.Product) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}
	header := sheet.AddRow()
	for _, h := range productColumns {
		header.AddCell().SetValue(h)
	}
	for _, p := range products {
		names := make([]string, 0, len(p.Categories))
		for _, cat := range p.Categories {
			names = append(names, cat.Name)
		}
		row := sheet.AddRow()
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetBool(p.OnSale)
		row.AddCell().SetInt(p.Discount)
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetBool(p.Active)
		row.AddCell().SetValue(strings.Join(names, ", "))
	}
	return file, nil
}

// GET /admin/products/export
func ExportProductsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.WithContext(c.Request.Context()).Preload("Categories").Order("id ASC").Find(&products).Error; err != nil {
			_ = c.Error(err)
			return
		}
		file, err := BuildProductsWorkbook(products)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Status(http.StatusOK)
		if err := file.Write(c.Writer); err != nil {
			_ = c.Error(err)
		}
	}
}
