package productcontroller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// Spreadsheet columns shared by import and export.
var productColumns = []string{"Name", "Description", "Price", "On Sale", "Discount", "Stock", "Active", "Categories"}

type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors,omitempty"`
}

type productRow struct {
	product    models.Product
	categories []string
}

func parseBool(v string, def bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return def, nil
	case "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}

func parseInt(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid whole number %q", v)
	}
	return int(f), nil
}

func readProductRow(cells []*xlsx.Cell) (productRow, error) {
	get := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i].String())
		}
		return ""
	}
	var row productRow
	var err error
	p := &row.product
	p.Name = get(0)
	p.Description = get(1)
	if p.Price, err = parsePrice(get(2)); err != nil {
		return row, err
	}
	if p.OnSale, err = parseBool(get(3), false); err != nil {
		return row, err
	}
	if p.Discount, err = parseInt(get(4)); err != nil {
		return row, err
	}
	if p.Stock, err = parseInt(get(5)); err != nil {
		return row, err
	}
	if p.Active, err = parseBool(get(6), true); err != nil {
		return row, err
	}
	for _, name := range strings.Split(get(7), ",") {
		if name = strings.TrimSpace(name); name != "" {
			row.categories = append(row.categories, name)
		}
	}
	return row, p.Validate()
}

// ensureCategories finds categories by name, creating missing ones.
func ensureCategories(tx *gorm.DB, names []string) ([]models.Category, error) {
	out := make([]models.Category, 0, len(names))
	for _, name := range names {
		var cat models.Category
		if err := tx.Where(models.Category{Name: name}).FirstOrCreate(&cat).Error; err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, nil
}

// upsertProductRow updates the product with the same name or creates it.
func upsertProductRow(tx *gorm.DB, row productRow) (created bool, err error) {
	cats, err := ensureCategories(tx, row.categories)
	if err != nil {
		return false, err
	}

	var existing models.Product
	err = tx.Where("name = ?", row.product.Name).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		p := row.product
		p.Categories = cats
		return true, tx.Create(&p).Error
	case err != nil:
		return false, err
	}

	existing.Description = row.product.Description
	existing.Price = row.product.Price
	existing.OnSale = row.product.OnSale
	existing.Discount = row.product.Discount
	existing.Stock = row.product.Stock
	existing.Active = row.product.Active
	if err := tx.Omit("Categories").Save(&existing).Error; err != nil {
		return false, err
	}
	if len(cats) > 0 {
		if err := tx.Model(&existing).Association("Categories").Replace(cats); err != nil {
			return false, err
		}
	}
	return false, nil
}

// ImportProducts upserts products by name from the first sheet of a workbook.
func ImportProducts(db *gorm.DB, r io.ReaderAt, size int64) (*ImportResult, error) {
	book, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, apperr.Validation("failed to parse Excel file")
	}
	if len(book.Sheets) == 0 || len(book.Sheets[0].Rows) < 2 {
		return nil, apperr.Validation("Excel file is empty or missing header row")
	}

	res := &ImportResult{}
	for i, xr := range book.Sheets[0].Rows[1:] {
		line := i + 2
		if xr == nil || len(xr.Cells) == 0 || strings.TrimSpace(xr.Cells[0].String()) == "" {
			res.Skipped++
			continue
		}
		row, err := readProductRow(xr.Cells)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: line, Message: err.Error()})
			continue
		}
		var created bool
		err = db.Transaction(func(tx *gorm.DB) error {
			created, err = upsertProductRow(tx, row)
			return err
		})
		switch {
		case err != nil:
			res.Errors = append(res.Errors, RowError{Row: line, Message: err.Error()})
		case created:
			res.Created++
		default:
			res.Updated++
		}
	}
	return res, nil
}

// POST /admin/products/import
func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			_ = c.Error(apperr.Validation("Excel file is required"))
			return
		}
		f, err := fh.Open()
		if err != nil {
			_ = c.Error(fmt.Errorf("open upload: %w", err))
			return
		}
		defer f.Close()

		res, err := ImportProducts(db.WithContext(c.Request.Context()), f, fh.Size)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
