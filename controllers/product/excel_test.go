package productcontroller_test

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func workbookBytes(t *testing.T, file *xlsx.File) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func TestExportImportRoundTrip(t *testing.T) {
	src := []models.Product{
		{Name: "Mug", Description: "Blue", Price: decimal.RequireFromString("12.5"), OnSale: true, Discount: 10, Stock: 4, Active: true,
			Categories: []models.Category{{Name: "Kitchen"}, {Name: "Gifts"}}},
		{Name: "Lamp", Price: decimal.RequireFromString("40"), Stock: 0, Active: false},
	}
	file, err := productcontroller.BuildProductsWorkbook(src)
	require.NoError(t, err)

	db := testutil.DB(t)
	r := workbookBytes(t, file)
	res, err := productcontroller.ImportProducts(db, r, r.Size())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Empty(t, res.Errors)

	var mug models.Product
	require.NoError(t, db.Preload("Categories").Where("name = ?", "Mug").First(&mug).Error)
	assert.True(t, decimal.RequireFromString("12.5").Equal(mug.Price))
	assert.True(t, mug.OnSale)
	assert.Equal(t, 10, mug.Discount)
	assert.Equal(t, 4, mug.Stock)
	assert.True(t, mug.Active)
	assert.Len(t, mug.Categories, 2)

	var lamp models.Product
	require.NoError(t, db.Where("name = ?", "Lamp").First(&lamp).Error)
	assert.False(t, lamp.Active)

	// a second import updates in place
	src[0].Stock = 9
	file, err = productcontroller.BuildProductsWorkbook(src[:1])
	require.NoError(t, err)
	r = workbookBytes(t, file)
	res, err = productcontroller.ImportProducts(db, r, r.Size())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 9, testutil.Stock(t, db, mug.ID))

	var cats int64
	require.NoError(t, db.Model(&models.Category{}).Count(&cats).Error)
	assert.EqualValues(t, 2, cats, "categories are reused by name")
}

func TestImportReportsBadRows(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	require.NoError(t, err)
	for _, cells := range [][]string{
		{"Name", "Description", "Price", "On Sale", "Discount", "Stock", "Active", "Categories"},
		{"Good", "", "5", "no", "0", "3", "yes", ""},
		{"Bad price", "", "five", "", "", "", "", ""},
		{"", "blank name rows are skipped"},
		{"Bad discount", "", "5", "", "150", "", "", ""},
		{"Bad stock", "", "5", "", "", "2.5", "", ""},
	} {
		row := sheet.AddRow()
		for _, v := range cells {
			row.AddCell().SetString(v)
		}
	}

	db := testutil.DB(t)
	r := workbookBytes(t, file)
	res, err := productcontroller.ImportProducts(db, r, r.Size())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
	rows := make([]int, 0, len(res.Errors))
	for _, e := range res.Errors {
		rows = append(rows, e.Row)
	}
	assert.Equal(t, []int{3, 5, 6}, rows)
}

func TestImportRejectsNonWorkbook(t *testing.T) {
	r := bytes.NewReader([]byte("not a zip"))
	_, err := productcontroller.ImportProducts(testutil.DB(t), r, r.Size())
	assert.Error(t, err)
}

func TestExportProductsEndpoint(t *testing.T) {
	e := newEnv(t)
	testutil.Product(t, e.db, "Mug", "10", 5)

	w := testutil.Do(t, e.r, http.MethodGet, "/admin/products/export", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "products.xlsx")

	book, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, book.Sheets[0].Rows, 2)
	assert.Equal(t, "Mug", book.Sheets[0].Rows[1].Cells[0].String())
	assert.Equal(t, fmt.Sprint(5), book.Sheets[0].Rows[1].Cells[5].String())
}
