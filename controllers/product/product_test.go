package productcontroller_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/junaidrashid-git/storefront-api/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type env struct {
	r         *gin.Engine
	db        *gorm.DB
	uploadDir string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.DB(t)
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "/uploads")
	require.NoError(t, err)
	d := productcontroller.Deps{DB: db, Store: store, Log: logger.Nop()}

	r := testutil.Engine()
	r.GET("/products", productcontroller.GetProducts(db, false))
	r.GET("/products/:id", productcontroller.GetProductByID(db, false))
	r.GET("/categories", productcontroller.GetCategories(db))
	r.GET("/offers", productcontroller.GetOffers(db))

	a := r.Group("/admin")
	a.GET("/products", productcontroller.GetProducts(db, true))
	a.GET("/products/export", productcontroller.ExportProductsToExcel(db))
	a.POST("/products/import", productcontroller.ImportProductsFromExcel(db))
	a.GET("/products/:id", productcontroller.GetProductByID(db, true))
	a.POST("/products", productcontroller.CreateProduct(d))
	a.PUT("/products/:id", productcontroller.UpdateProduct(d))
	a.DELETE("/products/:id", productcontroller.DeleteProduct(d))
	a.POST("/products/:id/stock", productcontroller.AdjustStock(d))
	a.POST("/categories", productcontroller.CreateCategory(d))
	a.PUT("/categories/:id", productcontroller.UpdateCategory(d))
	a.DELETE("/categories/:id", productcontroller.DeleteCategory(d))
	a.PUT("/offers/:id", productcontroller.StartOffer(db))
	a.DELETE("/offers/:id", productcontroller.EndOffer(db))
	return &env{r: r, db: db, uploadDir: dir}
}

// form posts a multipart form, attaching an image when imageName is set.
func (e *env) form(t *testing.T, method, path string, fields map[string]string, imageName string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if imageName != "" {
		fw, err := mw.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = fw.Write([]byte("\x89PNG fake"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

type productResponse struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	OnSale     bool            `json:"onSale"`
	Discount   int             `json:"discount"`
	Stock      int             `json:"stock"`
	Active     bool            `json:"active"`
	Image      string          `json:"image"`
	Categories []struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	} `json:"categories"`
}

type productPage struct {
	Items []productResponse `json:"items"`
	Total int64             `json:"total"`
}

func (e *env) list(t *testing.T, path string) productPage {
	t.Helper()
	w := testutil.Do(t, e.r, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page productPage
	testutil.Decode(t, w, &page)
	return page
}

func names(page productPage) []string {
	out := make([]string, 0, len(page.Items))
	for _, p := range page.Items {
		out = append(out, p.Name)
	}
	return out
}

func TestCreateProductWithImageAndCategories(t *testing.T) {
	e := newEnv(t)
	cat := models.Category{Name: "Kitchen"}
	require.NoError(t, e.db.Create(&cat).Error)

	w := e.form(t, http.MethodPost, "/admin/products", map[string]string{
		"name": "Mug", "price": "12.5", "stock": "4", "discount": "10", "on_sale": "true",
		"category_ids": fmt.Sprint(cat.ID),
	}, "mug photo.png")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var p productResponse
	testutil.Decode(t, w, &p)
	assert.Equal(t, "Mug", p.Name)
	assert.True(t, decimal.RequireFromString("12.5").Equal(p.Price))
	assert.True(t, p.Active, "active by default")
	require.Len(t, p.Categories, 1)
	assert.Regexp(t, `^/uploads/products/[0-9a-f-]{36}\.png$`, p.Image)

	_, err := os.Stat(filepath.Join(e.uploadDir, p.Image[len("/uploads/"):]))
	assert.NoError(t, err, "image written to the store")
}

func TestCreateProductValidation(t *testing.T) {
	e := newEnv(t)
	for name, fields := range map[string]map[string]string{
		"missing name":     {"price": "1"},
		"bad price":        {"name": "X", "price": "cheap"},
		"negative price":   {"name": "X", "price": "-1"},
		"discount too big": {"name": "X", "price": "1", "discount": "150"},
		"negative stock":   {"name": "X", "price": "1", "stock": "-2"},
		"bad category":     {"name": "X", "price": "1", "category_ids": "a,b"},
	} {
		w := e.form(t, http.MethodPost, "/admin/products", fields, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}

	w := e.form(t, http.MethodPost, "/admin/products", map[string]string{"name": "X", "price": "1"}, "virus.exe")
	assert.Equal(t, http.StatusBadRequest, w.Code, "non-image upload")

	w = e.form(t, http.MethodPost, "/admin/products", map[string]string{"name": "X", "price": "1", "category_ids": "99"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code, "unknown category")

	var n int64
	require.NoError(t, e.db.Model(&models.Product{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestGetProductsFilters(t *testing.T) {
	e := newEnv(t)
	kitchen := models.Category{Name: "Kitchen"}
	require.NoError(t, e.db.Create(&kitchen).Error)

	mug := testutil.Product(t, e.db, "Blue Mug", "10", 5)
	lamp := testutil.Product(t, e.db, "Desk Lamp", "45", 2)
	pan := testutil.Product(t, e.db, "Frying Pan", "30", 1)
	hidden := testutil.Product(t, e.db, "Hidden Mug", "5", 1)
	require.NoError(t, e.db.Model(&hidden).Update("active", false).Error)
	require.NoError(t, e.db.Model(&lamp).Updates(map[string]any{"on_sale": true, "discount": 20}).Error)
	require.NoError(t, e.db.Model(&kitchen).Association("Products").Append(&mug, &pan))

	assert.ElementsMatch(t, []string{"Blue Mug", "Desk Lamp", "Frying Pan"}, names(e.list(t, "/products")))
	assert.Equal(t, []string{"Blue Mug"}, names(e.list(t, "/products?search=mug")))
	assert.Equal(t, []string{"Desk Lamp"}, names(e.list(t, "/products?on_sale=true")))
	assert.ElementsMatch(t, []string{"Blue Mug", "Frying Pan"}, names(e.list(t, fmt.Sprintf("/products?category_id=%d", kitchen.ID))))
	assert.Equal(t, []string{"Frying Pan", "Desk Lamp"}, names(e.list(t, "/products?min_price=20&sort_by=price&order=asc")))
	assert.Equal(t, []string{"Blue Mug", "Frying Pan"}, names(e.list(t, "/products?max_price=30&sort_by=price&order=asc")))

	page := e.list(t, "/products?limit=2&sort_by=name&order=asc")
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, []string{"Blue Mug", "Desk Lamp"}, names(page))

	assert.Len(t, e.list(t, "/admin/products").Items, 4, "admins see inactive products")
	assert.Equal(t, []string{"Hidden Mug"}, names(e.list(t, "/admin/products?active=false")))

	for _, bad := range []string{"/products?sort_by=password", "/products?min_price=abc", "/products?category_id=x", "/products?page=0"} {
		w := testutil.Do(t, e.r, http.MethodGet, bad, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}

	w := testutil.Do(t, e.r, http.MethodGet, fmt.Sprintf("/products/%d", hidden.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = testutil.Do(t, e.r, http.MethodGet, fmt.Sprintf("/admin/products/%d", hidden.ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateProductPartially(t *testing.T) {
	e := newEnv(t)
	p := testutil.Product(t, e.db, "Mug", "10", 5)

	w := e.form(t, http.MethodPut, fmt.Sprintf("/admin/products/%d", p.ID), map[string]string{"price": "11.99"}, "new.jpg")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got productResponse
	testutil.Decode(t, w, &got)
	assert.Equal(t, "Mug", got.Name)
	assert.Equal(t, 5, got.Stock)
	assert.True(t, decimal.RequireFromString("11.99").Equal(got.Price))
	assert.NotEmpty(t, got.Image)

	w = e.form(t, http.MethodPut, fmt.Sprintf("/admin/products/%d", p.ID), map[string]string{"discount": "101"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.form(t, http.MethodPut, "/admin/products/999", map[string]string{"name": "Ghost"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteProductCleansCartsAndWishlists(t *testing.T) {
	e := newEnv(t)
	p := testutil.Product(t, e.db, "Mug", "10", 5)
	cart := &models.Cart{UserID: "u1"}
	require.NoError(t, cart.AddItem(p, 1))
	require.NoError(t, models.SaveCart(e.db, cart))
	require.NoError(t, e.db.Create(&models.WishlistItem{UserID: "u1", ProductID: p.ID}).Error)

	w := testutil.Do(t, e.r, http.MethodDelete, fmt.Sprintf("/admin/products/%d", p.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var items, wishes int64
	require.NoError(t, e.db.Model(&models.CartItem{}).Count(&items).Error)
	require.NoError(t, e.db.Model(&models.WishlistItem{}).Count(&wishes).Error)
	assert.Zero(t, items)
	assert.Zero(t, wishes)

	w = testutil.Do(t, e.r, http.MethodGet, fmt.Sprintf("/admin/products/%d", p.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = testutil.Do(t, e.r, http.MethodDelete, fmt.Sprintf("/admin/products/%d", p.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdjustStock(t *testing.T) {
	e := newEnv(t)
	p := testutil.Product(t, e.db, "Mug", "10", 2)
	url := fmt.Sprintf("/admin/products/%d/stock", p.ID)

	w := testutil.Do(t, e.r, http.MethodPost, url, "", gin.H{"delta": 5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"productId":%d,"stock":7}`, p.ID), w.Body.String())

	w = testutil.Do(t, e.r, http.MethodPost, url, "", gin.H{"delta": -3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, testutil.Stock(t, e.db, p.ID))

	w = testutil.Do(t, e.r, http.MethodPost, url, "", gin.H{"delta": -9})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "insufficient_stock", testutil.ErrorKind(t, w))
	assert.Equal(t, 4, testutil.Stock(t, e.db, p.ID))

	w = testutil.Do(t, e.r, http.MethodPost, url, "", gin.H{"delta": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = testutil.Do(t, e.r, http.MethodPost, "/admin/products/999/stock", "", gin.H{"delta": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOffers(t *testing.T) {
	e := newEnv(t)
	mug := testutil.Product(t, e.db, "Mug", "10", 2)
	lamp := testutil.Product(t, e.db, "Lamp", "40", 2)

	for id, discount := range map[uint]int{mug.ID: 10, lamp.ID: 25} {
		w := testutil.Do(t, e.r, http.MethodPut, fmt.Sprintf("/admin/offers/%d", id), "", gin.H{"discount": discount})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := testutil.Do(t, e.r, http.MethodGet, "/offers", "", nil)
	var offers []productResponse
	testutil.Decode(t, w, &offers)
	require.Len(t, offers, 2)
	assert.Equal(t, "Lamp", offers[0].Name, "deepest discount first")

	w = testutil.Do(t, e.r, http.MethodPut, fmt.Sprintf("/admin/offers/%d", mug.ID), "", gin.H{"discount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.Do(t, e.r, http.MethodDelete, fmt.Sprintf("/admin/offers/%d", lamp.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = testutil.Do(t, e.r, http.MethodGet, "/offers", "", nil)
	testutil.Decode(t, w, &offers)
	require.Len(t, offers, 1)
	assert.Equal(t, "Mug", offers[0].Name)
}

func TestCategoryCRUD(t *testing.T) {
	e := newEnv(t)

	w := e.form(t, http.MethodPost, "/admin/categories", map[string]string{"name": "Kitchen"}, "k.webp")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cat models.Category
	testutil.Decode(t, w, &cat)

	w = e.form(t, http.MethodPost, "/admin/categories", map[string]string{"name": "Kitchen"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	mug := testutil.Product(t, e.db, "Mug", "10", 2)
	require.NoError(t, e.db.Model(&cat).Association("Products").Append(&mug))

	w = testutil.Do(t, e.r, http.MethodGet, "/categories", "", nil)
	var cats []struct {
		Name         string `json:"name"`
		ProductCount int64  `json:"productCount"`
	}
	testutil.Decode(t, w, &cats)
	require.Len(t, cats, 1)
	assert.EqualValues(t, 1, cats[0].ProductCount)

	w = e.form(t, http.MethodPut, fmt.Sprintf("/admin/categories/%d", cat.ID), map[string]string{"name": "Home & Kitchen"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.Do(t, e.r, http.MethodDelete, fmt.Sprintf("/admin/categories/%d", cat.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var links int64
	require.NoError(t, e.db.Table("product_categories").Count(&links).Error)
	assert.Zero(t, links)
	assert.Equal(t, 2, testutil.Stock(t, e.db, mug.ID), "products survive")
}
