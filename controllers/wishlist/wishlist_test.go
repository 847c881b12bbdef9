package wishlistControllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	wishlistControllers "github.com/junaidrashid-git/storefront-api/controllers/wishlist"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type wishlistEntry struct {
	ProductID uint `json:"productId"`
	Product   struct {
		Name string `json:"name"`
	} `json:"product"`
}

func setup(t *testing.T) (*gin.Engine, *gorm.DB, string) {
	t.Helper()
	db := testutil.DB(t)
	tokens := testutil.Tokens()
	r := testutil.Engine()
	g := r.Group("/user/wishlist", middleware.ValidateToken(tokens, auth.RoleUser))
	g.GET("", wishlistControllers.GetWishlist(db))
	g.POST("", wishlistControllers.AddToWishlist(db))
	g.DELETE("/:product_id", wishlistControllers.RemoveFromWishlist(db))
	g.POST("/:product_id/move-to-cart", wishlistControllers.MoveToCart(db))
	return r, db, testutil.Token(t, tokens, "u1", auth.RoleUser)
}

func TestAddToWishlistIsIdempotent(t *testing.T) {
	r, db, tok := setup(t)
	mug := testutil.Product(t, db, "Mug", "5", 3)

	w := testutil.Do(t, r, http.MethodPost, "/user/wishlist", tok, gin.H{"productId": mug.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = testutil.Do(t, r, http.MethodPost, "/user/wishlist", tok, gin.H{"productId": mug.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var items []wishlistEntry
	testutil.Decode(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Mug", items[0].Product.Name)

	w = testutil.Do(t, r, http.MethodPost, "/user/wishlist", tok, gin.H{"productId": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWishlistIsPerUser(t *testing.T) {
	r, db, tok := setup(t)
	mug := testutil.Product(t, db, "Mug", "5", 3)
	require.NoError(t, db.Create(&models.WishlistItem{UserID: "someone-else", ProductID: mug.ID}).Error)

	w := testutil.Do(t, r, http.MethodGet, "/user/wishlist", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = testutil.Do(t, r, http.MethodDelete, fmt.Sprintf("/user/wishlist/%d", mug.ID), tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWishlistHidesDeletedProducts(t *testing.T) {
	r, db, tok := setup(t)
	mug := testutil.Product(t, db, "Mug", "5", 3)
	require.NoError(t, db.Create(&models.WishlistItem{UserID: "u1", ProductID: mug.ID}).Error)
	require.NoError(t, db.Delete(&models.Product{}, mug.ID).Error)

	w := testutil.Do(t, r, http.MethodGet, "/user/wishlist", tok, nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRemoveFromWishlist(t *testing.T) {
	r, db, tok := setup(t)
	mug := testutil.Product(t, db, "Mug", "5", 3)
	lamp := testutil.Product(t, db, "Lamp", "20", 3)
	for _, id := range []uint{mug.ID, lamp.ID} {
		require.NoError(t, db.Create(&models.WishlistItem{UserID: "u1", ProductID: id}).Error)
	}

	w := testutil.Do(t, r, http.MethodDelete, fmt.Sprintf("/user/wishlist/%d", mug.ID), tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []wishlistEntry
	testutil.Decode(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, lamp.ID, items[0].ProductID)
}

func TestMoveToCart(t *testing.T) {
	r, db, tok := setup(t)
	mug := testutil.Product(t, db, "Mug", "5", 3)
	require.NoError(t, db.Create(&models.WishlistItem{UserID: "u1", ProductID: mug.ID}).Error)

	w := testutil.Do(t, r, http.MethodPost, fmt.Sprintf("/user/wishlist/%d/move-to-cart", mug.ID), tok, gin.H{"quantity": 5})
	assert.Equal(t, http.StatusConflict, w.Code, "more than in stock")

	var left int64
	require.NoError(t, db.Model(&models.WishlistItem{}).Count(&left).Error)
	assert.EqualValues(t, 1, left, "entry survives a rejected move")

	w = testutil.Do(t, r, http.MethodPost, fmt.Sprintf("/user/wishlist/%d/move-to-cart", mug.ID), tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cart struct {
		ItemCount int `json:"itemCount"`
	}
	testutil.Decode(t, w, &cart)
	assert.Equal(t, 1, cart.ItemCount)

	require.NoError(t, db.Model(&models.WishlistItem{}).Count(&left).Error)
	assert.Zero(t, left)

	w = testutil.Do(t, r, http.MethodPost, fmt.Sprintf("/user/wishlist/%d/move-to-cart", mug.ID), tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWishlistRejectsGuests(t *testing.T) {
	r, _, _ := setup(t)
	guest := testutil.Token(t, testutil.Tokens(), "guest_1", auth.RoleGuest)
	w := testutil.Do(t, r, http.MethodGet, "/user/wishlist", guest, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
