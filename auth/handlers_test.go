package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeVerifier map[string]*auth.Identity

func (f fakeVerifier) Verify(_ context.Context, idToken string) (*auth.Identity, error) {
	if id, ok := f[idToken]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

var verifier = fakeVerifier{
	"ann":   {UID: "uid-ann", Email: "ann@example.com", Name: "Ann"},
	"boss":  {UID: "uid-boss", Email: "Boss@Example.com", Name: "Boss"},
	"staff": {UID: "uid-staff", Email: "staff@example.com", Name: "Staff"},
}

func setup(t *testing.T) (*gin.Engine, *gorm.DB, *auth.Tokens) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	tokens := auth.NewTokens("secret", time.Hour, time.Hour)
	log := logger.Nop()

	r := gin.New()
	r.Use(middleware.ErrorHandler(log))
	r.POST("/auth/login", auth.UserLogin(db, verifier, tokens, log))
	r.POST("/auth/guest", auth.GuestLogin(db, tokens))
	r.POST("/auth/admin", auth.AdminLogin(db, verifier, tokens, "boss@example.com", log))
	return r, db, tokens
}

func post(t *testing.T, r http.Handler, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf)))
	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestUserLoginCreatesThenUpdatesUser(t *testing.T) {
	r, db, tokens := setup(t)

	w, body := post(t, r, "/auth/login", map[string]string{"idToken": "ann"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, auth.MergeNoGuestCart, body["mergeStatus"])

	claims, err := tokens.Parse(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "uid-ann", claims.UserID)
	assert.Equal(t, auth.RoleUser, claims.Role)

	verifier["ann"].Name = "Ann B"
	defer func() { verifier["ann"].Name = "Ann" }()
	w, _ = post(t, r, "/auth/login", map[string]string{"idToken": "ann"})
	require.Equal(t, http.StatusOK, w.Code)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "Ann B", users[0].Name)
}

func TestUserLoginRejectsBadIdentity(t *testing.T) {
	r, _, _ := setup(t)

	w, _ := post(t, r, "/auth/login", map[string]string{"idToken": "forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = post(t, r, "/auth/login", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginMergesGuestCart(t *testing.T) {
	r, db, _ := setup(t)
	mug := testutil.Product(t, db, "Mug", "5", 10)
	lamp := testutil.Product(t, db, "Lamp", "40", 10)

	w, guest := post(t, r, "/auth/guest", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	guestID := guest["guestId"].(string)
	assert.Regexp(t, `^guest_`, guestID)

	gcart := &models.Cart{UserID: guestID}
	require.NoError(t, gcart.AddItem(mug, 2))
	require.NoError(t, gcart.AddItem(lamp, 1))
	require.NoError(t, models.SaveCart(db, gcart))

	testutil.User(t, db, "uid-ann")
	ucart := &models.Cart{UserID: "uid-ann"}
	require.NoError(t, ucart.AddItem(mug, 1))
	require.NoError(t, models.SaveCart(db, ucart))

	w, body := post(t, r, "/auth/login", map[string]string{"idToken": "ann", "guestToken": guest["token"].(string)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, auth.MergeSuccess, body["mergeStatus"])

	cart, err := models.LoadCart(db, "uid-ann")
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity, "mug quantities merge")
	assert.Equal(t, 4, cart.ItemCount())

	var guestCarts int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", guestID).Count(&guestCarts).Error)
	assert.Zero(t, guestCarts)
}

func TestLoginWithEmptyOrForgedGuestToken(t *testing.T) {
	r, _, tokens := setup(t)

	_, guest := post(t, r, "/auth/guest", nil)
	_, body := post(t, r, "/auth/login", map[string]string{"idToken": "ann", "guestToken": guest["token"].(string)})
	assert.Equal(t, auth.MergeGuestCartEmpty, body["mergeStatus"])

	// a user token cannot be used to steal someone else's cart
	userTok, err := tokens.Issue("uid-other", "", auth.RoleUser, "", "")
	require.NoError(t, err)
	_, body = post(t, r, "/auth/login", map[string]string{"idToken": "ann", "guestToken": userTok})
	assert.Equal(t, auth.MergeFailed, body["mergeStatus"])
}

func TestMergeGuestCartSkipsInactiveProducts(t *testing.T) {
	db := testutil.DB(t)
	mug := testutil.Product(t, db, "Mug", "5", 10)
	gone := testutil.Product(t, db, "Gone", "5", 10)

	gcart := &models.Cart{UserID: "guest_x"}
	require.NoError(t, gcart.AddItem(mug, 1))
	require.NoError(t, gcart.AddItem(gone, 1))
	require.NoError(t, models.SaveCart(db, gcart))
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", gone.ID).Update("active", false).Error)

	n, err := auth.MergeGuestCart(db, "guest_x", "uid-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cart, err := models.LoadCart(db, "uid-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, mug.ID, cart.Items[0].ProductID)
}

func TestAdminLogin(t *testing.T) {
	r, db, tokens := setup(t)

	w, body := post(t, r, "/auth/admin", map[string]string{"idToken": "boss"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, auth.RoleSuperAdmin, body["role"])

	w, _ = post(t, r, "/auth/admin", map[string]string{"idToken": "staff"})
	assert.Equal(t, http.StatusForbidden, w.Code, "new admins wait for approval")

	var admin models.Admin
	require.NoError(t, db.Where("email = ?", "staff@example.com").First(&admin).Error)
	assert.False(t, admin.Approved)

	w, _ = post(t, r, "/auth/admin", map[string]string{"idToken": "staff"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, db.Model(&admin).Update("approved", true).Error)
	w, body = post(t, r, "/auth/admin", map[string]string{"idToken": "staff"})
	require.Equal(t, http.StatusOK, w.Code)
	claims, err := tokens.Parse(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}
