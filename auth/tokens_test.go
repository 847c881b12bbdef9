package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour, 10*time.Minute)

	raw, err := tokens.Issue("uid-1", "a@example.com", RoleUser, "Ann", "pic")
	require.NoError(t, err)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, RoleUser, claims.Role)
	assert.False(t, claims.IsAdmin())
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestGuestTokensUseGuestTTL(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour, 10*time.Minute)
	raw, err := tokens.Issue("guest_1", "", RoleGuest, "", "")
	require.NoError(t, err)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseRejects(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour, time.Hour)
	good, err := tokens.Issue("uid-1", "", RoleAdmin, "", "")
	require.NoError(t, err)

	other := NewTokens("different", time.Hour, time.Hour)
	_, err = other.Parse(good)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong secret")

	expired := NewTokens("s3cret", time.Hour, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue("uid-1", "", RoleUser, "", "")
	require.NoError(t, err)
	_, err = tokens.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "x", Role: RoleSuperAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Parse(none)
	assert.ErrorIs(t, err, ErrInvalidToken, "alg none")

	noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "x"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = tokens.Parse(noRole)
	assert.ErrorIs(t, err, ErrInvalidToken, "missing role")
}
