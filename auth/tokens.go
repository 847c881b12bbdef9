package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleGuest      = "guest"
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Claims carried by every session token the API issues.
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin || c.Role == RoleSuperAdmin
}

// Tokens signs and verifies HS256 session tokens.
type Tokens struct {
	secret   []byte
	ttl      time.Duration
	guestTTL time.Duration
	now      func() time.Time
}

func NewTokens(secret string, ttl, guestTTL time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, guestTTL: guestTTL, now: time.Now}
}

func (t *Tokens) GuestTTL() time.Duration { return t.guestTTL }

// Issue signs a token for the given identity and role.
func (t *Tokens) Issue(userID, email, role, name, picture string) (string, error) {
	ttl := t.ttl
	if role == RoleGuest {
		ttl = t.guestTTL
	}
	now := t.now()
	claims := Claims{
		UserID:  userID,
		Email:   email,
		Role:    role,
		Name:    name,
		Picture: picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

var ErrInvalidToken = errors.New("invalid or expired token")

// Parse verifies signature and expiry.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" || claims.Role == "" {
		return nil, fmt.Errorf("%w: missing user_id or role", ErrInvalidToken)
	}
	return claims, nil
}
