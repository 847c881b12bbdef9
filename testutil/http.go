package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// Tokens signs session tokens with a fixed test secret.
func Tokens() *auth.Tokens {
	return auth.NewTokens("test-secret", time.Hour, time.Hour)
}

// Token issues a session token for userID with role.
func Token(tb testing.TB, tokens *auth.Tokens, userID, role string) string {
	tb.Helper()
	tok, err := tokens.Issue(userID, userID+"@example.com", role, "Test "+userID, "")
	if err != nil {
		tb.Fatalf("failed to issue token: %v", err)
	}
	return tok
}

// Engine is a test-mode gin engine rendering errors like production.
func Engine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler(logger.Nop()))
	return r
}

// Do sends a JSON request. A nil body sends none; a string is sent verbatim.
func Do(tb testing.TB, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	tb.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			tb.Fatalf("failed to encode body: %v", err)
		}
		r = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Decode unmarshals the response body into v.
func Decode(tb testing.TB, w *httptest.ResponseRecorder, v any) {
	tb.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		tb.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
}

// ErrorKind extracts error.kind from an error response.
func ErrorKind(tb testing.TB, w *httptest.ResponseRecorder) string {
	tb.Helper()
	var body struct {
		Error struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	Decode(tb, w, &body)
	return body.Error.Kind
}
