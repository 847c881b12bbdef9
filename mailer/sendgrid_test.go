package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendGridSend(t *testing.T) {
	var got mailSendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("X-Message-Id", "msg-1")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sg, err := NewSendGrid(logger.Nop(), SendGridConfig{APIKey: "key", BaseURL: srv.URL, From: Address{Email: "shop@example.com"}})
	require.NoError(t, err)

	res, err := sg.Send(context.Background(), Message{
		To:      []Address{{Email: "a@example.com"}, {Email: "b@example.com"}},
		Subject: "Confirm",
		Text:    "click",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "msg-1", res.MessageID)
	assert.Equal(t, "shop@example.com", got.From.Email)
	require.Len(t, got.Personalizations, 2, "each recipient gets their own personalization")
	assert.Equal(t, []Address{{Email: "a@example.com"}}, got.Personalizations[0].To)
	assert.Equal(t, []Address{{Email: "b@example.com"}}, got.Personalizations[1].To)
	assert.Equal(t, "text/plain", got.Content[0].Type)
}

func TestSendGridRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sg, err := NewSendGrid(logger.Nop(), SendGridConfig{APIKey: "key", BaseURL: srv.URL, MaxRetries: 3})
	require.NoError(t, err)

	_, err = sg.Send(context.Background(), Message{To: []Address{{Email: "a@example.com"}}, Subject: "s", Text: "t"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestSendGridDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"errors":[{"message":"bad"}]}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	sg, err := NewSendGrid(logger.Nop(), SendGridConfig{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = sg.Send(context.Background(), Message{To: []Address{{Email: "a@example.com"}}, Subject: "s", Text: "t"})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestSendGridValidatesMessage(t *testing.T) {
	sg, err := NewSendGrid(logger.Nop(), SendGridConfig{APIKey: "key"})
	require.NoError(t, err)

	_, err = sg.Send(context.Background(), Message{Subject: "s", Text: "t"})
	assert.Error(t, err)
	_, err = sg.Send(context.Background(), Message{To: []Address{{Email: "a@b"}}, Text: "t"})
	assert.Error(t, err)

	_, err = NewSendGrid(logger.Nop(), SendGridConfig{})
	assert.Error(t, err)
}
