package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/junaidrashid-git/storefront-api/jobs"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJanitorRunOnce(t *testing.T) {
	db := testutil.DB(t)
	now := time.Now()
	require.NoError(t, db.Create(&models.GuestUser{ID: "guest_old", ExpiresAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&models.GuestUser{ID: "guest_new", ExpiresAt: now.Add(time.Hour)}).Error)
	require.NoError(t, db.Create(&models.PendingSubscriber{Email: "a@example.com", Token: "a", ExpiresAt: now.Add(-time.Minute)}).Error)

	j := &jobs.Janitor{DB: db, Log: logger.Nop()}
	res, err := j.RunOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, jobs.PurgeResult{Guests: 1, PendingSubscribes: 1}, res)

	res, err = j.RunOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, res)
}

func TestJanitorRunStopsWithContext(t *testing.T) {
	j := &jobs.Janitor{DB: testutil.DB(t), Log: logger.Nop(), Interval: time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
