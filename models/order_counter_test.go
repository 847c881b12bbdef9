package models_test

import (
	"sync"
	"testing"
	"time"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNextOrderNumberSequencesPerDay(t *testing.T) {
	db := testutil.DB(t)
	day1 := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	first, err := models.NextOrderNumber(db, day1, time.UTC)
	require.NoError(t, err)
	second, err := models.NextOrderNumber(db, day1.Add(time.Hour), time.UTC)
	require.NoError(t, err)
	nextDay, err := models.NextOrderNumber(db, day2, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "EA202610180001", first)
	assert.Equal(t, "EA202610180002", second)
	assert.Equal(t, "EA202610190001", nextDay)
}

func TestNextOrderNumberUsesStoreTimezone(t *testing.T) {
	db := testutil.DB(t)
	loc := time.FixedZone("EAT", 3*60*60)
	// 22:30 UTC is already the next day in UTC+3
	at := time.Date(2026, 10, 18, 22, 30, 0, 0, time.UTC)

	n, err := models.NextOrderNumber(db, at, loc)
	require.NoError(t, err)
	assert.Equal(t, "EA202610190001", n)
}

func TestNextOrderNumberRollsBackWithTransaction(t *testing.T) {
	db := testutil.DB(t)
	at := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)

	_ = db.Transaction(func(tx *gorm.DB) error {
		_, err := models.NextOrderNumber(tx, at, time.UTC)
		require.NoError(t, err)
		return assert.AnError
	})

	n, err := models.NextOrderNumber(db, at, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "EA202601020001", n)
}

func TestNextOrderNumberStopsAtFourDigits(t *testing.T) {
	db := testutil.DB(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.OrderCounter{Day: "20260301", Seq: models.MaxOrdersPerDay - 1}).Error)

	last, err := models.NextOrderNumber(db, at, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "EA202603019999", last)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := models.NextOrderNumber(tx, at, time.UTC)
		return err
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	var counter models.OrderCounter
	require.NoError(t, db.First(&counter, "day = ?", "20260301").Error)
	assert.Equal(t, models.MaxOrdersPerDay, counter.Seq, "the failed bump is rolled back")
}

func TestNextOrderNumberUniqueUnderConcurrency(t *testing.T) {
	db := testutil.DB(t)
	at := time.Date(2026, 5, 5, 8, 0, 0, 0, time.UTC)
	const n = 25

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[string]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var num string
			err := db.Transaction(func(tx *gorm.DB) error {
				var err error
				num, err = models.NextOrderNumber(tx, at, time.UTC)
				return err
			})
			assert.NoError(t, err)
			mu.Lock()
			seen[num] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	assert.True(t, seen["EA202605050001"])
	assert.True(t, seen["EA202605050025"])
}
