package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBurstThenDeny(t *testing.T) {
	m := NewMemory(0.001, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := m.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := m.Allow(ctx, "1.2.3.4")
	assert.False(t, ok)

	ok, _ = m.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "keys have separate buckets")
}

func TestMemorySweep(t *testing.T) {
	m := NewMemory(1, 1)
	_, _ = m.Allow(context.Background(), "a")

	assert.Equal(t, 0, m.Sweep(time.Now()))
	assert.Equal(t, 1, m.Sweep(time.Now().Add(time.Hour)))
}
