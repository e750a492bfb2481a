package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay/internal/config"
)

func TestNewDisabled(t *testing.T) {
	l := New("company-api", config.RateLimitConfig{})
	assert.Nil(t, l)
	assert.NoError(t, l.Wait(context.Background()))
}

func TestWaitAllowsBurst(t *testing.T) {
	l := New("company-api", config.RateLimitConfig{RPS: 1, Burst: 3})
	require.NotNil(t, l)

	for i := 0; i < 3; i++ {
		assert.NoError(t, l.Wait(context.Background()))
	}
}

func TestWaitHonoursContext(t *testing.T) {
	l := New("dispatch-api", config.RateLimitConfig{RPS: 0.01, Burst: 1})
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx))
}
