package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("10.0.0.1"))
	}
	assert.False(t, limiter.Allow("10.0.0.1"))

	// A different key gets its own counter
	assert.True(t, limiter.Allow("10.0.0.2"))
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	limiter := NewRateLimiter(1, 20*time.Millisecond)

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, limiter.Allow("10.0.0.1"))
}

func TestRateLimiterReset(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	limiter.Reset("10.0.0.1")
	assert.True(t, limiter.Allow("10.0.0.1"))
}

func TestRateLimiterRemaining(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)

	assert.Equal(t, 5, limiter.GetRemaining("10.0.0.1"))
	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.1")
	assert.Equal(t, 3, limiter.GetRemaining("10.0.0.1"))
}
