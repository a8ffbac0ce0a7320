package server

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(perMinute, perHour, perDay int) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(perMinute, perHour, perDay)
	rl.now = clock.now
	return rl, clock
}

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(10, 100, 1000)

	assert.NotNil(t, rl)
	assert.Equal(t, 10, rl.requestsPerMinute)
	assert.Equal(t, 100, rl.requestsPerHour)
	assert.Equal(t, 1000, rl.maxRequestsPerDay)
	assert.NotNil(t, rl.userRequests)
}

func TestRateLimiter_CheckRateLimit_NoLimits(t *testing.T) {
	rl := NewRateLimiter(0, 0, 0)

	for range 100 {
		require.NoError(t, rl.CheckRateLimit("user1"))
	}
	assert.Equal(t, 100, rl.GetUsage("user1").requestsToday)
}

func TestRateLimiter_CheckRateLimit_RequestsPerMinute(t *testing.T) {
	rl, clock := newTestLimiter(2, 0, 0)

	assert.NoError(t, rl.CheckRateLimit("user1"))
	clock.advance(20 * time.Second)
	assert.NoError(t, rl.CheckRateLimit("user1"))

	err := rl.CheckRateLimit("user1")
	rateLimitErr := &RateLimitError{}
	require.True(t, errors.As(err, &rateLimitErr))
	assert.Equal(t, "minute", rateLimitErr.Type)
	assert.Equal(t, 2, rateLimitErr.Limit)
	assert.Equal(t, 40*time.Second, rateLimitErr.RetryAfter)

	// The window is fixed: it opens again one minute after it started.
	clock.advance(40 * time.Second)
	assert.NoError(t, rl.CheckRateLimit("user1"))
}

func TestRateLimiter_CheckRateLimit_RequestsPerHour(t *testing.T) {
	rl, clock := newTestLimiter(0, 3, 0)

	for range 3 {
		require.NoError(t, rl.CheckRateLimit("user1"))
		clock.advance(5 * time.Minute)
	}

	err := rl.CheckRateLimit("user1")
	rateLimitErr := &RateLimitError{}
	require.True(t, errors.As(err, &rateLimitErr))
	assert.Equal(t, "hour", rateLimitErr.Type)
	assert.Equal(t, 45*time.Minute, rateLimitErr.RetryAfter)

	clock.advance(45 * time.Minute)
	assert.NoError(t, rl.CheckRateLimit("user1"))
}

func TestRateLimiter_RejectedRequestsAreNotCounted(t *testing.T) {
	rl, _ := newTestLimiter(1, 0, 0)

	require.NoError(t, rl.CheckRateLimit("user1"))
	for range 3 {
		require.Error(t, rl.CheckRateLimit("user1"))
	}
	usage := rl.GetUsage("user1")
	assert.Equal(t, 1, usage.requestsLastMinute)
	assert.Equal(t, 1, usage.requestsToday)
}

func TestRateLimiter_CheckRateLimit_MaxRequestsPerDay(t *testing.T) {
	rl, clock := newTestLimiter(0, 0, 2)

	require.NoError(t, rl.CheckRateLimit("user1"))
	require.NoError(t, rl.CheckRateLimit("user1"))

	err := rl.CheckRateLimit("user1")
	quotaErr := &QuotaExceededError{}
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, "requests", quotaErr.Type)
	assert.Equal(t, int64(2), quotaErr.Limit)
	assert.Equal(t, int64(2), quotaErr.Used)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), quotaErr.Resets)

	// Still blocked late the same day.
	clock.advance(11 * time.Hour)
	require.Error(t, rl.CheckRateLimit("user1"))

	// Next calendar day resets the quota.
	clock.advance(time.Hour)
	assert.NoError(t, rl.CheckRateLimit("user1"))
}

func TestRateLimiter_DailyQuotaUsesUTC(t *testing.T) {
	rl := NewRateLimiter(0, 0, 1)
	clock := &fakeClock{t: time.Date(2026, 3, 14, 23, 30, 0, 0, time.FixedZone("CEST", 2*60*60))}
	rl.now = clock.now

	require.NoError(t, rl.CheckRateLimit("user1"))
	err := rl.CheckRateLimit("user1")
	quotaErr := &QuotaExceededError{}
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), quotaErr.Resets)

	// Local midnight has passed, the UTC day has not.
	clock.advance(time.Hour)
	require.Error(t, rl.CheckRateLimit("user1"))

	clock.advance(2 * time.Hour)
	assert.NoError(t, rl.CheckRateLimit("user1"))
}

func TestRateLimiter_PrunesExpiredClients(t *testing.T) {
	rl, clock := newTestLimiter(5, 100, 1000)

	for _, id := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		require.NoError(t, rl.CheckRateLimit(id))
	}

	// Hour windows are still open, nothing is dropped.
	clock.advance(30 * time.Minute)
	require.NoError(t, rl.CheckRateLimit("10.0.0.4"))
	assert.Len(t, rl.userRequests, 4)

	// The daily quota keeps clients until the UTC day changes.
	clock.advance(2 * time.Hour)
	require.NoError(t, rl.CheckRateLimit("10.0.0.5"))
	assert.Len(t, rl.userRequests, 5)

	clock.advance(12 * time.Hour)
	require.NoError(t, rl.CheckRateLimit("10.0.0.6"))
	assert.Len(t, rl.userRequests, 1)
	assert.Equal(t, 0, rl.GetUsage("10.0.0.1").requestsToday)
}

func TestRateLimiter_PrunesWithoutDailyQuota(t *testing.T) {
	rl, clock := newTestLimiter(5, 0, 0)

	require.NoError(t, rl.CheckRateLimit("10.0.0.1"))
	clock.advance(61 * time.Minute)
	require.NoError(t, rl.CheckRateLimit("10.0.0.2"))
	assert.Len(t, rl.userRequests, 1)
}

func TestRateLimiter_MultipleUsers(t *testing.T) {
	rl, _ := newTestLimiter(1, 0, 0)

	assert.NoError(t, rl.CheckRateLimit("user1"))
	assert.NoError(t, rl.CheckRateLimit("user2"))
	assert.Error(t, rl.CheckRateLimit("user1"))
	assert.Error(t, rl.CheckRateLimit("user2"))
	assert.NoError(t, rl.CheckRateLimit("user3"))
}

func TestRateLimiter_GetUsage_NonExistentUser(t *testing.T) {
	rl := NewRateLimiter(1, 1, 1)
	usage := rl.GetUsage("nobody")
	assert.Zero(t, usage.requestsToday)
	assert.True(t, usage.dayStart.IsZero())
}

func TestRateLimitError_Error(t *testing.T) {
	err := &RateLimitError{Type: "minute", Limit: 10, RetryAfter: 30 * time.Second}
	assert.Equal(t, "rate limit exceeded for minute (limit: 10, retry after: 30s)", err.Error())
}

func TestQuotaExceededError_Error(t *testing.T) {
	resets := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	err := &QuotaExceededError{Type: "requests", Limit: 100, Used: 100, Resets: resets}
	assert.Equal(t, "quota exceeded for requests (used: 100, limit: 100, resets: 2026-01-02T00:00:00Z)", err.Error())
}
