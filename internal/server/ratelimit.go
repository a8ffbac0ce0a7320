package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter manages per-client request limits over fixed minute, hour
// and calendar-day (UTC) windows.
type RateLimiter struct {
	mu sync.RWMutex

	requestsPerMinute int
	requestsPerHour   int
	maxRequestsPerDay int

	userRequests map[string]*UserUsage
	lastPrune    time.Time

	now func() time.Time
}

// UserUsage tracks usage for a specific client.
type UserUsage struct {
	requestsLastMinute int
	requestsLastHour   int
	requestsToday      int

	minuteStart time.Time
	hourStart   time.Time
	dayStart    time.Time
}

// NewRateLimiter creates a new rate limiter with the given limits.
// A limit of zero disables that window.
func NewRateLimiter(requestsPerMinute, requestsPerHour, maxRequestsPerDay int) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		maxRequestsPerDay: maxRequestsPerDay,
		userRequests:      make(map[string]*UserUsage),
		now:               time.Now,
	}
}

// CheckRateLimit records a request from userID, or returns a
// *RateLimitError or *QuotaExceededError if it is not allowed.
// Rejected requests are not counted.
func (rl *RateLimiter) CheckRateLimit(userID string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now().UTC()
	if now.Sub(rl.lastPrune) >= time.Minute {
		rl.prune(now)
	}
	usage := rl.getOrCreateUserUsage(userID, now)

	resetCountersIfNeeded(usage, now)

	if err := rl.checkRateLimits(usage, now); err != nil {
		return err
	}
	if err := rl.checkDailyQuota(usage, now); err != nil {
		return err
	}

	usage.requestsLastMinute++
	usage.requestsLastHour++
	usage.requestsToday++
	return nil
}

// resetCountersIfNeeded starts new windows once the current ones have elapsed.
func resetCountersIfNeeded(usage *UserUsage, now time.Time) {
	if !sameDay(now, usage.dayStart) {
		usage.requestsToday = 0
		usage.dayStart = now
	}
	if now.Sub(usage.minuteStart) >= time.Minute {
		usage.requestsLastMinute = 0
		usage.minuteStart = now
	}
	if now.Sub(usage.hourStart) >= time.Hour {
		usage.requestsLastHour = 0
		usage.hourStart = now
	}
}

// prune drops clients whose windows have all elapsed. Their next request
// starts from zero either way.
func (rl *RateLimiter) prune(now time.Time) {
	for id, usage := range rl.userRequests {
		if rl.expired(usage, now) {
			delete(rl.userRequests, id)
		}
	}
	rl.lastPrune = now
}

func (rl *RateLimiter) expired(usage *UserUsage, now time.Time) bool {
	if now.Sub(usage.minuteStart) < time.Minute || now.Sub(usage.hourStart) < time.Hour {
		return false
	}
	return rl.maxRequestsPerDay <= 0 || !sameDay(now, usage.dayStart)
}

// sameDay compares calendar dates in UTC.
func sameDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// checkRateLimits checks minute and hour rate limits.
func (rl *RateLimiter) checkRateLimits(usage *UserUsage, now time.Time) error {
	if rl.requestsPerMinute > 0 && usage.requestsLastMinute >= rl.requestsPerMinute {
		return &RateLimitError{
			Type:       "minute",
			Limit:      rl.requestsPerMinute,
			RetryAfter: usage.minuteStart.Add(time.Minute).Sub(now),
		}
	}

	if rl.requestsPerHour > 0 && usage.requestsLastHour >= rl.requestsPerHour {
		return &RateLimitError{
			Type:       "hour",
			Limit:      rl.requestsPerHour,
			RetryAfter: usage.hourStart.Add(time.Hour).Sub(now),
		}
	}

	return nil
}

// checkDailyQuota checks the daily request quota.
func (rl *RateLimiter) checkDailyQuota(usage *UserUsage, now time.Time) error {
	if rl.maxRequestsPerDay > 0 && usage.requestsToday >= rl.maxRequestsPerDay {
		return &QuotaExceededError{
			Type:   "requests",
			Limit:  int64(rl.maxRequestsPerDay),
			Used:   int64(usage.requestsToday),
			Resets: time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC),
		}
	}
	return nil
}

// getOrCreateUserUsage gets or creates usage tracking for a user.
func (rl *RateLimiter) getOrCreateUserUsage(userID string, now time.Time) *UserUsage {
	usage, exists := rl.userRequests[userID]
	if !exists {
		usage = &UserUsage{
			minuteStart: now,
			hourStart:   now,
			dayStart:    now,
		}
		rl.userRequests[userID] = usage
	}
	return usage
}

// GetUsage returns current usage statistics for a user.
func (rl *RateLimiter) GetUsage(userID string) UserUsage {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	if usage, exists := rl.userRequests[userID]; exists {
		return *usage
	}
	return UserUsage{}
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Type       string        // "minute" or "hour"
	Limit      int           // the limit that was exceeded
	RetryAfter time.Duration // how long to wait before retrying
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Type, e.Limit, e.RetryAfter)
}

// QuotaExceededError represents a daily quota violation.
type QuotaExceededError struct {
	Type   string    // "requests"
	Limit  int64     // the limit that was exceeded
	Used   int64     // current usage
	Resets time.Time // when the quota resets
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (used: %d, limit: %d, resets: %s)",
		e.Type, e.Used, e.Limit, e.Resets.Format(time.RFC3339))
}
