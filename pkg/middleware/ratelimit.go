/**
 * @description
 * Rate limiting middleware guarding the portal's endpoints. Uses a simple
 * in-memory fixed-window counter per client key: the first request in a
 * window sets the reset time, subsequent requests increment the counter, and
 * requests beyond the limit are rejected until the window resets.
 *
 * A caller straddling a window boundary can issue up to twice the limit in a
 * short span; that is an accepted property of the fixed-window algorithm for
 * this abuse-deterrence use case, not a bug.
 *
 * @dependencies
 * - sync: For thread-safe operations
 * - time: For window accounting
 * - net/http: For HTTP middleware
 */
package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// windowEntry tracks one key's request count inside the current window.
type windowEntry struct {
	count   int
	resetAt time.Time
}

// RateLimiter implements a fixed-window rate limiter keyed by client id.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter creates a limiter allowing 'limit' requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*windowEntry),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// SetClock overrides the limiter's time source. Tests use this to control
// window expiry deterministically.
func (rl *RateLimiter) SetClock(now func() time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.now = now
}

// Allow records a request for the key and reports whether it fits within the
// current window's limit. An entry whose window has lapsed is reset in place,
// which behaves identically to a purged-and-recreated one.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, ok := rl.entries[key]
	if !ok || now.After(entry.resetAt) {
		rl.entries[key] = &windowEntry{count: 1, resetAt: now.Add(rl.window)}
		return rl.limit >= 1
	}

	entry.count++
	return entry.count <= rl.limit
}

// Purge drops entries whose window has expired. This bounds memory growth
// and never affects correctness; Allow lazily resets stale entries anyway.
func (rl *RateLimiter) Purge() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, entry := range rl.entries {
		if now.After(entry.resetAt) {
			delete(rl.entries, key)
		}
	}
}

// RateLimitMiddleware rejects requests over the limiter's window budget with
// 429. Requests are keyed by client IP.
func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(ClientIP(r)) {
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the client identifier for rate limiting: the first
// x-forwarded-for entry when present, otherwise "unknown".
func ClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return "unknown"
	}
	first, _, found := strings.Cut(xff, ",")
	if !found {
		first = xff
	}
	first = strings.TrimSpace(first)
	if first == "" {
		return "unknown"
	}
	return first
}
