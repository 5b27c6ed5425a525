package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterFixedWindow(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(30, time.Minute)
	rl.SetClock(func() time.Time { return current })

	for i := 0; i < 30; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d within the window should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("31st request within the window should be rejected")
	}

	// A different key is not starved by the first key's window.
	if !rl.Allow("5.6.7.8") {
		t.Fatal("independent key should be allowed")
	}

	// After the window resets, requests succeed again.
	current = current.Add(time.Minute + time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("request after window reset should be allowed")
	}
}

func TestRateLimiterPurgeMatchesLazyReset(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	purged := NewRateLimiter(2, time.Minute)
	purged.SetClock(func() time.Time { return current })
	lazy := NewRateLimiter(2, time.Minute)
	lazy.SetClock(func() time.Time { return current })

	for _, rl := range []*RateLimiter{purged, lazy} {
		rl.Allow("k")
		rl.Allow("k")
		if rl.Allow("k") {
			t.Fatal("third request in window should be rejected")
		}
	}

	current = current.Add(2 * time.Minute)
	purged.Purge()

	// Purged and lazily-reset entries must behave identically.
	for i := 0; i < 2; i++ {
		if got, want := purged.Allow("k"), lazy.Allow("k"); got != want || !got {
			t.Fatalf("request %d: purged=%v lazy=%v, both should allow", i+1, got, want)
		}
	}
	if purged.Allow("k") != lazy.Allow("k") {
		t.Fatal("over-limit behavior diverged between purged and lazy entries")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := RateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name string
		xff  string
		want string
	}{
		{name: "missing header", xff: "", want: "unknown"},
		{name: "single entry", xff: "1.2.3.4", want: "1.2.3.4"},
		{name: "first of many", xff: "1.2.3.4, 10.0.0.1, 10.0.0.2", want: "1.2.3.4"},
		{name: "whitespace only", xff: "  ", want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := ClientIP(req); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
