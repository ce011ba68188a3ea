package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/NicoGleichmann/shopWebsite/internal/http/response"
)

// Limiter decides whether one more request under the given key is allowed
// within the window. retryAfter is how long the caller should back off when
// denied.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error)
}

// RateLimiter applies a fixed-window request limit per client IP. A limiter
// backend failure fails open: throttling is protective, not load-bearing.
type RateLimiter struct {
	limiter Limiter
	limit   int
	window  time.Duration
	logger  *slog.Logger
}

func NewRateLimiter(limiter Limiter, perMinute int, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{limiter: limiter, limit: perMinute, window: time.Minute, logger: logger}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		allowed, retryAfter, err := rl.limiter.Allow(r.Context(), key, rl.limit, rl.window)
		if err != nil {
			rl.logger.WarnContext(r.Context(), "rate limiter unavailable, failing open", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			seconds := int(retryAfter.Round(time.Second).Seconds())
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
			response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	// chi's RealIP middleware rewrites RemoteAddr from X-Forwarded-For.
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil || host == "" {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

type window struct {
	count int
	start time.Time
}

// LocalFixedWindowLimiter is the in-process fallback used when no Redis is
// configured. Counts are per instance, which is fine for a single replica.
type LocalFixedWindowLimiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	lastCleanup time.Time
	now         func() time.Time
}

func NewLocalFixedWindowLimiter() *LocalFixedWindowLimiter {
	return &LocalFixedWindowLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (l *LocalFixedWindowLimiter) Allow(_ context.Context, key string, limit int, windowSize time.Duration) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.cleanup(now, windowSize)

	win, ok := l.windows[key]
	if !ok || now.Sub(win.start) >= windowSize {
		l.windows[key] = &window{count: 1, start: now}
		return true, 0, nil
	}
	if win.count >= limit {
		return false, win.start.Add(windowSize).Sub(now), nil
	}
	win.count++
	return true, 0, nil
}

func (l *LocalFixedWindowLimiter) cleanup(now time.Time, windowSize time.Duration) {
	if now.Sub(l.lastCleanup) < windowSize {
		return
	}
	for key, win := range l.windows {
		if now.Sub(win.start) >= windowSize {
			delete(l.windows, key)
		}
	}
	l.lastCleanup = now
}
