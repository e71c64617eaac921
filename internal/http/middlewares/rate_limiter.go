package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "todo-manager.com/todo-manager/internal/errors"
)

type bucket struct {
	count int
	start time.Time
}

// fixedWindow counts requests per key. Buckets whose window has passed are
// swept at most once per window.
type fixedWindow struct {
	limit  int
	window time.Duration

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newFixedWindow(limit int, window time.Duration) *fixedWindow {
	return &fixedWindow{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
	}
}

// allow records one request for key. When the limit is reached it reports how
// long until the window resets.
func (l *fixedWindow) allow(key string, now time.Time) (remaining int, retryAfter time.Duration, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.window {
		l.sweep(now)
	}

	b, found := l.buckets[key]
	if !found || now.Sub(b.start) > l.window {
		b = &bucket{start: now}
		l.buckets[key] = b
	}

	if b.count >= l.limit {
		return 0, b.start.Add(l.window).Sub(now), false
	}
	b.count++
	return l.limit - b.count, 0, true
}

func (l *fixedWindow) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.start) > l.window {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

func (l *fixedWindow) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimiter allows limit requests per client IP in each fixed window.
func RateLimiter(limit int, window time.Duration) echo.MiddlewareFunc {
	limiter := newFixedWindow(limit, window)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			remaining, retryAfter, ok := limiter.allow(c.RealIP(), time.Now())
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				return echo.NewHTTPError(apperrors.ErrRateLimited.StatusCode, apperrors.ErrRateLimited.Message)
			}

			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			return next(c)
		}
	}
}
