package middleware

import (
	"net/http"
	"sync"
	"time"

	"messpos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter ─────────────────────────────────────────────────────

type rateEntry struct {
	count     int
	windowEnd time.Time
}

// windowLimiter counts requests per key in fixed windows.
type windowLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateEntry
	limit   int
	window  time.Duration
}

func newWindowLimiter(limit int, window time.Duration) *windowLimiter {
	l := &windowLimiter{entries: make(map[string]*rateEntry), limit: limit, window: window}
	limitersMu.Lock()
	limiters = append(limiters, l)
	limitersMu.Unlock()
	return l
}

// allow records one hit for key and reports whether it is within the limit,
// along with the end of the current window.
func (l *windowLimiter) allow(key string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &rateEntry{windowEnd: now.Add(l.window)}
		l.entries[key] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

func (l *windowLimiter) purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, k)
			n++
		}
	}
	return n
}

// ── Login rate limiter ────────────────────────────────────────────────────────

var loginLimiter = newWindowLimiter(20, time.Minute)

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, _ := loginLimiter.allow(c.ClientIP(), time.Now()); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Too many login attempts. Try again in a minute."))
			return
		}
		c.Next()
	}
}

// ── General API rate limiter ──────────────────────────────────────────────────

// RateLimiter limits each IP to limit requests per window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := newWindowLimiter(limit, window)
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Too many requests. Try again shortly."))
			return
		}
		c.Next()
	}
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Expired entries are dropped periodically so IPs that never return do not
// accumulate.

const purgeInterval = 5 * time.Minute

var (
	limiters   []*windowLimiter
	limitersMu sync.Mutex
)

func init() {
	go purgeExpiredEntries()
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		limitersMu.Lock()
		active := append([]*windowLimiter(nil), limiters...)
		limitersMu.Unlock()

		purged := 0
		for _, l := range active {
			purged += l.purge(now)
		}
		if purged > 0 {
			log.Debug().Int("entries_purged", purged).Msg("rate limiter maps purged")
		}
	}
}
