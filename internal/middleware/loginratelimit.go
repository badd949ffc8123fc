// loginratelimit.go provides the brute-force guard for the login endpoint:
// a fixed-window counter per client IP, kept in memory. A restart clears the
// counters, which is an accepted trade-off for a single-admin site.
package middleware

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio-backend/internal/telemetry"
)

// LoginRateLimitConfig holds configuration for the login limiter
type LoginRateLimitConfig struct {
	// MaxAttempts is the number of attempts allowed per window
	MaxAttempts int
	// Window is the fixed window length
	Window time.Duration
	// SweepInterval is how often the background cleanup runs
	SweepInterval time.Duration
}

// DefaultLoginRateLimitConfig returns the production defaults: five attempts
// per fifteen minutes.
func DefaultLoginRateLimitConfig() LoginRateLimitConfig {
	return LoginRateLimitConfig{
		MaxAttempts:   5,
		Window:        15 * time.Minute,
		SweepInterval: 5 * time.Minute,
	}
}

// loginAttemptEntry tracks attempts for one client IP within a window.
type loginAttemptEntry struct {
	count       int
	windowStart time.Time
}

// LoginRateLimiter counts login attempts per client IP in fixed windows.
type LoginRateLimiter struct {
	config  LoginRateLimitConfig
	entries map[string]*loginAttemptEntry
	mu      sync.Mutex
	stopCh  chan struct{}

	// now is swapped in tests to pin the clock.
	now func() time.Time
}

// NewLoginRateLimiter creates a limiter and starts its cleanup goroutine.
// Call Stop on shutdown.
func NewLoginRateLimiter(config LoginRateLimitConfig) *LoginRateLimiter {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.Window <= 0 {
		config.Window = 15 * time.Minute
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = 5 * time.Minute
	}

	rl := &LoginRateLimiter{
		config:  config,
		entries: make(map[string]*loginAttemptEntry),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	go rl.sweepLoop()

	return rl
}

// Stop stops the cleanup goroutine.
func (rl *LoginRateLimiter) Stop() {
	close(rl.stopCh)
}

// Check records an attempt for the key and reports whether it is within the
// limit, along with the attempts remaining and when the window resets.
func (rl *LoginRateLimiter) Check(key string) (allowed bool, remaining int, resetAt time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	// Amortized cleanup: a small fraction of checks sweep expired windows,
	// so a burst of unique IPs cannot grow the map without bound between
	// ticker runs.
	if rand.Intn(50) == 0 {
		rl.sweepLocked(now)
	}

	entry, exists := rl.entries[key]
	if !exists || now.Sub(entry.windowStart) >= rl.config.Window {
		rl.entries[key] = &loginAttemptEntry{count: 1, windowStart: now}
		return true, rl.config.MaxAttempts - 1, now.Add(rl.config.Window)
	}

	entry.count++
	resetAt = entry.windowStart.Add(rl.config.Window)
	if entry.count > rl.config.MaxAttempts {
		return false, 0, resetAt
	}
	return true, rl.config.MaxAttempts - entry.count, resetAt
}

// Reset clears the counter for a key. Called after a successful login so a
// legitimate admin who fumbled their password is not locked out of the next
// session.
func (rl *LoginRateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.entries, key)
}

func (rl *LoginRateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			rl.sweepLocked(rl.now())
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

// sweepLocked removes entries whose window has lapsed. Caller holds mu.
func (rl *LoginRateLimiter) sweepLocked(now time.Time) {
	for key, entry := range rl.entries {
		if now.Sub(entry.windowStart) >= rl.config.Window {
			delete(rl.entries, key)
		}
	}
}

// LoginRateLimitMiddleware guards the login endpoint. Rejected requests get
// a 429 with Retry-After; allowed ones carry the remaining-attempt headers.
func LoginRateLimitMiddleware(limiter *LoginRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ClientKey(c)

		allowed, remaining, resetAt := limiter.Check(key)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.config.MaxAttempts))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			telemetry.RateLimitRejectionsTotal.WithLabelValues("login").Inc()
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many login attempts. Try again later.",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// ClientKey extracts the client identity used for login rate limiting.
// Behind the reverse proxy the real address is the first entry of
// X-Forwarded-For; X-Real-IP is the fallback. When neither is present all
// clients share the "unknown" bucket, which fails toward stricter limiting
// rather than none.
func ClientKey(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
		return realIP
	}
	return "unknown"
}
