package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RateLimit bounds requests per client IP with a token bucket: Burst
// requests at once, refilled at Rate per second. A zero Rate disables it.
type RateLimit struct {
	Rate  float64
	Burst int
}

// rateLimiter tracks one bucket per client IP.
type rateLimiter struct {
	mu      sync.Mutex
	rate    float64
	burst   float64
	idle    time.Duration
	buckets map[string]*bucket
	swept   time.Time
	now     func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

func newRateLimiter(cfg RateLimit, now func() time.Time) *rateLimiter {
	burst := float64(cfg.Burst)
	if burst < 1 {
		burst = 1
	}
	// A bucket untouched long enough to refill completely carries no state.
	idle := time.Duration(burst / cfg.Rate * float64(time.Second))
	if idle < time.Minute {
		idle = time.Minute
	}
	return &rateLimiter{
		rate:    cfg.Rate,
		burst:   burst,
		idle:    idle,
		buckets: make(map[string]*bucket),
		now:     now,
	}
}

// allow takes one token from ip's bucket.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.swept) > rl.idle {
		rl.sweep(now)
	}

	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{tokens: rl.burst, last: now}
		rl.buckets[ip] = b
	}

	b.tokens += now.Sub(b.last).Seconds() * rl.rate
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets idle long enough to be full again.
func (rl *rateLimiter) sweep(now time.Time) {
	for ip, b := range rl.buckets {
		if now.Sub(b.last) > rl.idle {
			delete(rl.buckets, ip)
		}
	}
	rl.swept = now
}

// rateLimitMiddleware rejects clients that exceed cfg with 429.
func rateLimitMiddleware(cfg RateLimit, now func() time.Time) echo.MiddlewareFunc {
	if cfg.Rate <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	limiter := newRateLimiter(cfg, now)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.allow(c.RealIP()) {
				return failure(c, http.StatusTooManyRequests, CodeRateLimited,
					"Too many requests. Please wait a moment and try again.")
			}
			return next(c)
		}
	}
}

// corsMiddleware allows credentialed requests from the configured
// origins. With no origins configured it is a no-op.
func corsMiddleware(origins []string) echo.MiddlewareFunc {
	if len(origins) == 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType},
		AllowCredentials: true,
	})
}

// requestLogger logs each request through logger.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	})
}
