package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

func TestRateLimitMiddleware(t *testing.T) {
	clock := &stepClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}

	e := echo.New()
	e.Use(rateLimitMiddleware(RateLimit{Rate: 1, Burst: 2}, clock.Now))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"), "burst spent")
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2"), "buckets are per IP")

	clock.t = clock.t.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"), "one token refilled")
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
}

func TestRateLimitDisabled(t *testing.T) {
	e := echo.New()
	e.Use(rateLimitMiddleware(RateLimit{}, time.Now))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for i := 0; i < 100; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestRateLimiterSweep(t *testing.T) {
	clock := &stepClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	rl := newRateLimiter(RateLimit{Rate: 1, Burst: 5}, clock.Now)

	rl.allow("a")
	rl.allow("b")
	assert.Len(t, rl.buckets, 2)

	clock.t = clock.t.Add(2 * time.Minute)
	rl.allow("c")
	assert.Len(t, rl.buckets, 1)
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantHeader string
	}{
		{"allowed origin", []string{"http://localhost:5173"}, "http://localhost:5173", "http://localhost:5173"},
		{"other origin", []string{"http://localhost:5173"}, "https://evil.example", ""},
		{"no origins configured", nil, "http://localhost:5173", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.Use(corsMiddleware(tt.origins))
			e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(echo.HeaderOrigin, tt.origin)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantHeader, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		})
	}
}
