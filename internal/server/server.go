// Package server exposes tutoring sessions over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/abhisek/seatutor/internal/session"
)

const cookieName = "session_id"

// Options configures the HTTP server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	RateLimit      RateLimit

	// CookieSecure marks the session cookie Secure; set behind TLS.
	CookieSecure bool

	// SweepInterval is how often idle sessions are expired. Default 1m.
	SweepInterval time.Duration

	// ShutdownTimeout bounds the graceful shutdown. Default 10s.
	ShutdownTimeout time.Duration

	Logger *slog.Logger
	Now    func() time.Time
}

// Server routes HTTP and WebSocket requests to live sessions.
type Server struct {
	echo     *echo.Echo
	sessions *session.Manager
	opts     Options
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New builds the echo app and registers every route.
func New(sessions *session.Manager, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		sessions: sessions,
		opts:     opts,
		logger:   opts.Logger.With("component", "server"),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	e.Use(requestLogger(s.logger))
	e.Use(middleware.Recover())
	e.Use(corsMiddleware(opts.AllowedOrigins))

	e.GET("/health", s.handleHealth)
	e.GET("/ws", s.handleWebSocket)

	api := e.Group("/api", rateLimitMiddleware(opts.RateLimit, opts.Now))
	api.GET("/topics", s.handleTopics)
	api.POST("/login", s.handleLogin)
	api.POST("/topic", s.handleTopic)
	api.POST("/turn", s.handleTurn)
	api.GET("/progress", s.handleProgress)
	api.GET("/transcript", s.handleTranscript)
	api.POST("/logout", s.handleLogout)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then logs out every live session and
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sessions.Run(sweepCtx, s.opts.SweepInterval)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		err := s.echo.Start(s.opts.Addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "sessions", s.sessions.Count())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	err := s.echo.Shutdown(shutdownCtx)
	s.sessions.Shutdown(shutdownCtx)
	return err
}

// current returns the session named by the request's cookie.
func (s *Server) current(c echo.Context) (*session.Session, bool) {
	cookie, err := c.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	return s.sessions.Get(cookie.Value)
}

func (s *Server) setSessionCookie(c echo.Context, id string) {
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// checkOrigin admits same-host and configured origins to the WebSocket.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return slices.Contains(s.opts.AllowedOrigins, origin)
}
