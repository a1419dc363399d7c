package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/seatutor/internal/server"
	"github.com/abhisek/seatutor/internal/session"
)

var cookieSecure bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket tutor service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&cookieSecure, "cookie-secure", false, "mark the session cookie Secure (behind TLS)")
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}
	logger := slog.Default()

	stack, err := buildPracticeStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	logger.Info("tutor ready",
		"model", stack.provider.ModelID(),
		"driver", cfg.Store.Driver,
		"per_student_limit", cfg.Limits.PerStudent,
		"global_limit", cfg.Limits.Global,
		"timezone", cfg.Tutor.Timezone)

	srv := server.New(session.NewManager(stack.deps, stack.opts), server.Options{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		RateLimit: server.RateLimit{
			Rate:  cfg.Server.RateLimit.Rate,
			Burst: cfg.Server.RateLimit.Burst,
		},
		CookieSecure: cookieSecure,
		Logger:       logger,
	})
	return srv.Run(ctx)
}
