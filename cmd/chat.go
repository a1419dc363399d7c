package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/seatutor/internal/app"
	"github.com/abhisek/seatutor/internal/session"
)

var chatLogFile string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Practise in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatLogFile, "log-file", "", "write logs to this file while the terminal UI runs")
}

// runChat starts one local practice session. The UI owns the terminal, so
// logs go to --log-file or nowhere.
func runChat(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	logger := slog.New(slog.DiscardHandler)
	if chatLogFile != "" {
		f, err := os.OpenFile(chatLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}

	stack, err := buildPracticeStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	return app.Run(ctx, app.Options{
		Practice: session.New(stack.deps, stack.opts),
		Logger:   logger,
	})
}
