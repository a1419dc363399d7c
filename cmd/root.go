package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/seatutor/internal/config"
	"github.com/abhisek/seatutor/internal/llm"
	"github.com/abhisek/seatutor/internal/session"
	"github.com/abhisek/seatutor/internal/sheets"
	"github.com/abhisek/seatutor/internal/store"
	"github.com/abhisek/seatutor/internal/tutor"
)

var (
	configFile string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:           "seatutor",
	Short:         "AI maths tutor for SEA practice",
	Long:          "SEA Tutor: a chat tutor that helps Trinidad and Tobago students practise for the Secondary Entrance Assessment.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(debug)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

// openStore opens the configured database. An empty sqlite path resolves
// to the per-user data directory.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	opts := cfg.Store.Options()
	if opts.Driver == "" || opts.Driver == "sqlite" {
		if opts.Path == "" {
			p, err := store.DefaultDBPath()
			if err != nil {
				return nil, fmt.Errorf("resolve database path: %w", err)
			}
			opts.Path = p
		} else if err := store.EnsureDir(opts.Path); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	st, err := store.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// practiceStack is everything a practice session needs, built once per
// process. Close releases what it opened.
type practiceStack struct {
	store    *store.Store
	provider llm.Provider
	deps     session.Deps
	opts     session.Options
	mirror   *sheets.Client
}

func (p *practiceStack) Close() {
	if p.mirror != nil {
		p.mirror.Close()
	}
	p.store.Close()
}

func buildPracticeStack(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*practiceStack, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, st.LLMRepo(), logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("create llm provider: %w", err)
	}

	tcfg := tutor.DefaultConfig()
	tcfg.MaxTokens = cfg.Tutor.MaxTokens
	tcfg.Temperature = cfg.Tutor.Temperature
	tcfg.TopP = cfg.Tutor.TopP
	tcfg.MaxHistory = cfg.Tutor.MaxHistory

	stack := &practiceStack{
		store:    st,
		provider: provider,
		deps: session.Deps{
			Replier:  tutor.NewGenerator(provider, tcfg),
			Activity: st.ActivityRepo(),
			Students: st.StudentRepo(),
			Usage:    st.UsageRepo(),
			Badges:   st.BadgeRepo(),
		},
		opts: session.Options{
			Limits: session.Limits{
				PerStudent: cfg.Limits.PerStudent,
				Global:     cfg.Limits.Global,
			},
			Location:   cfg.Tutor.Location(),
			FlushBatch: cfg.Tutor.FlushBatch,
			MaxPending: cfg.Tutor.MaxPending,
			TTL:        cfg.Server.SessionTTL,
			Logger:     logger,
		},
	}

	if cfg.Sheets.Enabled {
		mirror, err := sheets.NewClient(cfg.Sheets.Options())
		if err != nil {
			stack.Close()
			return nil, fmt.Errorf("create sheets mirror: %w", err)
		}
		stack.mirror = mirror
		stack.deps.Mirror = mirror
	}
	return stack, nil
}
