package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/seatutor/internal/config"
	"github.com/abhisek/seatutor/internal/llm"
	"github.com/abhisek/seatutor/internal/report"
	"github.com/abhisek/seatutor/internal/storage"
	"github.com/abhisek/seatutor/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Teacher reports on class progress and usage",
}

// reportEnv is what every report subcommand reads from.
type reportEnv struct {
	cfg     *config.Config
	store   *store.Store
	builder *report.Builder
	out     *report.Renderer
}

func withReport(ctx context.Context, fn func(env *reportEnv) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(&reportEnv{
		cfg:   cfg,
		store: st,
		builder: report.NewBuilder(report.FromStore(st), report.Options{
			Location:    cfg.Tutor.Location(),
			GlobalLimit: cfg.Limits.Global,
		}),
		out: report.NewRenderer(os.Stdout),
	})
}

var reportOverviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Class overview with top performers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withReport(ctx, func(env *reportEnv) error {
			o, err := env.builder.Overview(ctx)
			if err != nil {
				return fmt.Errorf("build overview: %w", err)
			}
			env.out.Overview(o)
			return nil
		})
	},
}

var reportStudentCmd = &cobra.Command{
	Use:   "student <id|name>",
	Short: "Per-strand detail for one student",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withReport(ctx, func(env *reportEnv) error {
			d, err := env.builder.StudentDetail(ctx, args[0])
			if err != nil {
				return fmt.Errorf("build student detail: %w", err)
			}
			env.out.StudentDetail(d)
			return nil
		})
	},
}

var reportAnalyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Activity patterns by day, hour and strand",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withReport(ctx, func(env *reportEnv) error {
			a, err := env.builder.Analytics(ctx)
			if err != nil {
				return fmt.Errorf("build analytics: %w", err)
			}
			env.out.Analytics(a)
			return nil
		})
	},
}

var reportUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Daily question usage against the class limit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withReport(ctx, func(env *reportEnv) error {
			u, err := env.builder.Usage(ctx)
			if err != nil {
				return fmt.Errorf("build usage: %w", err)
			}
			env.out.Usage(u)
			return nil
		})
	},
}

var reportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export the class overview as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")
		toS3, _ := cmd.Flags().GetBool("s3")

		ctx := cmd.Context()
		return withReport(ctx, func(env *reportEnv) error {
			o, err := env.builder.Overview(ctx)
			if err != nil {
				return fmt.Errorf("build overview: %w", err)
			}
			var buf bytes.Buffer
			if err := report.WriteClassCSV(&buf, o); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}

			name := report.ClassCSVName(time.Now().In(env.cfg.Tutor.Location()))
			if toS3 {
				exp, err := storage.NewS3Exporter(ctx, env.cfg.Export.Options())
				if err != nil {
					return fmt.Errorf("create exporter: %w", err)
				}
				uri, err := exp.Put(ctx, name, "text/csv", buf.Bytes())
				if err != nil {
					return fmt.Errorf("upload csv: %w", err)
				}
				fmt.Println("Uploaded", uri)
				return nil
			}

			if outPath == "-" {
				_, err := os.Stdout.Write(buf.Bytes())
				return err
			}
			if outPath == "" {
				outPath = name
			}
			if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Printf("Wrote %s (%d students)\n", outPath, o.TotalStudents)
			return nil
		})
	},
}

var reportExportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "List reports uploaded to S3",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loadConfig() > %w", err)
		}
		ctx := cmd.Context()
		exp, err := storage.NewS3Exporter(ctx, cfg.Export.Options())
		if err != nil {
			return fmt.Errorf("create exporter: %w", err)
		}
		objects, err := exp.List(ctx)
		if err != nil {
			return fmt.Errorf("list exports: %w", err)
		}
		if len(objects) == 0 {
			fmt.Println("No exports found.")
			return nil
		}
		for _, o := range objects {
			fmt.Printf("%-19s  %8d  %s\n", o.LastModified.Local().Format("2006-01-02 15:04:05"), o.Size, o.Key)
		}
		return nil
	},
}

var reportInsightCmd = &cobra.Command{
	Use:   "insight",
	Short: "Ask the LLM to interpret class or student results",
	RunE: func(cmd *cobra.Command, args []string) error {
		studentKey, _ := cmd.Flags().GetString("student")

		ctx := cmd.Context()
		return withReport(ctx, func(env *reportEnv) error {
			provider, err := llm.NewProvider(ctx, env.cfg.LLM, env.store.LLMRepo(), slog.Default())
			if err != nil {
				return fmt.Errorf("create llm provider: %w", err)
			}
			gen := report.NewInsightGenerator(provider, report.DefaultInsightConfig())

			var in *report.Insight
			if studentKey != "" {
				d, err := env.builder.StudentDetail(ctx, studentKey)
				if err != nil {
					return fmt.Errorf("build student detail: %w", err)
				}
				in, err = gen.StudentInsight(ctx, d)
				if err != nil {
					return err
				}
			} else {
				o, err := env.builder.Overview(ctx)
				if err != nil {
					return fmt.Errorf("build overview: %w", err)
				}
				a, err := env.builder.Analytics(ctx)
				if err != nil {
					return fmt.Errorf("build analytics: %w", err)
				}
				in, err = gen.ClassInsight(ctx, o, a)
				if err != nil {
					return err
				}
			}
			env.out.Insight(in)
			return nil
		})
	},
}

func init() {
	reportCSVCmd.Flags().StringP("out", "o", "", "output file (default class_report_<date>.csv, - for stdout)")
	reportCSVCmd.Flags().Bool("s3", false, "upload to the configured S3 bucket instead of writing a file")
	reportInsightCmd.Flags().StringP("student", "s", "", "student id or name (default: whole class)")

	reportCmd.AddCommand(reportOverviewCmd)
	reportCmd.AddCommand(reportStudentCmd)
	reportCmd.AddCommand(reportAnalyticsCmd)
	reportCmd.AddCommand(reportUsageCmd)
	reportCmd.AddCommand(reportCSVCmd)
	reportCmd.AddCommand(reportExportsCmd)
	reportCmd.AddCommand(reportInsightCmd)
}
