package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"onlyanon/internal/app"
	"onlyanon/internal/config"
)

// migrate applies the SQL files in migrations/ on top of the tables the
// server creates with AutoMigrate.
func main() {
	var dir string

	rootCmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply OnlyAnon SQL migrations",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dir, "dir", "migrations", "directory holding .sql migrations")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProvider(cmd.Context(), dir, func(ctx context.Context, p *goose.Provider, logger *slog.Logger) error {
				results, err := p.Up(ctx)
				for _, r := range results {
					logger.Info("migration applied", "path", r.Source.Path, "duration", r.Duration)
				}
				if err != nil {
					return fmt.Errorf("goose up: %w", err)
				}
				logger.Info("migrations complete", "applied", len(results))
				return nil
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProvider(cmd.Context(), dir, func(ctx context.Context, p *goose.Provider, logger *slog.Logger) error {
				result, err := p.Down(ctx)
				if err != nil {
					return fmt.Errorf("goose down: %w", err)
				}
				logger.Info("migration rolled back", "path", result.Source.Path)
				return nil
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which migrations are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProvider(cmd.Context(), dir, func(ctx context.Context, p *goose.Provider, _ *slog.Logger) error {
				statuses, err := p.Status(ctx)
				if err != nil {
					return fmt.Errorf("goose status: %w", err)
				}
				for _, s := range statuses {
					applied := "pending"
					if s.State == goose.StateApplied {
						applied = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
					fmt.Printf("%-45s %s\n", s.Source.Path, applied)
				}
				return nil
			})
		},
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func withProvider(ctx context.Context, dir string, fn func(context.Context, *goose.Provider, *slog.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := app.NewLogger(cfg.Log)

	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("SQL migrations only target postgres, DB_DRIVER is %q", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, os.DirFS(dir))
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}

	return fn(ctx, provider, logger)
}
