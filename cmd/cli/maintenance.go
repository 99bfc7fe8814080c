package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	postgresRepo "github.com/iho/coopledger/internal/adapter/repository/postgres"
	"github.com/iho/coopledger/internal/infrastructure/config"
	"github.com/iho/coopledger/internal/infrastructure/logger"
	"github.com/iho/coopledger/internal/infrastructure/postgres"
	"github.com/iho/coopledger/internal/usecase"
)

// Maintenance commands talk to the database directly and read the same
// environment as the server.

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations (uses DATABASE_URL and MIGRATIONS_PATH)",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Format: "console"}, cmd.ErrOrStderr())
			return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Format: "console"}, cmd.ErrOrStderr())
			return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath, log)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			st, err := postgres.MigrationVersion(cfg.DatabaseURL, cfg.MigrationsPath)
			if err != nil {
				return err
			}
			return printMigrationStatus(cmd.OutOrStdout(), st)
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd, versionCmd)
	return migrateCmd
}

func newSweepOverdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-overdue",
		Short: "Mark every active loan past its due date as defaulted, once",
		Long: `Runs the overdue sweep the server schedules, against the database directly.
Audit rows are written; outbox events are dropped because no publisher runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Format: "console"}, cmd.ErrOrStderr())

			pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
				DatabaseURL:    cfg.DatabaseURL,
				MaxConns:       2,
				ConnectTimeout: cfg.DatabaseTimeout,
			})
			if err != nil {
				return err
			}
			defer pool.Close()

			idGen := postgresRepo.NewULIDGenerator()
			outbox := postgresRepo.NewNullOutboxRepository(log)
			overdueUC := usecase.NewOverdueUseCase(
				postgresRepo.NewTxManager(pool),
				postgresRepo.NewLoanRepository(pool),
				outbox,
				idGen,
				postgresRepo.NewAuditRepository(pool),
				log,
				nil,
			)

			n, err := overdueUC.MarkOverdue(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "marked %d loan(s) overdue, %d event(s) not published\n", n, outbox.Dropped())
			return err
		},
	}
}

func printMigrationStatus(w io.Writer, st postgres.MigrationStatus) error {
	switch {
	case !st.Applied:
		_, err := fmt.Fprintln(w, "no migrations applied")
		return err
	case st.Dirty:
		_, err := fmt.Fprintf(w, "version %d (dirty)\n", st.Version)
		return err
	default:
		_, err := fmt.Fprintf(w, "version %d\n", st.Version)
		return err
	}
}
