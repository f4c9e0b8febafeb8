package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"reimburse/internal/config"
	"reimburse/internal/database"
	"reimburse/internal/database/migration"
	"reimburse/internal/logging"
)

// env is the state shared by every subcommand once configuration is loaded.
type env struct {
	cfg    *config.AppConfig
	loc    *time.Location
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "api",
		Short:         "Invoice reimbursement service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			e.cfg = config.Load()
			e.loc = e.cfg.Location()
			logger, err := logging.Setup(e.cfg.Log, e.loc)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}
			e.logger = logger
			return nil
		},
	}

	serve := newServeCmd(e)
	root.RunE = serve.RunE
	root.AddCommand(serve, newMigrateCmd(e), newExportCmd(e))
	return root
}

// openDB connects to Postgres and, when migrate is set, brings the schema up to date.
func openDB(ctx context.Context, e *env, migrate bool) (*sql.DB, error) {
	db, err := database.NewPostgres(ctx, e.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if migrate {
		if err := migration.EnsureMigrated(ctx, db, e.logger, e.cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}
	return db, nil
}
