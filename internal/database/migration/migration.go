package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_invoices",
		SQL: `CREATE TABLE IF NOT EXISTS invoices (
  id                UUID          PRIMARY KEY,
  original_filename TEXT          NOT NULL,
  file_type         TEXT          NOT NULL,
  storage_path      TEXT          NOT NULL UNIQUE,
  size              BIGINT        NOT NULL CHECK (size >= 0),
  content_type      TEXT          NOT NULL,
  status            TEXT          NOT NULL DEFAULT 'pending',
  category          TEXT,
  amount            NUMERIC(14,2),
  attachments       JSONB,
  notes             TEXT,
  created_at        TIMESTAMPTZ   NOT NULL DEFAULT now(),
  updated_at        TIMESTAMPTZ   NOT NULL DEFAULT now(),
  CONSTRAINT invoices_status_fields CHECK (
    (status = 'completed' AND category IS NOT NULL AND amount IS NOT NULL AND amount >= 0)
    OR
    (status = 'pending' AND category IS NULL AND amount IS NULL AND attachments IS NULL AND notes IS NULL)
  )
);`,
	},
	{
		Name: "create_index_invoices_status_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_invoices_status_created_at ON invoices (status, created_at);`,
	},
	{
		Name: "create_index_invoices_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_invoices_created_at ON invoices (created_at);`,
	},
	{
		Name: "create_table_invoice_attachments",
		SQL: `CREATE TABLE IF NOT EXISTS invoice_attachments (
  invoice_id    UUID        NOT NULL REFERENCES invoices (id),
  attachment_id UUID        NOT NULL REFERENCES invoices (id),
  seq           BIGSERIAL   NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (invoice_id, attachment_id),
  CONSTRAINT invoice_attachments_no_self CHECK (invoice_id <> attachment_id)
);`,
	},
	{
		Name: "create_index_invoice_attachments_attachment_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_invoice_attachments_attachment_id ON invoice_attachments (attachment_id);`,
	},
}

// EnsureMigrated checks if the schema exists and runs migrations if it doesn't.
// The last table created by the steps is used as the sentinel.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger zerolog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With().Str("component", "database").Str("db_host", dbHost).Logger()

	log.Info().Str("event", "db_migration_check").Str("status", "starting").Send()

	var exists bool
	query := "SELECT to_regclass('public.invoice_attachments') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error().
			Str("event", "db_migration_failed").
			Str("status", "error").
			Err(err).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info().
			Str("event", "db_migration_skip").
			Str("status", "success").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")
		return nil
	}

	log.Info().Str("event", "db_migration_start").Str("status", "in_progress").Send()

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error().
				Str("event", "db_migration_failed").
				Str("status", "error").
				Str("migration_step", step.Name).
				Err(err).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
				Send()
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info().
			Str("event", "db_migration_step").
			Str("status", "success").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Send()
	}

	log.Info().
		Str("event", "db_migration_success").
		Str("status", "success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Send()

	return nil
}
