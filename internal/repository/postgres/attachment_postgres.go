package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"reimburse/internal/model"
	"reimburse/internal/repository"
)

const (
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// AttachmentPostgres is a PostgreSQL implementation of repository.AttachmentRepository.
type AttachmentPostgres struct {
	db *sql.DB
}

// NewAttachmentPostgres creates a new AttachmentPostgres repository.
func NewAttachmentPostgres(db *sql.DB) *AttachmentPostgres {
	return &AttachmentPostgres{db: db}
}

var _ repository.AttachmentRepository = (*AttachmentPostgres)(nil)

// Add inserts an edge; the foreign keys lock both endpoints, so an edge can never outlive them.
func (r *AttachmentPostgres) Add(ctx context.Context, invoiceID, attachmentID string) error {
	const q = `
		INSERT INTO invoice_attachments (invoice_id, attachment_id)
		VALUES ($1, $2)
		ON CONFLICT (invoice_id, attachment_id) DO NOTHING
	`
	if _, err := conn(ctx, r.db).ExecContext(ctx, q, invoiceID, attachmentID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgForeignKeyViolation:
				return repository.ErrReferenceNotFound
			case pgCheckViolation:
				return repository.ErrSelfReference
			}
		}
		return err
	}
	return nil
}

// Remove deletes a single edge. A missing edge is not an error.
func (r *AttachmentPostgres) Remove(ctx context.Context, invoiceID, attachmentID string) error {
	const q = `DELETE FROM invoice_attachments WHERE invoice_id = $1 AND attachment_id = $2`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, invoiceID, attachmentID)
	return err
}

// ListFor resolves the edges of invoiceID to full invoice rows.
func (r *AttachmentPostgres) ListFor(ctx context.Context, invoiceID string) ([]model.Invoice, error) {
	const q = `
		SELECT i.id, i.original_filename, i.file_type, i.storage_path, i.size, i.content_type,
		       i.status, i.category, i.amount, i.attachments, i.notes, i.created_at, i.updated_at
		FROM invoice_attachments e
		JOIN invoices i ON i.id = e.attachment_id
		WHERE e.invoice_id = $1
		ORDER BY e.seq
	`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListAttachmentIDs returns the distinct attachment-side ids.
func (r *AttachmentPostgres) ListAttachmentIDs(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT attachment_id FROM invoice_attachments ORDER BY attachment_id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// AttachmentNames returns the attachment filenames of every invoice that has edges.
func (r *AttachmentPostgres) AttachmentNames(ctx context.Context) (map[string][]string, error) {
	const q = `
		SELECT e.invoice_id, i.original_filename
		FROM invoice_attachments e
		JOIN invoices i ON i.id = e.attachment_id
		ORDER BY e.invoice_id, e.seq
	`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string][]string)
	for rows.Next() {
		var invoiceID, name string
		if err := rows.Scan(&invoiceID, &name); err != nil {
			return nil, err
		}
		names[invoiceID] = append(names[invoiceID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// RemoveAllFor deletes every edge where id is either endpoint.
func (r *AttachmentPostgres) RemoveAllFor(ctx context.Context, id string) (int64, error) {
	const q = `DELETE FROM invoice_attachments WHERE invoice_id = $1 OR attachment_id = $1`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
