package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"reimburse/internal/model"
	"reimburse/internal/repository"
)

const invoiceColumns = `id, original_filename, file_type, storage_path, size, content_type,
		status, category, amount, attachments, notes, created_at, updated_at`

// InvoicePostgres is a PostgreSQL implementation of repository.InvoiceRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type InvoicePostgres struct {
	db *sql.DB
}

// NewInvoicePostgres creates a new InvoicePostgres repository.
func NewInvoicePostgres(db *sql.DB) *InvoicePostgres {
	return &InvoicePostgres{db: db}
}

var _ repository.InvoiceRepository = (*InvoicePostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*model.Invoice, error) {
	var (
		inv         model.Invoice
		category    sql.NullString
		amount      decimal.NullDecimal
		attachments []byte
		notes       sql.NullString
	)
	if err := row.Scan(
		&inv.ID,
		&inv.OriginalFilename,
		&inv.FileType,
		&inv.StoragePath,
		&inv.Size,
		&inv.ContentType,
		&inv.Status,
		&category,
		&amount,
		&attachments,
		&notes,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if category.Valid {
		c := model.Category(category.String)
		inv.Category = &c
	}
	if amount.Valid {
		a := amount.Decimal
		inv.Amount = &a
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &inv.Attachments); err != nil {
			return nil, fmt.Errorf("decode attachments of %s: %w", inv.ID, err)
		}
	}
	if notes.Valid {
		n := notes.String
		inv.Notes = &n
	}
	return &inv, nil
}

// Create inserts a new invoice row and returns the stored record.
func (r *InvoicePostgres) Create(ctx context.Context, inv *model.Invoice) (*model.Invoice, error) {
	const q = `
		INSERT INTO invoices (id, original_filename, file_type, storage_path, size, content_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + invoiceColumns
	row := conn(ctx, r.db).QueryRowContext(ctx, q,
		inv.ID,
		inv.OriginalFilename,
		inv.FileType,
		inv.StoragePath,
		inv.Size,
		inv.ContentType,
		string(inv.Status),
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	return scanInvoice(row)
}

// FindByID fetches a single invoice by its ID.
func (r *InvoicePostgres) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	const q = `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return scanInvoice(conn(ctx, r.db).QueryRowContext(ctx, q, id))
}

// FindByIDForUpdate fetches a single invoice and row-locks it for the current transaction.
func (r *InvoicePostgres) FindByIDForUpdate(ctx context.Context, id string) (*model.Invoice, error) {
	const q = `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 FOR UPDATE`
	return scanInvoice(conn(ctx, r.db).QueryRowContext(ctx, q, id))
}

// List returns invoices, optionally filtered by status, ordered by created_at.
func (r *InvoicePostgres) List(ctx context.Context, f repository.ListFilter) ([]model.Invoice, error) {
	order := "DESC"
	if f.Ascending {
		order = "ASC"
	}
	q := `SELECT ` + invoiceColumns + ` FROM invoices`
	var args []any
	if f.Status != nil {
		q += ` WHERE status = $1`
		args = append(args, string(*f.Status))
	}
	q += fmt.Sprintf(` ORDER BY created_at %s, id %s`, order, order)

	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
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

// UpdateAnnotation overwrites status, category, amount, attachments and notes in a single
// statement, so concurrent writers never interleave fields.
func (r *InvoicePostgres) UpdateAnnotation(ctx context.Context, id string, a model.Annotation) (*model.Invoice, error) {
	const q = `
		UPDATE invoices
		SET status = $2, category = $3, amount = $4, attachments = $5, notes = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + invoiceColumns

	var category sql.NullString
	if a.Category != nil {
		category = sql.NullString{String: string(*a.Category), Valid: true}
	}
	var amount decimal.NullDecimal
	if a.Amount != nil {
		amount = decimal.NullDecimal{Decimal: *a.Amount, Valid: true}
	}
	var attachments sql.NullString
	if len(a.Attachments) > 0 {
		b, err := json.Marshal(a.Attachments)
		if err != nil {
			return nil, fmt.Errorf("encode attachments: %w", err)
		}
		attachments = sql.NullString{String: string(b), Valid: true}
	}
	var notes sql.NullString
	if a.Notes != nil {
		notes = sql.NullString{String: *a.Notes, Valid: true}
	}

	row := conn(ctx, r.db).QueryRowContext(ctx, q, id, string(a.Status), category, amount, attachments, notes)
	return scanInvoice(row)
}

// Delete removes an invoice by ID and reports sql.ErrNoRows when nothing was deleted.
func (r *InvoicePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM invoices WHERE id = $1`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
