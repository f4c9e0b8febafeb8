package repository

import (
	"context"

	"reimburse/internal/model"
)

// InvoiceRepository defines data access for invoice records using SQL queries only.
// No business logic here: validation and transitions belong to the service layer.
type InvoiceRepository interface {
	// Create inserts a new invoice record and returns the stored row.
	Create(ctx context.Context, inv *model.Invoice) (*model.Invoice, error)

	// FindByID returns an invoice by its ID.
	FindByID(ctx context.Context, id string) (*model.Invoice, error)

	// FindByIDForUpdate returns an invoice and locks its row until the surrounding
	// transaction ends. It must be called inside Transactor.WithinTx.
	FindByIDForUpdate(ctx context.Context, id string) (*model.Invoice, error)

	// List returns invoices matching the filter ordered by creation time.
	List(ctx context.Context, f ListFilter) ([]model.Invoice, error)

	// UpdateAnnotation writes all annotation fields in one statement and returns the updated row.
	UpdateAnnotation(ctx context.Context, id string, a model.Annotation) (*model.Invoice, error)

	// Delete removes an invoice row. It returns sql.ErrNoRows if the row did not exist.
	Delete(ctx context.Context, id string) error
}

// ListFilter narrows and orders an invoice listing.
type ListFilter struct {
	// Status restricts the listing to one lifecycle state when non-nil.
	Status *model.Status
	// Ascending orders oldest first; the default is newest first.
	Ascending bool
}
