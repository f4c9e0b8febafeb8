package repository

import (
	"context"

	"reimburse/internal/model"
)

// AttachmentRepository stores the directed "invoice has attachment invoice" edges.
type AttachmentRepository interface {
	// Add inserts the edge. An existing edge is left untouched.
	// It returns ErrReferenceNotFound if either endpoint is missing and
	// ErrSelfReference if both ids are equal.
	Add(ctx context.Context, invoiceID, attachmentID string) error

	// Remove deletes the edge if present.
	Remove(ctx context.Context, invoiceID, attachmentID string) error

	// ListFor returns the attachment invoices of invoiceID in edge insertion order.
	ListFor(ctx context.Context, invoiceID string) ([]model.Invoice, error)

	// ListAttachmentIDs returns every id appearing on the attachment side of an edge.
	ListAttachmentIDs(ctx context.Context) ([]string, error)

	// AttachmentNames maps each invoice id that has edges to the original filenames of
	// its attachments, in edge insertion order.
	AttachmentNames(ctx context.Context) (map[string][]string, error)

	// RemoveAllFor deletes every edge touching id on either side and returns how many were removed.
	RemoveAllFor(ctx context.Context, id string) (int64, error)
}
