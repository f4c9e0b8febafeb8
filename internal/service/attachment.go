package service

import (
	"context"
	"database/sql"
	"errors"

	"reimburse/internal/model"
	"reimburse/internal/repository"
)

// AttachmentService manages the directed attachment graph between invoices.
// Self loops are rejected; cycles and chains are allowed.
type AttachmentService interface {
	// Add files attachmentID as supporting material of invoiceID. Adding an existing edge is a no-op.
	Add(ctx context.Context, invoiceID, attachmentID string) error
	// Remove deletes the edge. Removing a missing edge is a no-op.
	Remove(ctx context.Context, invoiceID, attachmentID string) error
	// ListFor returns the attachments of invoiceID in the order they were added.
	ListFor(ctx context.Context, invoiceID string) ([]model.Invoice, error)
	// AllAttachmentIDs returns every invoice id currently filed as someone's attachment.
	AllAttachmentIDs(ctx context.Context) ([]string, error)
}

type attachmentService struct {
	repo  repository.InvoiceRepository
	edges repository.AttachmentRepository
}

// NewAttachmentService constructs a new AttachmentService.
func NewAttachmentService(repo repository.InvoiceRepository, edges repository.AttachmentRepository) AttachmentService {
	return &attachmentService{repo: repo, edges: edges}
}

func (s *attachmentService) Add(ctx context.Context, invoiceID, attachmentID string) error {
	if invoiceID == "" || attachmentID == "" {
		return ErrIDRequired
	}
	if invoiceID == attachmentID {
		return ErrInvalidEdge
	}
	err := s.edges.Add(ctx, invoiceID, attachmentID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrReferenceNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrSelfReference):
		return ErrInvalidEdge
	default:
		return storageErr("add attachment", err)
	}
}

func (s *attachmentService) Remove(ctx context.Context, invoiceID, attachmentID string) error {
	if invoiceID == "" || attachmentID == "" {
		return ErrIDRequired
	}
	if err := s.edges.Remove(ctx, invoiceID, attachmentID); err != nil {
		return storageErr("remove attachment", err)
	}
	return nil
}

func (s *attachmentService) ListFor(ctx context.Context, invoiceID string) ([]model.Invoice, error) {
	if invoiceID == "" {
		return nil, ErrIDRequired
	}
	if _, err := s.repo.FindByID(ctx, invoiceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("load invoice", err)
	}
	items, err := s.edges.ListFor(ctx, invoiceID)
	if err != nil {
		return nil, storageErr("list attachments", err)
	}
	return items, nil
}

func (s *attachmentService) AllAttachmentIDs(ctx context.Context) ([]string, error) {
	ids, err := s.edges.ListAttachmentIDs(ctx)
	if err != nil {
		return nil, storageErr("list attachment ids", err)
	}
	return ids, nil
}
