package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"reimburse/internal/model"
	"reimburse/internal/repository"
)

// maxAmount is the exclusive upper bound imposed by the NUMERIC(14,2) column.
var maxAmount = decimal.New(1, 12)

// CompleteInput carries the annotation written by the pending -> completed transition.
type CompleteInput struct {
	Category string
	Amount   *decimal.Decimal
	// AttachmentsText is the comma separated list of attachment names typed by the user.
	AttachmentsText string
	// Attachments, when non-nil, is used instead of AttachmentsText.
	Attachments []string
	Notes       string
}

// UpdateInput is the loosely shaped update request; Status selects the transition.
type UpdateInput struct {
	Status string
	CompleteInput
}

// LifecycleService drives the pending <-> completed state machine.
type LifecycleService interface {
	// Complete validates the annotation and writes it together with status=completed.
	// Calling it on a completed invoice overwrites the annotation.
	Complete(ctx context.Context, id string, in CompleteInput) (*model.Invoice, error)

	// Reset clears the annotation and sets status=pending. Resetting a pending invoice is a no-op.
	Reset(ctx context.Context, id string) (*model.Invoice, error)

	// Update dispatches to Complete or Reset according to in.Status.
	Update(ctx context.Context, id string, in UpdateInput) (*model.Invoice, error)
}

type lifecycleService struct {
	repo    repository.InvoiceRepository
	metrics *Metrics
}

// NewLifecycleService constructs a new LifecycleService. metrics may be nil.
func NewLifecycleService(repo repository.InvoiceRepository, metrics *Metrics) LifecycleService {
	return &lifecycleService{repo: repo, metrics: metrics}
}

// ParseAttachments splits the attachment text on ASCII or full-width commas,
// trims every name and drops empty entries.
func ParseAttachments(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '，' })
	return cleanNames(parts)
}

func cleanNames(names []string) []string {
	var out []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func (in CompleteInput) annotation() (model.Annotation, error) {
	category := model.Category(strings.TrimSpace(in.Category))
	if category == "" {
		return model.Annotation{}, invalid("category", "category is required")
	}
	if !category.Valid() {
		return model.Annotation{}, invalid("category", "unknown category %q", in.Category)
	}
	if in.Amount == nil {
		return model.Annotation{}, invalid("amount", "amount is required")
	}
	amount := *in.Amount
	if amount.IsNegative() {
		return model.Annotation{}, invalid("amount", "amount must not be negative")
	}
	if !amount.Equal(amount.Round(2)) {
		return model.Annotation{}, invalid("amount", "amount must have at most two decimal places")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return model.Annotation{}, invalid("amount", "amount is too large")
	}

	a := model.Annotation{
		Status:   model.StatusCompleted,
		Category: &category,
		Amount:   &amount,
	}
	if in.Attachments != nil {
		a.Attachments = cleanNames(in.Attachments)
	} else {
		a.Attachments = ParseAttachments(in.AttachmentsText)
	}
	if in.Notes != "" {
		// CSV readers fold CRLF inside quoted fields to LF; store LF so exports match.
		notes := strings.ReplaceAll(in.Notes, "\r\n", "\n")
		a.Notes = &notes
	}
	return a, nil
}

func (s *lifecycleService) Complete(ctx context.Context, id string, in CompleteInput) (*model.Invoice, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	a, err := in.annotation()
	if err != nil {
		return nil, err
	}
	return s.write(ctx, "invoice.complete", id, a)
}

func (s *lifecycleService) Reset(ctx context.Context, id string) (*model.Invoice, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	return s.write(ctx, "invoice.reset", id, model.PendingAnnotation())
}

func (s *lifecycleService) Update(ctx context.Context, id string, in UpdateInput) (*model.Invoice, error) {
	switch model.Status(in.Status) {
	case model.StatusCompleted:
		return s.Complete(ctx, id, in.CompleteInput)
	case model.StatusPending:
		return s.Reset(ctx, id)
	case "":
		return nil, invalid("status", "status is required")
	default:
		return nil, invalid("status", "unknown status %q", in.Status)
	}
}

// write applies the whole annotation in one repository statement.
func (s *lifecycleService) write(ctx context.Context, op, id string, a model.Annotation) (*model.Invoice, error) {
	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("invoice.id", id),
		attribute.String("invoice.status", string(a.Status)),
	))
	defer span.End()

	inv, err := s.repo.UpdateAnnotation(ctx, id, a)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, storageErr("update invoice", err)
	}
	s.metrics.transition(a.Status)
	return inv, nil
}
