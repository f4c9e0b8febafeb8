package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an invoice.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Invoice is one uploaded expense document plus its annotation state.
// Category, Amount, Attachments and Notes are only set while Status is completed.
type Invoice struct {
	ID               string           `json:"id"`
	OriginalFilename string           `json:"original_filename"`
	FileType         string           `json:"file_type"`
	StoragePath      string           `json:"-"`
	Size             int64            `json:"size"`
	ContentType      string           `json:"content_type"`
	Status           Status           `json:"status"`
	Category         *Category        `json:"category"`
	Amount           *decimal.Decimal `json:"amount"`
	Attachments      []string         `json:"attachments"`
	Notes            *string          `json:"notes"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Annotation is the full set of mutable fields written by a lifecycle transition.
// It is always written as a unit.
type Annotation struct {
	Status      Status
	Category    *Category
	Amount      *decimal.Decimal
	Attachments []string
	Notes       *string
}

// PendingAnnotation returns the cleared annotation of a pending invoice.
func PendingAnnotation() Annotation {
	return Annotation{Status: StatusPending}
}

// Apply copies the annotation onto the invoice.
func (a Annotation) Apply(inv *Invoice) {
	inv.Status = a.Status
	inv.Category = a.Category
	inv.Amount = a.Amount
	inv.Attachments = a.Attachments
	inv.Notes = a.Notes
}
