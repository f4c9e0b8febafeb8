package repository

import (
	"context"
	"errors"
)

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
// A missing row is reported as sql.ErrNoRows.

var (
	// ErrReferenceNotFound is returned when a write references an invoice that does not exist.
	ErrReferenceNotFound = errors.New("referenced invoice does not exist")
	// ErrSelfReference is returned when an attachment edge would point an invoice at itself.
	ErrSelfReference = errors.New("invoice cannot reference itself")
)

// Transactor runs fn inside a single database transaction carried by the context.
// Repository calls made with the context passed to fn join that transaction.
// Nested calls reuse the outer transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error

	// ReadSnapshot runs fn in a read-only transaction where every statement
	// sees the same committed state.
	ReadSnapshot(ctx context.Context, fn func(ctx context.Context) error) error
}
