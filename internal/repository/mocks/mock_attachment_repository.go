package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reimburse/internal/model"
)

type MockAttachmentRepository struct {
	mock.Mock
}

func (m *MockAttachmentRepository) Add(ctx context.Context, invoiceID, attachmentID string) error {
	args := m.Called(ctx, invoiceID, attachmentID)
	return args.Error(0)
}

func (m *MockAttachmentRepository) Remove(ctx context.Context, invoiceID, attachmentID string) error {
	args := m.Called(ctx, invoiceID, attachmentID)
	return args.Error(0)
}

func (m *MockAttachmentRepository) ListFor(ctx context.Context, invoiceID string) ([]model.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invoice), args.Error(1)
}

func (m *MockAttachmentRepository) ListAttachmentIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAttachmentRepository) AttachmentNames(ctx context.Context) (map[string][]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *MockAttachmentRepository) RemoveAllFor(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}
