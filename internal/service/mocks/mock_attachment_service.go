package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reimburse/internal/model"
)

type MockAttachmentService struct {
	mock.Mock
}

func (m *MockAttachmentService) Add(ctx context.Context, invoiceID, attachmentID string) error {
	args := m.Called(ctx, invoiceID, attachmentID)
	return args.Error(0)
}

func (m *MockAttachmentService) Remove(ctx context.Context, invoiceID, attachmentID string) error {
	args := m.Called(ctx, invoiceID, attachmentID)
	return args.Error(0)
}

func (m *MockAttachmentService) ListFor(ctx context.Context, invoiceID string) ([]model.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invoice), args.Error(1)
}

func (m *MockAttachmentService) AllAttachmentIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
