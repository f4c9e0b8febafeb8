package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"reimburse/internal/model"
	"reimburse/internal/service"
)

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Upload(ctx context.Context, r io.Reader, originalFilename string, size int64) (*model.Invoice, error) {
	args := m.Called(ctx, r, originalFilename, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceService) BulkUpload(ctx context.Context, files []service.UploadFile) *service.BulkUploadResult {
	args := m.Called(ctx, files)
	return args.Get(0).(*service.BulkUploadResult)
}

func (m *MockInvoiceService) List(ctx context.Context, status string) ([]model.Invoice, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Get(ctx context.Context, id string) (*model.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceService) OpenFile(ctx context.Context, id string) (*service.InvoiceFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceFile), args.Error(1)
}

func (m *MockInvoiceService) FileURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, id, expiry)
	return args.String(0), args.Error(1)
}
