package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reimburse/internal/model"
	"reimburse/internal/service"
)

type MockLifecycleService struct {
	mock.Mock
}

func (m *MockLifecycleService) Complete(ctx context.Context, id string, in service.CompleteInput) (*model.Invoice, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockLifecycleService) Reset(ctx context.Context, id string) (*model.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockLifecycleService) Update(ctx context.Context, id string, in service.UpdateInput) (*model.Invoice, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}
