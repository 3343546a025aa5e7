package handler

import (
	"context"
	"time"

	appcl "github.com/erp/invoicelock/internal/application/customerlock"
	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/stretchr/testify/mock"
)

type mockStatusChecker struct {
	mock.Mock
}

func (m *mockStatusChecker) Check(ctx context.Context, customer string) (*appcl.StatusResult, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcl.StatusResult), args.Error(1)
}

func (m *mockStatusChecker) ListLocked(ctx context.Context) ([]appcl.StatusResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appcl.StatusResult), args.Error(1)
}

type mockScanner struct {
	mock.Mock
}

func (m *mockScanner) Run(ctx context.Context, today time.Time) (*appcl.ScanReport, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcl.ScanReport), args.Error(1)
}

type mockUnlocker struct {
	mock.Mock
}

func (m *mockUnlocker) Unlock(ctx context.Context, customer string, actor customerlock.Actor) (*appcl.UnlockResult, error) {
	args := m.Called(ctx, customer, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcl.UnlockResult), args.Error(1)
}

type mockDocumentValidator struct {
	mock.Mock
}

func (m *mockDocumentValidator) Validate(ctx context.Context, ref appcl.DocumentRef) (*appcl.ValidateDocumentResult, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcl.ValidateDocumentResult), args.Error(1)
}

type countingRecorder struct {
	appcl.NopRecorder
	blocked []customerlock.DocumentType
}

func (r *countingRecorder) ObserveSaveBlocked(doc customerlock.DocumentType) {
	r.blocked = append(r.blocked, doc)
}
