package customerlock

import (
	"context"
	"sync"
	"time"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Ports
// =============================================================================

// MockStatusQuerier is a mock implementation of StatusQuerier
type MockStatusQuerier struct {
	mock.Mock
}

func (m *MockStatusQuerier) QueryStatus(ctx context.Context, customer string) (*customerlock.LockStatus, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customerlock.LockStatus), args.Error(1)
}

// MockLockRepository is a mock implementation of customerlock.LockRepository
type MockLockRepository struct {
	mock.Mock
}

func (m *MockLockRepository) FindByCustomer(ctx context.Context, customer string) (*customerlock.CustomerLock, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customerlock.CustomerLock), args.Error(1)
}

func (m *MockLockRepository) FindLocked(ctx context.Context) ([]customerlock.CustomerLock, error) {
	args := m.Called(ctx)
	return args.Get(0).([]customerlock.CustomerLock), args.Error(1)
}

func (m *MockLockRepository) SaveWithLock(ctx context.Context, lock *customerlock.CustomerLock) error {
	args := m.Called(ctx, lock)
	return args.Error(0)
}

// MockInvoiceRepository is a mock implementation of customerlock.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindOverdue(ctx context.Context, cutoff time.Time) ([]customerlock.OverdueInvoice, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]customerlock.OverdueInvoice), args.Error(1)
}

// MockStatusCache is a mock implementation of StatusCache
type MockStatusCache struct {
	mock.Mock
}

func (m *MockStatusCache) Get(ctx context.Context, customer string) (*StatusResult, bool, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*StatusResult), args.Bool(1), args.Error(2)
}

func (m *MockStatusCache) Set(ctx context.Context, customer string, result *StatusResult) error {
	args := m.Called(ctx, customer, result)
	return args.Error(0)
}

func (m *MockStatusCache) Invalidate(ctx context.Context, customers ...string) error {
	args := m.Called(ctx, customers)
	return args.Error(0)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n LockNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// =============================================================================
// Fakes
// =============================================================================

// fakePresenter records every render call in order
type fakePresenter struct {
	mu      sync.Mutex
	calls   []string
	banners []customerlock.Banner
	notices []customerlock.Notice
	current *customerlock.Banner
	cleared int
}

func (p *fakePresenter) ShowBanner(b customerlock.Banner) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "show_banner")
	p.banners = append(p.banners, b)
	p.current = &b
}

func (p *fakePresenter) ClearBanner() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "clear_banner")
	p.current = nil
}

func (p *fakePresenter) ShowNotice(n customerlock.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "show_notice")
	p.notices = append(p.notices, n)
}

func (p *fakePresenter) ClearCustomer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "clear_customer")
	p.cleared++
}

func (p *fakePresenter) Banner() *customerlock.Banner {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *fakePresenter) Notices() []customerlock.Notice {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]customerlock.Notice(nil), p.notices...)
}

func (p *fakePresenter) Banners() []customerlock.Banner {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]customerlock.Banner(nil), p.banners...)
}

// fakeLocker hands out the scan lock once
type fakeLocker struct {
	mu       sync.Mutex
	held     bool
	err      error
	released int
}

func (l *fakeLocker) Acquire(_ context.Context, _ string, _ time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held {
		return nil, false, nil
	}
	l.held = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.held = false
		l.released++
		return nil
	}, true, nil
}

// countingRecorder counts recorder calls
type countingRecorder struct {
	NopRecorder
	mu       sync.Mutex
	checks   map[customerlock.Severity]int
	failOpen int
	stale    int
	blocked  int
	scans    int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{checks: make(map[customerlock.Severity]int)}
}

func (r *countingRecorder) ObserveCheck(_ customerlock.DocumentType, sev customerlock.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[sev]++
}

func (r *countingRecorder) ObserveFailOpen(customerlock.DocumentType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOpen++
}

func (r *countingRecorder) ObserveStaleResponse(customerlock.DocumentType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stale++
}

func (r *countingRecorder) ObserveSaveBlocked(customerlock.DocumentType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocked++
}

func (r *countingRecorder) ObserveScan(ScanReport, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans++
}

// =============================================================================
// Fixtures
// =============================================================================

func hardStatus() *customerlock.LockStatus {
	return &customerlock.LockStatus{Locked: true, Severity: customerlock.SeverityHard, Status: customerlock.StatusHardLocked, DaysOverdue: 55}
}

func softStatus() *customerlock.LockStatus {
	return &customerlock.LockStatus{Locked: true, Severity: customerlock.SeveritySoft, Status: customerlock.StatusSoftLocked, DaysOverdue: 42}
}

func unlockedStatus() *customerlock.LockStatus {
	st := customerlock.Unlocked()
	return &st
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
