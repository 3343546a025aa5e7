package customerlock

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/domain/shared"
	"go.uber.org/zap"
)

// StatusService answers lock status queries from the stored lock records
type StatusService struct {
	lockRepo customerlock.LockRepository
	cache    StatusCache
	logger   *zap.Logger
}

// NewStatusService creates a new StatusService. cache may be nil.
func NewStatusService(lockRepo customerlock.LockRepository, cache StatusCache, logger *zap.Logger) *StatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusService{
		lockRepo: lockRepo,
		cache:    cache,
		logger:   logger.Named("lock_status"),
	}
}

// Check returns the lock status of a customer. Empty and unknown customers
// are reported as unlocked.
func (s *StatusService) Check(ctx context.Context, customer string) (*StatusResult, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return unlockedResult(""), nil
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, customer)
		if err != nil {
			s.logger.Warn("Status cache read failed", zap.String("customer", customer), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	lock, err := s.lockRepo.FindByCustomer(ctx, customer)
	var result *StatusResult
	switch {
	case errors.Is(err, shared.ErrNotFound):
		result = unlockedResult(customer)
	case err != nil:
		return nil, err
	default:
		result = ToStatusResult(lock)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, customer, result); err != nil {
			s.logger.Warn("Status cache write failed", zap.String("customer", customer), zap.Error(err))
		}
	}
	return result, nil
}

// QueryStatus implements StatusQuerier so the checker can run in-process
// against the local store
func (s *StatusService) QueryStatus(ctx context.Context, customer string) (*customerlock.LockStatus, error) {
	result, err := s.Check(ctx, customer)
	if err != nil {
		return nil, err
	}
	st := result.ToLockStatus()
	return &st, nil
}

// ListLocked returns every currently locked customer
func (s *StatusService) ListLocked(ctx context.Context) ([]StatusResult, error) {
	locks, err := s.lockRepo.FindLocked(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]StatusResult, 0, len(locks))
	for i := range locks {
		results = append(results, *ToStatusResult(&locks[i]))
	}
	return results, nil
}

var _ StatusQuerier = (*StatusService)(nil)
