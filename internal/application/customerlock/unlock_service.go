package customerlock

import (
	"context"
	"strings"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/domain/shared"
	"go.uber.org/zap"
)

// UnlockService lifts customer locks on behalf of authorised users
type UnlockService struct {
	lockRepo  customerlock.LockRepository
	cache     StatusCache
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewUnlockService creates a new UnlockService. cache and publisher may be nil.
func NewUnlockService(lockRepo customerlock.LockRepository, cache StatusCache, publisher shared.EventPublisher, logger *zap.Logger) *UnlockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnlockService{
		lockRepo:  lockRepo,
		cache:     cache,
		publisher: publisher,
		logger:    logger.Named("customer_unlock"),
	}
}

// Unlock clears the lock of a customer. Only the administrator or a holder of
// the Customer Unlocker role may do so.
func (s *UnlockService) Unlock(ctx context.Context, customer string, actor customerlock.Actor) (*UnlockResult, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Customer is required")
	}

	lock, err := s.lockRepo.FindByCustomer(ctx, customer)
	if err != nil {
		return nil, err
	}

	previous := lock.Severity()
	result := &UnlockResult{
		Customer:         lock.Customer,
		PreviousSeverity: previous,
		UnlockedBy:       actor.User,
	}
	if !lock.Locked {
		return result, nil
	}

	if err := lock.Unlock(actor); err != nil {
		s.logger.Warn("Unlock refused",
			zap.String("customer", customer),
			zap.String("user", actor.User),
		)
		return nil, err
	}
	if err := s.lockRepo.SaveWithLock(ctx, lock); err != nil {
		return nil, err
	}
	result.Unlocked = true

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, customer); err != nil {
			s.logger.Warn("Failed to invalidate cached lock status", zap.String("customer", customer), zap.Error(err))
		}
	}

	events := lock.PullDomainEvents()
	if s.publisher != nil && len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish unlock event", zap.Error(err))
		}
	}

	s.logger.Info("Customer unlocked",
		zap.String("customer", customer),
		zap.Stringer("previous_severity", previous),
		zap.String("user", actor.User),
	)
	return result, nil
}
