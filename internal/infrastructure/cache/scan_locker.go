package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/invoicelock/internal/application/customerlock"
	"github.com/redis/go-redis/v9"
)

// RedisScanLocker serialises overdue scans across replicas with a Redis lock
type RedisScanLocker struct {
	locker *redislock.Client
}

// NewRedisScanLocker creates a distributed scan locker
func NewRedisScanLocker(client redis.UniversalClient) *RedisScanLocker {
	return &RedisScanLocker{locker: redislock.New(client)}
}

// Acquire obtains key for ttl without retrying
func (l *RedisScanLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	lock, err := l.locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("obtain scan lock: %w", err)
	}

	release := func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}
	return release, true, nil
}

// LocalScanLocker serialises scans within one process. Used when Redis is
// disabled; ttl is ignored.
type LocalScanLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalScanLocker creates an in-process scan locker
func NewLocalScanLocker() *LocalScanLocker {
	return &LocalScanLocker{held: make(map[string]bool)}
}

// Acquire takes key if nobody holds it
func (l *LocalScanLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true

	var once sync.Once
	release := func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}
	return release, true, nil
}

var (
	_ customerlock.ScanLocker = (*RedisScanLocker)(nil)
	_ customerlock.ScanLocker = (*LocalScanLocker)(nil)
)
