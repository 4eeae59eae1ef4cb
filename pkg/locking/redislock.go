package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/data-steve/rowcol-sub000/internal/apperrors"
	portssvc "github.com/data-steve/rowcol-sub000/internal/core/ports/services"
)

// RedisRunLocker serializes reconciliation runs per tenant using redislock.
type RedisRunLocker struct {
	locker *redislock.Client
}

// NewRedisRunLocker creates a run locker over an existing redis client.
func NewRedisRunLocker(rdb *redis.Client) *RedisRunLocker {
	return &RedisRunLocker{locker: redislock.New(rdb)}
}

var _ portssvc.RunLocker = (*RedisRunLocker)(nil)

// AcquireRunLock obtains the tenant's run lock. A held lock maps to
// apperrors.ErrRunLockConflict so callers can retry with backoff.
func (l *RedisRunLocker) AcquireRunLock(ctx context.Context, tenantID string, ttl time.Duration) (portssvc.RunLock, error) {
	key := fmt.Sprintf("recon_run:%s", tenantID)
	lock, err := l.locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: tenant %s", apperrors.ErrRunLockConflict, tenantID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain run lock for tenant %s: %w", tenantID, err)
	}
	return &redisRunLock{lock: lock}, nil
}

type redisRunLock struct {
	lock *redislock.Lock
}

func (l *redisRunLock) Refresh(ctx context.Context, ttl time.Duration) error {
	if err := l.lock.Refresh(ctx, ttl, nil); err != nil {
		return fmt.Errorf("failed to refresh run lock: %w", err)
	}
	return nil
}

func (l *redisRunLock) Release(ctx context.Context) error {
	if err := l.lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}
