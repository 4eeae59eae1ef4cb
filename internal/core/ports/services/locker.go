package services

import (
	"context"
	"time"
)

// RunLock is a held per-tenant reconciliation lock.
type RunLock interface {
	// Refresh extends the lock's TTL while a long run is still making progress.
	Refresh(ctx context.Context, ttl time.Duration) error

	// Release frees the lock. Safe to call once the run commits or aborts.
	Release(ctx context.Context) error
}

// RunLocker serializes reconciliation runs per tenant. No two concurrent runs may
// process the same tenant's deposit set.
type RunLocker interface {
	// AcquireRunLock obtains the tenant's run lock or fails with an error wrapping
	// apperrors.ErrRunLockConflict when it is already held.
	AcquireRunLock(ctx context.Context, tenantID string, ttl time.Duration) (RunLock, error)
}
