package locking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data-steve/rowcol-sub000/internal/apperrors"
)

func TestMemoryRunLockerExclusivePerTenant(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryRunLocker()

	lock, err := locker.AcquireRunLock(ctx, "tenant-1", time.Minute)
	require.NoError(t, err)

	_, err = locker.AcquireRunLock(ctx, "tenant-1", time.Minute)
	assert.ErrorIs(t, err, apperrors.ErrRunLockConflict)

	require.NoError(t, lock.Release(ctx))

	relock, err := locker.AcquireRunLock(ctx, "tenant-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, relock.Release(ctx))
}

func TestMemoryRunLockerIndependentTenants(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryRunLocker()

	a, err := locker.AcquireRunLock(ctx, "tenant-a", time.Minute)
	require.NoError(t, err)
	defer a.Release(ctx)

	b, err := locker.AcquireRunLock(ctx, "tenant-b", time.Minute)
	require.NoError(t, err)
	defer b.Release(ctx)
}

func TestMemoryRunLockReleaseIdempotent(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryRunLocker()

	lock, err := locker.AcquireRunLock(ctx, "tenant-1", time.Minute)
	require.NoError(t, err)

	require.NoError(t, lock.Release(ctx))
	require.NoError(t, lock.Release(ctx))

	// A double release must not free a lock acquired in between.
	relock, err := locker.AcquireRunLock(ctx, "tenant-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, lock.Release(ctx))

	_, err = locker.AcquireRunLock(ctx, "tenant-1", time.Minute)
	assert.ErrorIs(t, err, apperrors.ErrRunLockConflict)
	require.NoError(t, relock.Release(ctx))
}
