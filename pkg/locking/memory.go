package locking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/data-steve/rowcol-sub000/internal/apperrors"
	portssvc "github.com/data-steve/rowcol-sub000/internal/core/ports/services"
)

// MemoryRunLocker is a process-local RunLocker for single-node deployments and
// tests. It provides the same exclusivity guarantee as the redis locker but only
// within one process.
type MemoryRunLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryRunLocker creates an in-process run locker.
func NewMemoryRunLocker() *MemoryRunLocker {
	return &MemoryRunLocker{held: make(map[string]struct{})}
}

var _ portssvc.RunLocker = (*MemoryRunLocker)(nil)

func (l *MemoryRunLocker) AcquireRunLock(_ context.Context, tenantID string, _ time.Duration) (portssvc.RunLock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[tenantID]; ok {
		return nil, fmt.Errorf("%w: tenant %s", apperrors.ErrRunLockConflict, tenantID)
	}
	l.held[tenantID] = struct{}{}
	return &memoryRunLock{locker: l, tenantID: tenantID}, nil
}

type memoryRunLock struct {
	locker   *MemoryRunLocker
	tenantID string
	once     sync.Once
}

func (l *memoryRunLock) Refresh(context.Context, time.Duration) error { return nil }

func (l *memoryRunLock) Release(context.Context) error {
	l.once.Do(func() {
		l.locker.mu.Lock()
		delete(l.locker.held, l.tenantID)
		l.locker.mu.Unlock()
	})
	return nil
}
