package repositories

import (
	"context"
	"time"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
)

// ExceptionReader defines read operations for the review queue.
type ExceptionReader interface {
	// FindExceptionByID retrieves a single exception.
	FindExceptionByID(ctx context.Context, exceptionID string) (*domain.Exception, error)

	// ListExceptions retrieves exceptions for a tenant, optionally filtered by kind,
	// newest first. A nil kind matches all kinds.
	ListExceptions(ctx context.Context, tenantID string, kind *domain.ExceptionKind, status domain.ExceptionStatus, limit int) ([]domain.Exception, error)

	// HasOpenException reports whether an open exception of the given kind already
	// references the invoice. Used to dedupe the periodic ghost sweep.
	HasOpenException(ctx context.Context, tenantID string, kind domain.ExceptionKind, invoiceID string) (bool, error)
}

// ExceptionWriter defines write operations for the review queue.
type ExceptionWriter interface {
	// SaveException persists a new open exception.
	SaveException(ctx context.Context, exception domain.Exception) error

	// MarkResolved transitions an exception to RESOLVED with the given resolution
	// note. Returns apperrors.ErrConflict if it is already resolved.
	MarkResolved(ctx context.Context, exceptionID string, resolution string, resolvedAt time.Time) error
}

// ExceptionRepositoryFacade combines exception repository interfaces.
type ExceptionRepositoryFacade interface {
	ExceptionReader
	ExceptionWriter
}
