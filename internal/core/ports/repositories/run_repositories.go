package repositories

import (
	"context"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
)

// RunReader defines read operations for reconciliation run records.
type RunReader interface {
	// FindLatestRun retrieves the most recent run for a tenant, or
	// apperrors.ErrNotFound when the tenant has never run.
	FindLatestRun(ctx context.Context, tenantID string) (*domain.ReconRun, error)
}

// RunWriter defines write operations for reconciliation run records.
type RunWriter interface {
	// SaveRun persists a new run row.
	SaveRun(ctx context.Context, run domain.ReconRun) error

	// UpdateRun persists the run's checkpoint cursor, counters and status.
	UpdateRun(ctx context.Context, run domain.ReconRun) error
}

// RunRepositoryFacade combines run repository interfaces.
type RunRepositoryFacade interface {
	RunReader
	RunWriter
}
