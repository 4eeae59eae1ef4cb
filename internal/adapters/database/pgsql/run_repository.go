package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/data-steve/rowcol-sub000/internal/apperrors"
	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	portsrepo "github.com/data-steve/rowcol-sub000/internal/core/ports/repositories"
)

type PgxRunRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRunRepository creates a new repository for reconciliation run records.
func NewPgxRunRepository(pool *pgxpool.Pool) portsrepo.RunRepositoryFacade {
	return &PgxRunRepository{pool: pool}
}

var _ portsrepo.RunRepositoryFacade = (*PgxRunRepository)(nil)

// SaveRun persists a new run row.
func (r *PgxRunRepository) SaveRun(ctx context.Context, run domain.ReconRun) error {
	query := `
		INSERT INTO recon_runs (run_id, tenant_id, status, started_at, completed_at, checkpoint_event_id, deposits_seen, auto_applied, pending_review, exceptions_raised, deferred)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.pool.Exec(ctx, query,
		run.RunID,
		run.TenantID,
		run.Status,
		run.StartedAt,
		run.CompletedAt,
		run.CheckpointEventID,
		run.DepositsSeen,
		run.AutoApplied,
		run.PendingReview,
		run.ExceptionsRaised,
		run.Deferred,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}
	return nil
}

// UpdateRun persists the run's checkpoint cursor, counters and status.
func (r *PgxRunRepository) UpdateRun(ctx context.Context, run domain.ReconRun) error {
	query := `
		UPDATE recon_runs
		SET status = $2, completed_at = $3, checkpoint_event_id = $4,
		    deposits_seen = $5, auto_applied = $6, pending_review = $7,
		    exceptions_raised = $8, deferred = $9
		WHERE run_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		run.RunID,
		run.Status,
		run.CompletedAt,
		run.CheckpointEventID,
		run.DepositsSeen,
		run.AutoApplied,
		run.PendingReview,
		run.ExceptionsRaised,
		run.Deferred,
	)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", run.RunID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindLatestRun retrieves the most recent run for a tenant.
func (r *PgxRunRepository) FindLatestRun(ctx context.Context, tenantID string) (*domain.ReconRun, error) {
	query := `
		SELECT run_id, tenant_id, status, started_at, completed_at, checkpoint_event_id, deposits_seen, auto_applied, pending_review, exceptions_raised, deferred
		FROM recon_runs
		WHERE tenant_id = $1
		ORDER BY started_at DESC
		LIMIT 1;
	`
	var run domain.ReconRun
	err := r.pool.QueryRow(ctx, query, tenantID).Scan(
		&run.RunID,
		&run.TenantID,
		&run.Status,
		&run.StartedAt,
		&run.CompletedAt,
		&run.CheckpointEventID,
		&run.DepositsSeen,
		&run.AutoApplied,
		&run.PendingReview,
		&run.ExceptionsRaised,
		&run.Deferred,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest run for tenant %s: %w", tenantID, err)
	}
	return &run, nil
}
