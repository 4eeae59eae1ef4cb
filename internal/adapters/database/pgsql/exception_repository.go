package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/data-steve/rowcol-sub000/internal/apperrors"
	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	portsrepo "github.com/data-steve/rowcol-sub000/internal/core/ports/repositories"
)

type PgxExceptionRepository struct {
	pool *pgxpool.Pool
}

// NewPgxExceptionRepository creates a new repository for the review queue.
func NewPgxExceptionRepository(pool *pgxpool.Pool) portsrepo.ExceptionRepositoryFacade {
	return &PgxExceptionRepository{pool: pool}
}

var _ portsrepo.ExceptionRepositoryFacade = (*PgxExceptionRepository)(nil)

// SaveException persists a new open exception.
func (r *PgxExceptionRepository) SaveException(ctx context.Context, exception domain.Exception) error {
	query := `
		INSERT INTO exceptions (exception_id, tenant_id, kind, deposit_event_id, invoice_id, candidate_match_ids, status, opened_at, resolved_at, resolution)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.pool.Exec(ctx, query,
		exception.ExceptionID,
		exception.TenantID,
		exception.Kind,
		exception.DepositEventID,
		exception.InvoiceID,
		exception.CandidateMatchIDs,
		exception.Status,
		exception.OpenedAt,
		exception.ResolvedAt,
		exception.Resolution,
	)
	if err != nil {
		return fmt.Errorf("failed to insert exception %s: %w", exception.ExceptionID, err)
	}
	return nil
}

// MarkResolved transitions an open exception to RESOLVED.
func (r *PgxExceptionRepository) MarkResolved(ctx context.Context, exceptionID string, resolution string, resolvedAt time.Time) error {
	query := `
		UPDATE exceptions
		SET status = 'RESOLVED', resolution = $2, resolved_at = $3
		WHERE exception_id = $1 AND status = 'OPEN';
	`
	tag, err := r.pool.Exec(ctx, query, exceptionID, resolution, resolvedAt)
	if err != nil {
		return fmt.Errorf("failed to resolve exception %s: %w", exceptionID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is missing or it was already resolved.
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM exceptions WHERE exception_id = $1);`, exceptionID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check exception %s: %w", exceptionID, err)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return apperrors.ErrConflict
	}
	return nil
}

// FindExceptionByID retrieves a single exception.
func (r *PgxExceptionRepository) FindExceptionByID(ctx context.Context, exceptionID string) (*domain.Exception, error) {
	query := selectException + ` WHERE exception_id = $1;`
	exception, err := scanException(r.pool.QueryRow(ctx, query, exceptionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find exception by ID %s: %w", exceptionID, err)
	}
	return exception, nil
}

// ListExceptions retrieves exceptions for a tenant, optionally filtered by kind,
// newest first. A nil kind matches all kinds.
func (r *PgxExceptionRepository) ListExceptions(ctx context.Context, tenantID string, kind *domain.ExceptionKind, status domain.ExceptionStatus, limit int) ([]domain.Exception, error) {
	query := selectException + `
		WHERE tenant_id = $1
		  AND status = $2
		  AND ($3::text IS NULL OR kind = $3)
		ORDER BY opened_at DESC
		LIMIT $4;
	`
	rows, err := r.pool.Query(ctx, query, tenantID, status, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exceptions for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	exceptions := []domain.Exception{}
	for rows.Next() {
		exception, err := scanException(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exception row: %w", err)
		}
		exceptions = append(exceptions, *exception)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exception rows: %w", err)
	}
	return exceptions, nil
}

// HasOpenException reports whether an open exception of the given kind already
// references the invoice.
func (r *PgxExceptionRepository) HasOpenException(ctx context.Context, tenantID string, kind domain.ExceptionKind, invoiceID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM exceptions
			WHERE tenant_id = $1 AND kind = $2 AND invoice_id = $3 AND status = 'OPEN'
		);
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, tenantID, kind, invoiceID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check open exception for invoice %s: %w", invoiceID, err)
	}
	return exists, nil
}

const selectException = `
	SELECT exception_id, tenant_id, kind, deposit_event_id, invoice_id, candidate_match_ids, status, opened_at, resolved_at, resolution
	FROM exceptions
`

func scanException(row pgx.Row) (*domain.Exception, error) {
	var exception domain.Exception
	if err := row.Scan(
		&exception.ExceptionID,
		&exception.TenantID,
		&exception.Kind,
		&exception.DepositEventID,
		&exception.InvoiceID,
		&exception.CandidateMatchIDs,
		&exception.Status,
		&exception.OpenedAt,
		&exception.ResolvedAt,
		&exception.Resolution,
	); err != nil {
		return nil, err
	}
	return &exception, nil
}
