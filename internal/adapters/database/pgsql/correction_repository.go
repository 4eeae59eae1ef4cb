package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	portsrepo "github.com/data-steve/rowcol-sub000/internal/core/ports/repositories"
)

type PgxCorrectionRepository struct {
	pool *pgxpool.Pool
}

// NewPgxCorrectionRepository creates a new repository for persisted human decisions.
func NewPgxCorrectionRepository(pool *pgxpool.Pool) portsrepo.CorrectionRepositoryFacade {
	return &PgxCorrectionRepository{pool: pool}
}

var _ portsrepo.CorrectionRepositoryFacade = (*PgxCorrectionRepository)(nil)

// SaveCorrection appends a correction. There is no update or delete: corrections
// are the audit trail.
func (r *PgxCorrectionRepository) SaveCorrection(ctx context.Context, correction domain.Correction) error {
	query := `
		INSERT INTO corrections (correction_id, tenant_id, exception_id, payer_ref, chosen_match_id, chosen_invoice_ids, subset_size, rationale, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.pool.Exec(ctx, query,
		correction.CorrectionID,
		correction.TenantID,
		correction.ExceptionID,
		correction.PayerRef,
		correction.ChosenMatchID,
		correction.ChosenInvoiceIDs,
		correction.SubsetSize,
		correction.Rationale,
		correction.CreatedAt,
		correction.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert correction %s: %w", correction.CorrectionID, err)
	}
	return nil
}

// ListCorrectionsByPayer retrieves all corrections recorded for a payer, oldest
// first.
func (r *PgxCorrectionRepository) ListCorrectionsByPayer(ctx context.Context, tenantID string, payerRef string) ([]domain.Correction, error) {
	query := `
		SELECT correction_id, tenant_id, exception_id, payer_ref, chosen_match_id, chosen_invoice_ids, subset_size, rationale, created_at, created_by
		FROM corrections
		WHERE tenant_id = $1 AND payer_ref = $2
		ORDER BY created_at;
	`
	rows, err := r.pool.Query(ctx, query, tenantID, payerRef)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections for payer %s: %w", payerRef, err)
	}
	defer rows.Close()

	corrections := []domain.Correction{}
	for rows.Next() {
		var correction domain.Correction
		if err := rows.Scan(
			&correction.CorrectionID,
			&correction.TenantID,
			&correction.ExceptionID,
			&correction.PayerRef,
			&correction.ChosenMatchID,
			&correction.ChosenInvoiceIDs,
			&correction.SubsetSize,
			&correction.Rationale,
			&correction.CreatedAt,
			&correction.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan correction row: %w", err)
		}
		corrections = append(corrections, correction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating correction rows: %w", err)
	}
	return corrections, nil
}
