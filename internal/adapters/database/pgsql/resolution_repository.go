package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/data-steve/rowcol-sub000/internal/apperrors"
	portsrepo "github.com/data-steve/rowcol-sub000/internal/core/ports/repositories"
)

type PgxResolutionRepository struct {
	pool *pgxpool.Pool
}

// NewPgxResolutionRepository creates the transactional writer for resolved deposits.
func NewPgxResolutionRepository(pool *pgxpool.Pool) portsrepo.ResolutionWriter {
	return &PgxResolutionRepository{pool: pool}
}

var _ portsrepo.ResolutionWriter = (*PgxResolutionRepository)(nil)

// CommitResolution applies everything a resolved deposit writes in one database
// transaction: the optimistic invoice claims, the winning match, the PAID_BY edges
// and the single ledger posting. Any failure rolls the whole commit back.
func (r *PgxResolutionRepository) CommitResolution(ctx context.Context, commit portsrepo.ResolutionCommit) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin resolution transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Claim the invoices with an optimistic check-then-set. Fewer rows than claims
	// means a concurrent writer got there first.
	claimQuery := `
		UPDATE invoices
		SET status = 'MATCHED', last_updated_at = $2
		WHERE invoice_id = ANY($1) AND status = 'OPEN';
	`
	tag, err := tx.Exec(ctx, claimQuery, commit.ClaimIDs, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to claim invoices: %w", err)
	}
	if tag.RowsAffected() != int64(len(commit.ClaimIDs)) {
		return fmt.Errorf("claimed %d of %d invoices: %w", tag.RowsAffected(), len(commit.ClaimIDs), apperrors.ErrInvoiceClaimConflict)
	}

	matchQuery := `
		INSERT INTO matches (match_id, tenant_id, deposit_event_id, invoice_ids, residual, confidence, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (match_id) DO UPDATE SET status = EXCLUDED.status;
	`
	_, err = tx.Exec(ctx, matchQuery,
		commit.Match.MatchID,
		commit.Match.TenantID,
		commit.Match.DepositEventID,
		commit.Match.InvoiceIDs,
		commit.Match.Residual,
		commit.Match.Confidence,
		commit.Match.Status,
		commit.Match.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record winning match %s: %w", commit.Match.MatchID, err)
	}

	if len(commit.SupersedeMatchIDs) > 0 {
		supersedeQuery := `UPDATE matches SET status = 'SUPERSEDED' WHERE match_id = ANY($1);`
		if _, err := tx.Exec(ctx, supersedeQuery, commit.SupersedeMatchIDs); err != nil {
			return fmt.Errorf("failed to supersede sibling matches: %w", err)
		}
	}

	edgeQuery := `
		INSERT INTO edges (edge_id, from_event_id, to_event_id, edge_type, confidence, source, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (from_event_id, to_event_id, edge_type) DO NOTHING;
	`
	batch := &pgx.Batch{}
	for _, edge := range commit.Edges {
		batch.Queue(edgeQuery,
			edge.EdgeID,
			edge.FromEventID,
			edge.ToEventID,
			edge.Type,
			edge.Confidence,
			edge.Source,
			edge.CreatedAt,
			edge.CreatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute edge batch for match %s: %w", commit.Match.MatchID, err)
	}

	entry := commit.LedgerEntry
	_, err = tx.Exec(ctx, insertLedgerEntry,
		entry.EntryID,
		entry.TenantID,
		entry.SettlementEventID,
		entry.MatchID,
		entry.Amount,
		entry.Direction,
		entry.PostedAt,
		entry.ReversesEntryID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("settlement event %s: %w", entry.SettlementEventID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to post ledger entry for settlement event %s: %w", entry.SettlementEventID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit resolution for match %s: %w", commit.Match.MatchID, err)
	}
	return nil
}
