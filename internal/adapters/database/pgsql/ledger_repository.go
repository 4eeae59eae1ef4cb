package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/data-steve/rowcol-sub000/internal/apperrors"
	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	portsrepo "github.com/data-steve/rowcol-sub000/internal/core/ports/repositories"
)

// pgUniqueViolation is the Postgres error code for unique constraint violations.
const pgUniqueViolation = "23505"

type PgxLedgerRepository struct {
	pool *pgxpool.Pool
}

// NewPgxLedgerRepository creates a new repository for posted cash ledger entries.
func NewPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{pool: pool}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// SaveEntry posts a new ledger entry. The unique index on settlement_event_id
// enforces the count-once invariant; a violation surfaces as ErrDuplicate.
func (r *PgxLedgerRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	_, err := r.pool.Exec(ctx, insertLedgerEntry,
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
		return fmt.Errorf("failed to insert ledger entry %s: %w", entry.EntryID, err)
	}
	return nil
}

// FindEntryBySettlementEvent retrieves the entry posted for a settlement event.
func (r *PgxLedgerRepository) FindEntryBySettlementEvent(ctx context.Context, settlementEventID string) (*domain.LedgerEntry, error) {
	query := selectLedgerEntry + ` WHERE settlement_event_id = $1 AND reverses_entry_id IS NULL;`
	entry, err := scanLedgerEntry(r.pool.QueryRow(ctx, query, settlementEventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ledger entry for settlement event %s: %w", settlementEventID, err)
	}
	return entry, nil
}

// ListEntries retrieves posted entries for a tenant, newest first. A non-nil
// postedBefore cursor pages further back.
func (r *PgxLedgerRepository) ListEntries(ctx context.Context, tenantID string, limit int, postedBefore *time.Time) ([]domain.LedgerEntry, error) {
	query := selectLedgerEntry + `
		WHERE tenant_id = $1
		  AND ($2::timestamptz IS NULL OR posted_at < $2)
		ORDER BY posted_at DESC
		LIMIT $3;
	`
	rows, err := r.pool.Query(ctx, query, tenantID, postedBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}
	return entries, nil
}

const insertLedgerEntry = `
	INSERT INTO cash_ledger_entries (entry_id, tenant_id, settlement_event_id, match_id, amount, direction, posted_at, reverses_entry_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

const selectLedgerEntry = `
	SELECT entry_id, tenant_id, settlement_event_id, match_id, amount, direction, posted_at, reverses_entry_id
	FROM cash_ledger_entries
`

func scanLedgerEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	if err := row.Scan(
		&entry.EntryID,
		&entry.TenantID,
		&entry.SettlementEventID,
		&entry.MatchID,
		&entry.Amount,
		&entry.Direction,
		&entry.PostedAt,
		&entry.ReversesEntryID,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
