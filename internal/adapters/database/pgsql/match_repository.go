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

type PgxMatchRepository struct {
	pool *pgxpool.Pool
}

// NewPgxMatchRepository creates a new repository for candidate matches.
func NewPgxMatchRepository(pool *pgxpool.Pool) portsrepo.MatchRepositoryFacade {
	return &PgxMatchRepository{pool: pool}
}

var _ portsrepo.MatchRepositoryFacade = (*PgxMatchRepository)(nil)

// SaveMatches persists a batch of candidate matches.
func (r *PgxMatchRepository) SaveMatches(ctx context.Context, matches []domain.Match) error {
	if len(matches) == 0 {
		return nil
	}

	query := `
		INSERT INTO matches (match_id, tenant_id, deposit_event_id, invoice_ids, residual, confidence, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (match_id) DO UPDATE SET status = EXCLUDED.status;
	`
	batch := &pgx.Batch{}
	for _, match := range matches {
		batch.Queue(query,
			match.MatchID,
			match.TenantID,
			match.DepositEventID,
			match.InvoiceIDs,
			match.Residual,
			match.Confidence,
			match.Status,
			match.CreatedAt,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute match batch: %w", err)
	}
	return nil
}

// UpdateMatchStatus transitions a match to the given status.
func (r *PgxMatchRepository) UpdateMatchStatus(ctx context.Context, matchID string, status domain.MatchStatus) error {
	query := `UPDATE matches SET status = $2 WHERE match_id = $1;`
	tag, err := r.pool.Exec(ctx, query, matchID, status)
	if err != nil {
		return fmt.Errorf("failed to update match %s status: %w", matchID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindMatchByID retrieves a single match.
func (r *PgxMatchRepository) FindMatchByID(ctx context.Context, matchID string) (*domain.Match, error) {
	query := `
		SELECT match_id, tenant_id, deposit_event_id, invoice_ids, residual, confidence, status, created_at
		FROM matches
		WHERE match_id = $1;
	`
	match, err := scanMatch(r.pool.QueryRow(ctx, query, matchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find match by ID %s: %w", matchID, err)
	}
	return match, nil
}

// ListMatchesByDeposit retrieves all matches recorded for a deposit, best first.
func (r *PgxMatchRepository) ListMatchesByDeposit(ctx context.Context, depositEventID string) ([]domain.Match, error) {
	query := `
		SELECT match_id, tenant_id, deposit_event_id, invoice_ids, residual, confidence, status, created_at
		FROM matches
		WHERE deposit_event_id = $1
		ORDER BY confidence DESC, match_id;
	`
	rows, err := r.pool.Query(ctx, query, depositEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for deposit %s: %w", depositEventID, err)
	}
	defer rows.Close()

	matches := []domain.Match{}
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, *match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var match domain.Match
	if err := row.Scan(
		&match.MatchID,
		&match.TenantID,
		&match.DepositEventID,
		&match.InvoiceIDs,
		&match.Residual,
		&match.Confidence,
		&match.Status,
		&match.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &match, nil
}
