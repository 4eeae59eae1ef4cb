package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/data-steve/rowcol-sub000/internal/apperrors"
	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	portsrepo "github.com/data-steve/rowcol-sub000/internal/core/ports/repositories"
)

type PgxEventRepository struct {
	pool *pgxpool.Pool
}

// NewPgxEventRepository creates a new repository for normalized events and the
// ingest rejection queue.
func NewPgxEventRepository(pool *pgxpool.Pool) portsrepo.EventRepositoryFacade {
	return &PgxEventRepository{pool: pool}
}

var _ portsrepo.EventRepositoryFacade = (*PgxEventRepository)(nil)

// SaveEvent persists an event. Events are append-only and keyed by their
// deterministic ID, so a conflicting insert is a no-op.
func (r *PgxEventRepository) SaveEvent(ctx context.Context, event domain.Event) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata for event %s: %w", event.EventID, err)
	}

	query := `
		INSERT INTO events (event_id, tenant_id, source, external_ref, amount, occurred_at, account_ref, payer_ref, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (event_id) DO NOTHING;
	`
	_, err = r.pool.Exec(ctx, query,
		event.EventID,
		event.TenantID,
		event.Source,
		event.ExternalRef,
		event.Amount,
		event.OccurredAt,
		event.AccountRef,
		event.PayerRef,
		metadata,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event %s: %w", event.EventID, err)
	}
	return nil
}

// FindEventByID retrieves a single event by its deterministic identifier.
func (r *PgxEventRepository) FindEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	query := `
		SELECT event_id, tenant_id, source, external_ref, amount, occurred_at, account_ref, payer_ref, metadata, created_at
		FROM events
		WHERE event_id = $1;
	`
	event, err := scanEvent(r.pool.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find event by ID %s: %w", eventID, err)
	}
	return event, nil
}

// ListDepositsSince retrieves positive bank events created after the checkpoint
// event, oldest first. The (created_at, event_id) row comparison keeps the cursor
// stable across events sharing a creation timestamp.
func (r *PgxEventRepository) ListDepositsSince(ctx context.Context, tenantID string, afterEventID string, limit int) ([]domain.Event, error) {
	query := `
		SELECT event_id, tenant_id, source, external_ref, amount, occurred_at, account_ref, payer_ref, metadata, created_at
		FROM events
		WHERE tenant_id = $1
		  AND source = 'bank'
		  AND amount > 0
		  AND ($2 = '' OR (created_at, event_id) > (SELECT created_at, event_id FROM events WHERE event_id = $2))
		ORDER BY created_at, event_id
		LIMIT $3;
	`
	rows, err := r.pool.Query(ctx, query, tenantID, afterEventID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposits for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit row: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deposit rows: %w", err)
	}
	return events, nil
}

// HasSettlementEvidence reports whether any bank or processor event exists for the
// payer with an amount within tolerance, occurring at or after since.
func (r *PgxEventRepository) HasSettlementEvidence(ctx context.Context, tenantID string, payerRef string, amount int64, tolerance int64, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM events
			WHERE tenant_id = $1
			  AND payer_ref = $2
			  AND source IN ('bank', 'processor_charge', 'invoice_payment')
			  AND occurred_at >= $3
			  AND abs(amount - $4) <= $5
		);
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, tenantID, payerRef, since, amount, tolerance).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check settlement evidence for payer %s: %w", payerRef, err)
	}
	return exists, nil
}

// SaveRejection queues a raw payload that failed normalization.
func (r *PgxEventRepository) SaveRejection(ctx context.Context, rejection domain.IngestRejection) error {
	query := `
		INSERT INTO ingest_rejections (rejection_id, tenant_id, source, external_ref, payload, reason, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.pool.Exec(ctx, query,
		rejection.RejectionID,
		rejection.TenantID,
		rejection.Source,
		rejection.ExternalRef,
		rejection.Payload,
		rejection.Reason,
		rejection.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rejection %s: %w", rejection.RejectionID, err)
	}
	return nil
}

// ListRejections lists queued normalization failures for a tenant, newest first.
func (r *PgxEventRepository) ListRejections(ctx context.Context, tenantID string, limit int) ([]domain.IngestRejection, error) {
	query := `
		SELECT rejection_id, tenant_id, source, external_ref, payload, reason, received_at
		FROM ingest_rejections
		WHERE tenant_id = $1
		ORDER BY received_at DESC
		LIMIT $2;
	`
	rows, err := r.pool.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rejections for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	rejections := []domain.IngestRejection{}
	for rows.Next() {
		var rejection domain.IngestRejection
		if err := rows.Scan(
			&rejection.RejectionID,
			&rejection.TenantID,
			&rejection.Source,
			&rejection.ExternalRef,
			&rejection.Payload,
			&rejection.Reason,
			&rejection.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rejection row: %w", err)
		}
		rejections = append(rejections, rejection)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rejection rows: %w", err)
	}
	return rejections, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var event domain.Event
	var metadata []byte
	if err := row.Scan(
		&event.EventID,
		&event.TenantID,
		&event.Source,
		&event.ExternalRef,
		&event.Amount,
		&event.OccurredAt,
		&event.AccountRef,
		&event.PayerRef,
		&metadata,
		&event.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for event %s: %w", event.EventID, err)
		}
	}
	return &event, nil
}
