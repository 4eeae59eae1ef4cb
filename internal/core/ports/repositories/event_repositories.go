package repositories

import (
	"context"
	"time"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
)

// EventReader defines read operations for normalized events.
type EventReader interface {
	// FindEventByID retrieves a single event by its deterministic identifier.
	FindEventByID(ctx context.Context, eventID string) (*domain.Event, error)

	// ListDepositsSince retrieves bank deposit events for a tenant created after the
	// checkpoint event, ordered by creation for stable checkpointing. An empty
	// afterEventID starts from the beginning.
	ListDepositsSince(ctx context.Context, tenantID string, afterEventID string, limit int) ([]domain.Event, error)

	// HasSettlementEvidence reports whether any bank or processor event exists for
	// the payer with an amount within tolerance of amount, occurring at or after
	// since. Used by the ghost-receivable sweep.
	HasSettlementEvidence(ctx context.Context, tenantID string, payerRef string, amount int64, tolerance int64, since time.Time) (bool, error)
}

// EventWriter defines write operations for normalized events.
type EventWriter interface {
	// SaveEvent persists an event. Saving an event whose ID already exists is a
	// no-op: events are append-only and ingestion is idempotent.
	SaveEvent(ctx context.Context, event domain.Event) error
}

// RejectionWriter records raw payloads that failed normalization.
type RejectionWriter interface {
	SaveRejection(ctx context.Context, rejection domain.IngestRejection) error
}

// RejectionReader lists queued normalization failures for operator triage.
type RejectionReader interface {
	ListRejections(ctx context.Context, tenantID string, limit int) ([]domain.IngestRejection, error)
}

// EventRepositoryFacade combines all event-related repository interfaces.
type EventRepositoryFacade interface {
	EventReader
	EventWriter
	RejectionWriter
	RejectionReader
}
