package services

import (
	"context"
	"time"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
)

// GraphSvcFacade is the identity graph: normalized events connected by typed,
// confidence-scored relationships.
type GraphSvcFacade interface {
	// AddEvent stores a normalized event. Idempotent on event ID.
	AddEvent(ctx context.Context, event domain.Event) error

	// AddEdge inserts a single typed edge. Idempotent on (from, to, type).
	AddEdge(ctx context.Context, fromID, toID string, edgeType domain.EdgeType, source domain.EdgeSource, confidence float64) error

	// AddComposition inserts the full COMPOSED_OF edge set under a parent after
	// validating that the children's signed amounts sum to the parent's amount
	// within tolerance. On mismatch nothing is inserted and the error wraps
	// apperrors.ErrDecompositionMismatch.
	AddComposition(ctx context.Context, parentID string, childIDs []string, source domain.EdgeSource, confidence float64) error

	// GetCandidates returns the events linked to eventID by edges of the given
	// type (either direction).
	GetCandidates(ctx context.Context, eventID string, edgeType domain.EdgeType) ([]domain.Event, error)

	// GetOpenInvoices returns the capped candidate pool for a payer: OPEN invoices
	// issued within the matching window around refDate.
	GetOpenInvoices(ctx context.Context, tenantID string, payerRef string, refDate time.Time) ([]domain.Invoice, error)

	// FindSettlementPayout returns the payout event linked to a bank deposit by a
	// SETTLES edge, or apperrors.ErrNotFound.
	FindSettlementPayout(ctx context.Context, depositEventID string) (*domain.Event, error)
}
