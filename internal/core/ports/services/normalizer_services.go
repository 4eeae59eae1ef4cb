package services

import (
	"context"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	"github.com/data-steve/rowcol-sub000/internal/dto"
)

// NormalizerSvcFacade converts heterogeneous raw payloads into the uniform internal
// event representation and feeds them into the identity graph.
type NormalizerSvcFacade interface {
	// Normalize converts a single raw payload into an Event. Returns an error
	// wrapping apperrors.ErrMalformedEvent when the amount or timestamp is absent
	// or unparseable.
	Normalize(ctx context.Context, tenantID string, raw dto.RawEvent) (*domain.Event, error)

	// IngestBatch normalizes and persists a connector delivery. Malformed payloads
	// are queued for operator triage; duplicates are no-ops. The summary counts
	// both outcomes.
	IngestBatch(ctx context.Context, tenantID string, raws []dto.RawEvent) (*dto.IngestSummary, error)

	// ListRejections returns the operator triage queue, newest first.
	ListRejections(ctx context.Context, tenantID string, limit int) ([]domain.IngestRejection, error)
}
