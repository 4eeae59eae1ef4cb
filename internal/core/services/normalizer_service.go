package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/data-steve/rowcol-sub000/internal/apperrors"
	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	portsrepo "github.com/data-steve/rowcol-sub000/internal/core/ports/repositories"
	portssvc "github.com/data-steve/rowcol-sub000/internal/core/ports/services"
	"github.com/data-steve/rowcol-sub000/internal/dto"
	"github.com/data-steve/rowcol-sub000/internal/middleware"
)

// Metadata keys connectors use to declare relationships alongside a payout event.
const (
	metaBankRef      = "bank_ref"      // external ref of the bank deposit this payout settles to
	metaComposedRefs = "composed_refs" // comma-separated external refs of the charges a payout nets
	metaInvoiceID    = "invoice_id"    // operations-system invoice identifier
	metaPaidAt       = "paid_at"       // operations-system "paid" marker (RFC3339)
	metaVoid         = "void"          // "true" voids the invoice
)

// normalizerService converts raw connector payloads into the uniform internal
// event representation and feeds the identity graph.
type normalizerService struct {
	eventRepo   portsrepo.EventRepositoryFacade
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	graphSvc    portssvc.GraphSvcFacade
}

// NewNormalizerService creates a new normalizer service.
func NewNormalizerService(eventRepo portsrepo.EventRepositoryFacade, invoiceRepo portsrepo.InvoiceRepositoryFacade, graphSvc portssvc.GraphSvcFacade) portssvc.NormalizerSvcFacade {
	return &normalizerService{
		eventRepo:   eventRepo,
		invoiceRepo: invoiceRepo,
		graphSvc:    graphSvc,
	}
}

var _ portssvc.NormalizerSvcFacade = (*normalizerService)(nil)

// Normalize converts a single raw payload into an Event. The event ID is derived
// deterministically from (source, external_ref) so re-ingestion is idempotent.
func (s *normalizerService) Normalize(ctx context.Context, tenantID string, raw dto.RawEvent) (*domain.Event, error) {
	source := domain.EventSource(raw.Source)
	if !domain.ValidSource(source) {
		return nil, fmt.Errorf("%w: unknown source %q", apperrors.ErrMalformedEvent, raw.Source)
	}
	if raw.ExternalRef == "" {
		return nil, fmt.Errorf("%w: external ref is required", apperrors.ErrMalformedEvent)
	}

	amount, err := minorUnitsFromString(raw.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q: %v", apperrors.ErrMalformedEvent, raw.Amount, err)
	}

	occurredAt, err := time.Parse(time.RFC3339, raw.OccurredAt)
	if err != nil {
		return nil, fmt.Errorf("%w: occurredAt %q: %v", apperrors.ErrMalformedEvent, raw.OccurredAt, err)
	}

	return &domain.Event{
		EventID:     domain.NewEventID(source, raw.ExternalRef),
		TenantID:    tenantID,
		Source:      source,
		ExternalRef: raw.ExternalRef,
		Amount:      amount,
		OccurredAt:  occurredAt.UTC(),
		AccountRef:  raw.AccountRef,
		PayerRef:    raw.PayerRef,
		Metadata:    raw.Metadata,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// IngestBatch normalizes and persists a connector delivery. Malformed payloads go
// to the operator rejection queue; nothing is silently dropped.
func (s *normalizerService) IngestBatch(ctx context.Context, tenantID string, raws []dto.RawEvent) (*dto.IngestSummary, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	summary := &dto.IngestSummary{}

	for _, raw := range raws {
		event, err := s.Normalize(ctx, tenantID, raw)
		if err != nil {
			if errors.Is(err, apperrors.ErrMalformedEvent) {
				if rerr := s.rejectPayload(ctx, tenantID, raw, err); rerr != nil {
					return nil, rerr
				}
				summary.Rejected++
				continue
			}
			return nil, err
		}

		if err := s.graphSvc.AddEvent(ctx, *event); err != nil {
			logger.Error("Failed to persist normalized event", slog.String("event_id", event.EventID), slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to persist event %s: %w", event.EventID, err)
		}
		summary.Accepted++

		if err := s.applySideEffects(ctx, tenantID, event, raw); err != nil {
			return nil, err
		}
	}

	logger.Info("Ingest batch processed", slog.Int("accepted", summary.Accepted), slog.Int("rejected", summary.Rejected))
	return summary, nil
}

// applySideEffects materializes the invoice record and any system-declared edges a
// normalized event carries in its metadata.
func (s *normalizerService) applySideEffects(ctx context.Context, tenantID string, event *domain.Event, raw dto.RawEvent) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	switch event.Source {
	case domain.SourceInvoice:
		invoice, err := invoiceFromEvent(event)
		if err != nil {
			if rerr := s.rejectPayload(ctx, tenantID, raw, err); rerr != nil {
				return rerr
			}
			return nil
		}
		if err := s.invoiceRepo.SaveInvoice(ctx, *invoice); err != nil {
			return fmt.Errorf("failed to upsert invoice %s: %w", invoice.InvoiceID, err)
		}

	case domain.SourceProcessorPayout:
		if bankRef := event.Metadata[metaBankRef]; bankRef != "" {
			bankEventID := domain.NewEventID(domain.SourceBank, bankRef)
			err := s.graphSvc.AddEdge(ctx, event.EventID, bankEventID, domain.EdgeSettles, domain.EdgeSystemDeclared, 1.0)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("failed to record settles edge for payout %s: %w", event.EventID, err)
			}
		}
		if refs := event.Metadata[metaComposedRefs]; refs != "" {
			childIDs := make([]string, 0)
			for _, ref := range strings.Split(refs, ",") {
				if ref = strings.TrimSpace(ref); ref != "" {
					childIDs = append(childIDs, domain.NewEventID(domain.SourceProcessorCharge, ref))
				}
			}
			err := s.graphSvc.AddComposition(ctx, event.EventID, childIDs, domain.EdgeSystemDeclared, 1.0)
			if errors.Is(err, apperrors.ErrDecompositionMismatch) {
				// The payout's declared children do not sum to its amount. The edge
				// set is rejected and queued for triage; the payout event itself
				// stays in the graph.
				logger.Warn("Rejected payout decomposition", slog.String("event_id", event.EventID), slog.String("error", err.Error()))
				if rerr := s.rejectPayload(ctx, tenantID, raw, err); rerr != nil {
					return rerr
				}
				return nil
			}
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("failed to record composition for payout %s: %w", event.EventID, err)
			}
		}
	}
	return nil
}

func (s *normalizerService) rejectPayload(ctx context.Context, tenantID string, raw dto.RawEvent, cause error) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	payload, err := json.Marshal(raw)
	if err != nil {
		payload = []byte(fmt.Sprintf("%+v", raw))
	}
	rejection := domain.IngestRejection{
		RejectionID: uuid.NewString(),
		TenantID:    tenantID,
		Source:      raw.Source,
		ExternalRef: raw.ExternalRef,
		Payload:     string(payload),
		Reason:      cause.Error(),
		ReceivedAt:  time.Now().UTC(),
	}
	if err := s.eventRepo.SaveRejection(ctx, rejection); err != nil {
		logger.Error("Failed to queue rejected payload", slog.String("external_ref", raw.ExternalRef), slog.String("error", err.Error()))
		return fmt.Errorf("failed to queue rejected payload %s: %w", raw.ExternalRef, err)
	}
	logger.Warn("Rejected raw payload", slog.String("source", raw.Source), slog.String("external_ref", raw.ExternalRef), slog.String("reason", cause.Error()))
	return nil
}

// ListRejections returns the operator triage queue, newest first.
func (s *normalizerService) ListRejections(ctx context.Context, tenantID string, limit int) ([]domain.IngestRejection, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rejections, err := s.eventRepo.ListRejections(ctx, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingest rejections: %w", err)
	}
	return rejections, nil
}

// invoiceFromEvent builds the invoice record an invoice-source event describes.
func invoiceFromEvent(event *domain.Event) (*domain.Invoice, error) {
	invoiceID := event.Metadata[metaInvoiceID]
	if invoiceID == "" {
		invoiceID = event.ExternalRef
	}

	status := domain.InvoiceOpen
	if event.Metadata[metaVoid] == "true" {
		status = domain.InvoiceVoid
	}

	var externalPaidAt *time.Time
	if raw := event.Metadata[metaPaidAt]; raw != "" {
		paidAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: paid_at %q: %v", apperrors.ErrMalformedEvent, raw, err)
		}
		utc := paidAt.UTC()
		externalPaidAt = &utc
	}

	now := time.Now().UTC()
	return &domain.Invoice{
		InvoiceID:      invoiceID,
		TenantID:       event.TenantID,
		PayerRef:       event.PayerRef,
		AmountDue:      event.Amount,
		IssuedAt:       event.OccurredAt,
		Status:         status,
		ExternalPaidAt: externalPaidAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "normalizer",
			LastUpdatedAt: now,
			LastUpdatedBy: "normalizer",
		},
	}, nil
}

// minorUnitsFromString parses a major-unit decimal string ("125.40") into signed
// minor units (12540). Fractional minor units are rejected rather than rounded:
// rounding here would fabricate money that no source system reported.
func minorUnitsFromString(raw string) (int64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, errors.New("amount is required")
	}
	dec, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}
	shifted := dec.Shift(2)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s has sub-cent precision", raw)
	}
	return shifted.IntPart(), nil
}
