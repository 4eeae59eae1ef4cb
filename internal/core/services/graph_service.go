package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/data-steve/rowcol-sub000/internal/apperrors"
	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	portsrepo "github.com/data-steve/rowcol-sub000/internal/core/ports/repositories"
	portssvc "github.com/data-steve/rowcol-sub000/internal/core/ports/services"
	"github.com/data-steve/rowcol-sub000/internal/middleware"
	"github.com/data-steve/rowcol-sub000/pkg/config"
)

// graphService maintains the identity graph: normalized events connected by typed
// relationships, with decomposition validation guarding COMPOSED_OF inserts.
type graphService struct {
	eventRepo   portsrepo.EventRepositoryFacade
	edgeRepo    portsrepo.GraphRepositoryFacade
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	cfg         config.ReconConfig
}

// NewGraphService creates a new identity graph service.
func NewGraphService(eventRepo portsrepo.EventRepositoryFacade, edgeRepo portsrepo.GraphRepositoryFacade, invoiceRepo portsrepo.InvoiceRepositoryFacade, cfg config.ReconConfig) portssvc.GraphSvcFacade {
	return &graphService{
		eventRepo:   eventRepo,
		edgeRepo:    edgeRepo,
		invoiceRepo: invoiceRepo,
		cfg:         cfg,
	}
}

var _ portssvc.GraphSvcFacade = (*graphService)(nil)

// AddEvent stores a normalized event. Saving the same event ID twice is a no-op.
func (s *graphService) AddEvent(ctx context.Context, event domain.Event) error {
	if err := s.eventRepo.SaveEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to save event %s: %w", event.EventID, err)
	}
	return nil
}

// AddEdge inserts a single typed edge after verifying both endpoints exist.
func (s *graphService) AddEdge(ctx context.Context, fromID, toID string, edgeType domain.EdgeType, source domain.EdgeSource, confidence float64) error {
	if _, err := s.eventRepo.FindEventByID(ctx, fromID); err != nil {
		return fmt.Errorf("edge source event %s: %w", fromID, err)
	}
	if _, err := s.eventRepo.FindEventByID(ctx, toID); err != nil {
		return fmt.Errorf("edge target event %s: %w", toID, err)
	}

	edge := domain.Edge{
		EdgeID:      uuid.NewString(),
		FromEventID: fromID,
		ToEventID:   toID,
		Type:        edgeType,
		Confidence:  confidence,
		Source:      source,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.edgeRepo.SaveEdges(ctx, []domain.Edge{edge}); err != nil {
		return fmt.Errorf("failed to save edge %s -> %s: %w", fromID, toID, err)
	}
	return nil
}

// AddComposition validates and inserts the full COMPOSED_OF edge set under a
// parent. The children's signed amounts must sum to the parent's amount within the
// decomposition tolerance, or nothing is inserted: a fee miscount must never
// silently corrupt the graph.
func (s *graphService) AddComposition(ctx context.Context, parentID string, childIDs []string, source domain.EdgeSource, confidence float64) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(childIDs) == 0 {
		return fmt.Errorf("%w: composition requires at least one child", apperrors.ErrValidation)
	}

	parent, err := s.eventRepo.FindEventByID(ctx, parentID)
	if err != nil {
		return fmt.Errorf("composition parent %s: %w", parentID, err)
	}

	var childSum int64
	now := time.Now().UTC()
	edges := make([]domain.Edge, 0, len(childIDs))
	for _, childID := range childIDs {
		child, err := s.eventRepo.FindEventByID(ctx, childID)
		if err != nil {
			return fmt.Errorf("composition child %s: %w", childID, err)
		}
		childSum += child.Amount
		edges = append(edges, domain.Edge{
			EdgeID:      uuid.NewString(),
			FromEventID: parentID,
			ToEventID:   childID,
			Type:        domain.EdgeComposedOf,
			Confidence:  confidence,
			Source:      source,
			CreatedAt:   now,
		})
	}

	diff := parent.Amount - childSum
	if diff < 0 {
		diff = -diff
	}
	if diff > s.cfg.DecompositionToleranceMinorUnits {
		logger.Warn("Rejected composition edge set",
			slog.String("parent_id", parentID),
			slog.Int64("parent_amount", parent.Amount),
			slog.Int64("child_sum", childSum),
		)
		return fmt.Errorf("%w: parent %s amount %d, children sum %d", apperrors.ErrDecompositionMismatch, parentID, parent.Amount, childSum)
	}

	if err := s.edgeRepo.SaveEdges(ctx, edges); err != nil {
		return fmt.Errorf("failed to save composition under %s: %w", parentID, err)
	}
	return nil
}

// GetCandidates returns the events linked to eventID by edges of the given type,
// following both directions.
func (s *graphService) GetCandidates(ctx context.Context, eventID string, edgeType domain.EdgeType) ([]domain.Event, error) {
	outgoing, err := s.edgeRepo.FindEdgesFrom(ctx, eventID, edgeType)
	if err != nil {
		return nil, fmt.Errorf("failed to load outgoing edges for %s: %w", eventID, err)
	}
	incoming, err := s.edgeRepo.FindEdgesTo(ctx, eventID, edgeType)
	if err != nil {
		return nil, fmt.Errorf("failed to load incoming edges for %s: %w", eventID, err)
	}

	seen := make(map[string]struct{}, len(outgoing)+len(incoming))
	events := make([]domain.Event, 0, len(outgoing)+len(incoming))
	appendEndpoint := func(id string) error {
		if _, ok := seen[id]; ok {
			return nil
		}
		seen[id] = struct{}{}
		event, err := s.eventRepo.FindEventByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load edge endpoint %s: %w", id, err)
		}
		events = append(events, *event)
		return nil
	}

	for _, edge := range outgoing {
		if err := appendEndpoint(edge.ToEventID); err != nil {
			return nil, err
		}
	}
	for _, edge := range incoming {
		if err := appendEndpoint(edge.FromEventID); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// GetOpenInvoices returns the capped candidate pool for a payer: OPEN invoices
// issued within the matching window before (and up to a day after) refDate.
func (s *graphService) GetOpenInvoices(ctx context.Context, tenantID string, payerRef string, refDate time.Time) ([]domain.Invoice, error) {
	if payerRef == "" {
		return nil, nil
	}
	issuedAfter := refDate.AddDate(0, 0, -s.cfg.WindowDays)
	issuedBefore := refDate.AddDate(0, 0, 1)
	invoices, err := s.invoiceRepo.ListOpenInvoicesByPayer(ctx, tenantID, payerRef, issuedAfter, issuedBefore, s.cfg.MaxCandidatePool)
	if err != nil {
		return nil, fmt.Errorf("failed to load open invoices for payer %s: %w", payerRef, err)
	}
	return invoices, nil
}

// FindSettlementPayout returns the payout event linked to the bank deposit by a
// SETTLES edge.
func (s *graphService) FindSettlementPayout(ctx context.Context, depositEventID string) (*domain.Event, error) {
	edges, err := s.edgeRepo.FindEdgesTo(ctx, depositEventID, domain.EdgeSettles)
	if err != nil {
		return nil, fmt.Errorf("failed to load settles edges for %s: %w", depositEventID, err)
	}
	if len(edges) == 0 {
		return nil, apperrors.ErrNotFound
	}
	payout, err := s.eventRepo.FindEventByID(ctx, edges[0].FromEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payout %s: %w", edges[0].FromEventID, err)
	}
	return payout, nil
}
