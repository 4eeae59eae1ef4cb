package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/data-steve/rowcol-sub000/internal/apperrors"
	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	portsrepo "github.com/data-steve/rowcol-sub000/internal/core/ports/repositories"
	portssvc "github.com/data-steve/rowcol-sub000/internal/core/ports/services"
	"github.com/data-steve/rowcol-sub000/internal/dto"
	"github.com/data-steve/rowcol-sub000/internal/middleware"
	"github.com/data-steve/rowcol-sub000/pkg/config"
)

const (
	// runBatchLimit caps how many unprocessed deposits one run picks up.
	runBatchLimit = 500

	// matchWorkers bounds the concurrent candidate-retrieval/matching phase.
	// Commits stay strictly serial regardless.
	matchWorkers = 4
)

// reconService is the reconciliation orchestrator: it drives batch runs over
// unprocessed deposits, applies the confidence state machine, manages the
// exception queue and records human resolutions.
type reconService struct {
	repos      *portsrepo.RepositoryProvider
	graphSvc   portssvc.GraphSvcFacade
	matcherSvc portssvc.MatcherSvcFacade
	locker     portssvc.RunLocker
	cfg        config.ReconConfig
}

// NewReconService creates a new reconciliation orchestrator.
func NewReconService(repos *portsrepo.RepositoryProvider, graphSvc portssvc.GraphSvcFacade, matcherSvc portssvc.MatcherSvcFacade, locker portssvc.RunLocker, cfg config.ReconConfig) portssvc.ReconSvcFacade {
	return &reconService{
		repos:      repos,
		graphSvc:   graphSvc,
		matcherSvc: matcherSvc,
		locker:     locker,
		cfg:        cfg,
	}
}

var _ portssvc.ReconSvcFacade = (*reconService)(nil)

// depositWork is the output of the parallel matching phase for one deposit.
type depositWork struct {
	deposit domain.Event
	pool    []domain.Invoice
	matches []domain.Match
}

// RunReconciliation executes one batch run for a tenant. Candidate retrieval and
// matching run on parallel workers; commits are applied serially in deposit order
// with the checkpoint cursor advanced after every deposit.
func (s *reconService) RunReconciliation(ctx context.Context, tenantID string, triggeredBy string) (*domain.ReconRun, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	lock, err := s.locker.AcquireRunLock(ctx, tenantID, s.cfg.RunLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock for tenant %s: %w", tenantID, err)
	}
	defer func() {
		if rerr := lock.Release(context.WithoutCancel(ctx)); rerr != nil {
			logger.Warn("Failed to release run lock", slog.String("tenant_id", tenantID), slog.String("error", rerr.Error()))
		}
	}()

	checkpoint := ""
	if latest, err := s.repos.RunRepo.FindLatestRun(ctx, tenantID); err == nil {
		checkpoint = latest.CheckpointEventID
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load latest run for tenant %s: %w", tenantID, err)
	}

	run := domain.ReconRun{
		RunID:             uuid.NewString(),
		TenantID:          tenantID,
		Status:            domain.RunRunning,
		StartedAt:         time.Now().UTC(),
		CheckpointEventID: checkpoint,
	}
	if err := s.repos.RunRepo.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record run start: %w", err)
	}

	deposits, err := s.repos.EventRepo.ListDepositsSince(ctx, tenantID, checkpoint, runBatchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed deposits: %w", err)
	}

	work, err := s.matchPhase(ctx, deposits)
	if err != nil {
		s.abortRun(ctx, &run)
		return &run, err
	}

	for _, w := range work {
		if ctx.Err() != nil {
			s.abortRun(ctx, &run)
			return &run, ctx.Err()
		}
		if err := s.commitDeposit(ctx, &run, w, triggeredBy); err != nil {
			s.abortRun(ctx, &run)
			return &run, err
		}
		run.DepositsSeen++
		run.CheckpointEventID = w.deposit.EventID
		if err := s.repos.RunRepo.UpdateRun(ctx, run); err != nil {
			return &run, fmt.Errorf("failed to advance run checkpoint: %w", err)
		}
	}

	now := time.Now().UTC()
	run.Status = domain.RunCompleted
	run.CompletedAt = &now
	if err := s.repos.RunRepo.UpdateRun(ctx, run); err != nil {
		return &run, fmt.Errorf("failed to record run completion: %w", err)
	}

	logger.Info("Reconciliation run completed",
		slog.String("run_id", run.RunID),
		slog.Int("deposits_seen", run.DepositsSeen),
		slog.Int("auto_applied", run.AutoApplied),
		slog.Int("pending_review", run.PendingReview),
		slog.Int("exceptions_raised", run.ExceptionsRaised),
		slog.Int("deferred", run.Deferred),
	)
	return &run, nil
}

// matchPhase retrieves candidate pools and runs the matching engine for every
// deposit on a bounded worker group. Results come back in deposit order.
func (s *reconService) matchPhase(ctx context.Context, deposits []domain.Event) ([]depositWork, error) {
	work := make([]depositWork, len(deposits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(matchWorkers)

	for i, deposit := range deposits {
		i, deposit := i, deposit
		g.Go(func() error {
			work[i].deposit = deposit
			if deposit.PayerRef == "" {
				return nil
			}
			pool, err := s.graphSvc.GetOpenInvoices(gctx, deposit.TenantID, deposit.PayerRef, deposit.OccurredAt)
			if err != nil {
				return err
			}
			matches, err := s.matcherSvc.FindMatches(gctx, deposit, pool)
			if err != nil {
				return err
			}
			work[i].pool = pool
			work[i].matches = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return work, nil
}

// commitDeposit classifies one deposit and applies the outcome. Claim conflicts
// trigger a rematch against the refreshed pool; after ClaimRetryLimit attempts the
// deposit is deferred to the next run.
func (s *reconService) commitDeposit(ctx context.Context, run *domain.ReconRun, w depositWork, triggeredBy string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	deposit := w.deposit

	// Timing is a data-quality signal, checked independently of the match outcome.
	if err := s.checkSettlementTiming(ctx, run, deposit); err != nil {
		return err
	}

	if deposit.PayerRef == "" {
		if err := s.raiseDepositException(ctx, run, deposit, domain.ExceptionUnmapped, nil); err != nil {
			return err
		}
		return nil
	}

	pool, matches := w.pool, w.matches
	for attempt := 0; ; attempt++ {
		if len(matches) == 0 {
			return s.raiseDepositException(ctx, run, deposit, domain.ExceptionNoMatch, nil)
		}

		best := matches[0]
		tied := len(matches) > 1 && matches[0].Confidence-matches[1].Confidence < s.cfg.TieMargin
		locked := s.touchesLockedPeriod(best, pool)

		if best.Confidence < s.cfg.AutoApplyThreshold || tied || locked {
			// Candidates below the review threshold are too weak to call the
			// deposit ambiguous; the case is classified NO_MATCH, but the
			// candidates still reach the reviewer.
			kind := domain.ExceptionARAmbig
			if best.Confidence < s.cfg.ReviewThreshold {
				kind = domain.ExceptionNoMatch
			}
			return s.queueForReview(ctx, run, deposit, matches, kind)
		}

		err := s.autoApply(ctx, deposit, matches, triggeredBy)
		if err == nil {
			run.AutoApplied++
			return nil
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			// A ledger entry for this settlement event already exists: the deposit
			// was resolved by an earlier run. Advance past it.
			logger.Info("Deposit already posted", slog.String("deposit_event_id", deposit.EventID))
			return nil
		}
		if !errors.Is(err, apperrors.ErrInvoiceClaimConflict) {
			return err
		}
		if attempt+1 >= s.cfg.ClaimRetryLimit {
			logger.Warn("Deferring deposit after repeated claim conflicts",
				slog.String("deposit_event_id", deposit.EventID), slog.Int("attempts", attempt+1))
			run.Deferred++
			return nil
		}

		// Another writer claimed one of the invoices. Refresh the pool and rematch.
		pool, err = s.graphSvc.GetOpenInvoices(ctx, deposit.TenantID, deposit.PayerRef, deposit.OccurredAt)
		if err != nil {
			return err
		}
		matches, err = s.matcherSvc.FindMatches(ctx, deposit, pool)
		if err != nil {
			return err
		}
	}
}

// autoApply commits the winning match: invoice claims, PAID_BY edges and the single
// ledger posting land in one transaction. Sibling candidates are recorded as
// superseded for the audit trail.
func (s *reconService) autoApply(ctx context.Context, deposit domain.Event, matches []domain.Match, triggeredBy string) error {
	best := matches[0]
	best.Status = domain.MatchAutoApplied

	if len(matches) > 1 {
		siblings := make([]domain.Match, len(matches)-1)
		for i, m := range matches[1:] {
			m.Status = domain.MatchSuperseded
			siblings[i] = m
		}
		if err := s.repos.MatchRepo.SaveMatches(ctx, siblings); err != nil {
			return fmt.Errorf("failed to record superseded candidates for deposit %s: %w", deposit.EventID, err)
		}
	}

	commit := portsrepo.ResolutionCommit{
		Match:       best,
		ClaimIDs:    best.InvoiceIDs,
		Edges:       paidByEdges(best, deposit, triggeredBy),
		LedgerEntry: ledgerEntryFor(deposit, best.MatchID),
	}
	if err := s.repos.ResolutionRepo.CommitResolution(ctx, commit); err != nil {
		if errors.Is(err, apperrors.ErrInvoiceClaimConflict) || errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
		return fmt.Errorf("failed to commit resolution for deposit %s: %w", deposit.EventID, err)
	}
	return nil
}

// queueForReview persists every candidate as PENDING_REVIEW and raises one
// exception of the given kind carrying the ranked candidate list. Low-confidence
// candidates are never silently discarded.
func (s *reconService) queueForReview(ctx context.Context, run *domain.ReconRun, deposit domain.Event, matches []domain.Match, kind domain.ExceptionKind) error {
	pending := make([]domain.Match, len(matches))
	candidateIDs := make([]string, len(matches))
	for i, m := range matches {
		m.Status = domain.MatchPendingReview
		pending[i] = m
		candidateIDs[i] = m.MatchID
	}
	if err := s.repos.MatchRepo.SaveMatches(ctx, pending); err != nil {
		return fmt.Errorf("failed to record pending candidates for deposit %s: %w", deposit.EventID, err)
	}
	if err := s.raiseDepositException(ctx, run, deposit, kind, candidateIDs); err != nil {
		return err
	}
	run.PendingReview++
	return nil
}

// checkSettlementTiming raises a TIMING exception when a deposit's linked payout
// settled outside the expected business-day lag.
func (s *reconService) checkSettlementTiming(ctx context.Context, run *domain.ReconRun, deposit domain.Event) error {
	payout, err := s.graphSvc.FindSettlementPayout(ctx, deposit.EventID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if businessDaysBetween(payout.OccurredAt, deposit.OccurredAt) <= s.cfg.SettlementLagBusinessDays {
		return nil
	}
	return s.raiseDepositException(ctx, run, deposit, domain.ExceptionTiming, nil)
}

func (s *reconService) raiseDepositException(ctx context.Context, run *domain.ReconRun, deposit domain.Event, kind domain.ExceptionKind, candidateIDs []string) error {
	exception := domain.Exception{
		ExceptionID:       uuid.NewString(),
		TenantID:          deposit.TenantID,
		Kind:              kind,
		DepositEventID:    deposit.EventID,
		CandidateMatchIDs: candidateIDs,
		Status:            domain.ExceptionOpen,
		OpenedAt:          time.Now().UTC(),
	}
	if err := s.repos.ExceptionRepo.SaveException(ctx, exception); err != nil {
		return fmt.Errorf("failed to raise %s exception for deposit %s: %w", kind, deposit.EventID, err)
	}
	run.ExceptionsRaised++
	return nil
}

// touchesLockedPeriod reports whether any invoice in the match was issued inside a
// closed accounting period. Such matches always route to review.
func (s *reconService) touchesLockedPeriod(match domain.Match, pool []domain.Invoice) bool {
	if s.cfg.LockedPeriodEnd.IsZero() {
		return false
	}
	byID := make(map[string]domain.Invoice, len(pool))
	for _, inv := range pool {
		byID[inv.InvoiceID] = inv
	}
	for _, id := range match.InvoiceIDs {
		if inv, ok := byID[id]; ok && !inv.IssuedAt.After(s.cfg.LockedPeriodEnd) {
			return true
		}
	}
	return false
}

func (s *reconService) abortRun(ctx context.Context, run *domain.ReconRun) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()
	run.Status = domain.RunAborted
	run.CompletedAt = &now
	if err := s.repos.RunRepo.UpdateRun(context.WithoutCancel(ctx), *run); err != nil {
		logger.Error("Failed to record run abort", slog.String("run_id", run.RunID), slog.String("error", err.Error()))
	}
}

// SweepGhostAR scans invoices the operations system marked paid before the lookback
// cutoff and raises GHOST_AR exceptions for those with no corroborating bank or
// processor evidence. Re-running the sweep never duplicates an open exception.
func (s *reconService) SweepGhostAR(ctx context.Context, tenantID string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.GhostLookbackDays)

	invoices, err := s.repos.InvoiceRepo.ListPaidUnconfirmed(ctx, tenantID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list paid-unconfirmed invoices: %w", err)
	}

	raised := 0
	for _, invoice := range invoices {
		if invoice.ExternalPaidAt == nil {
			continue
		}
		since := invoice.ExternalPaidAt.AddDate(0, 0, -s.cfg.GhostLookbackDays)
		evidenced, err := s.repos.EventRepo.HasSettlementEvidence(ctx, tenantID, invoice.PayerRef, invoice.AmountDue, s.cfg.Tolerance(invoice.AmountDue), since)
		if err != nil {
			return raised, fmt.Errorf("failed to check settlement evidence for invoice %s: %w", invoice.InvoiceID, err)
		}
		if evidenced {
			continue
		}

		open, err := s.repos.ExceptionRepo.HasOpenException(ctx, tenantID, domain.ExceptionGhostAR, invoice.InvoiceID)
		if err != nil {
			return raised, fmt.Errorf("failed to check open exceptions for invoice %s: %w", invoice.InvoiceID, err)
		}
		if open {
			continue
		}

		exception := domain.Exception{
			ExceptionID: uuid.NewString(),
			TenantID:    tenantID,
			Kind:        domain.ExceptionGhostAR,
			InvoiceID:   invoice.InvoiceID,
			Status:      domain.ExceptionOpen,
			OpenedAt:    time.Now().UTC(),
		}
		if err := s.repos.ExceptionRepo.SaveException(ctx, exception); err != nil {
			return raised, fmt.Errorf("failed to raise ghost exception for invoice %s: %w", invoice.InvoiceID, err)
		}
		raised++
	}

	logger.Info("Ghost receivable sweep finished", slog.Int("checked", len(invoices)), slog.Int("raised", raised))
	return raised, nil
}

// ListExceptions queries the review queue.
func (s *reconService) ListExceptions(ctx context.Context, tenantID string, params dto.ListExceptionsParams) ([]domain.Exception, error) {
	var kind *domain.ExceptionKind
	if params.Kind != nil && *params.Kind != "" {
		k := domain.ExceptionKind(*params.Kind)
		kind = &k
	}
	status := domain.ExceptionStatus(params.Status)
	if status == "" {
		status = domain.ExceptionOpen
	}
	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	exceptions, err := s.repos.ExceptionRepo.ListExceptions(ctx, tenantID, kind, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exceptions: %w", err)
	}
	return exceptions, nil
}

// ResolveException records a human decision. Choosing a candidate (or a custom
// invoice set) performs the same transactional claim/edge/ledger commit as an
// automatic apply; resolving with no selection dismisses the case and rejects the
// pending candidates. Every resolution persists an append-only Correction.
func (s *reconService) ResolveException(ctx context.Context, tenantID string, exceptionID string, req dto.ResolveExceptionRequest, resolvedBy string) (*domain.Exception, error) {
	exception, err := s.repos.ExceptionRepo.FindExceptionByID(ctx, exceptionID)
	if err != nil {
		return nil, fmt.Errorf("exception %s: %w", exceptionID, err)
	}
	if exception.TenantID != tenantID {
		return nil, fmt.Errorf("exception %s: %w", exceptionID, apperrors.ErrNotFound)
	}
	if exception.Status == domain.ExceptionResolved {
		return nil, fmt.Errorf("%w: exception %s is already resolved", apperrors.ErrConflict, exceptionID)
	}

	switch {
	case req.ChosenMatchID != nil && *req.ChosenMatchID != "":
		err = s.resolveWithCandidate(ctx, exception, *req.ChosenMatchID, req, resolvedBy)
	case len(req.CustomInvoiceIDs) > 0:
		err = s.resolveWithCustomSet(ctx, exception, req, resolvedBy)
	default:
		err = s.dismiss(ctx, exception, req, resolvedBy)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repos.ExceptionRepo.MarkResolved(ctx, exception.ExceptionID, req.Rationale, now); err != nil {
		return nil, fmt.Errorf("failed to mark exception %s resolved: %w", exceptionID, err)
	}
	exception.Status = domain.ExceptionResolved
	exception.ResolvedAt = &now
	exception.Resolution = req.Rationale
	return exception, nil
}

// resolveWithCandidate applies a reviewer-chosen candidate match.
func (s *reconService) resolveWithCandidate(ctx context.Context, exception *domain.Exception, matchID string, req dto.ResolveExceptionRequest, resolvedBy string) error {
	match, err := s.repos.MatchRepo.FindMatchByID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("chosen match %s: %w", matchID, err)
	}
	if match.TenantID != exception.TenantID || match.DepositEventID != exception.DepositEventID {
		return fmt.Errorf("%w: match %s does not belong to exception %s", apperrors.ErrValidation, matchID, exception.ExceptionID)
	}

	deposit, err := s.repos.EventRepo.FindEventByID(ctx, match.DepositEventID)
	if err != nil {
		return fmt.Errorf("deposit %s: %w", match.DepositEventID, err)
	}

	chosen := *match
	chosen.Status = domain.MatchResolvedByHuman
	supersede := make([]string, 0, len(exception.CandidateMatchIDs))
	for _, id := range exception.CandidateMatchIDs {
		if id != matchID {
			supersede = append(supersede, id)
		}
	}

	commit := portsrepo.ResolutionCommit{
		Match:             chosen,
		ClaimIDs:          chosen.InvoiceIDs,
		Edges:             paidByEdges(chosen, *deposit, resolvedBy),
		LedgerEntry:       ledgerEntryFor(*deposit, chosen.MatchID),
		SupersedeMatchIDs: supersede,
	}
	if err := s.repos.ResolutionRepo.CommitResolution(ctx, commit); err != nil {
		if errors.Is(err, apperrors.ErrInvoiceClaimConflict) {
			return fmt.Errorf("%w: an invoice in match %s is no longer open", apperrors.ErrConflict, matchID)
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			return fmt.Errorf("%w: deposit %s is already posted to the ledger", apperrors.ErrConflict, deposit.EventID)
		}
		return fmt.Errorf("failed to commit resolution for match %s: %w", matchID, err)
	}

	return s.recordCorrection(ctx, exception, deposit.PayerRef, matchID, chosen.InvoiceIDs, req.Rationale, resolvedBy)
}

// resolveWithCustomSet applies a reviewer-supplied invoice set that was not among
// the ranked candidates.
func (s *reconService) resolveWithCustomSet(ctx context.Context, exception *domain.Exception, req dto.ResolveExceptionRequest, resolvedBy string) error {
	if exception.DepositEventID == "" {
		return fmt.Errorf("%w: exception %s has no deposit to resolve against", apperrors.ErrValidation, exception.ExceptionID)
	}
	deposit, err := s.repos.EventRepo.FindEventByID(ctx, exception.DepositEventID)
	if err != nil {
		return fmt.Errorf("deposit %s: %w", exception.DepositEventID, err)
	}

	invoices, err := s.repos.InvoiceRepo.FindInvoicesByIDs(ctx, req.CustomInvoiceIDs)
	if err != nil {
		return fmt.Errorf("failed to load custom invoice set: %w", err)
	}
	var sum int64
	ids := make([]string, 0, len(req.CustomInvoiceIDs))
	for _, id := range req.CustomInvoiceIDs {
		invoice, ok := invoices[id]
		if !ok || invoice.TenantID != exception.TenantID {
			return fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, id)
		}
		if invoice.Status != domain.InvoiceOpen {
			return fmt.Errorf("%w: invoice %s is not open", apperrors.ErrConflict, id)
		}
		sum += invoice.AmountDue
		ids = append(ids, id)
	}
	sort.Strings(ids)

	match := domain.Match{
		MatchID:        uuid.NewString(),
		TenantID:       exception.TenantID,
		DepositEventID: deposit.EventID,
		InvoiceIDs:     ids,
		Residual:       deposit.Amount - sum,
		Confidence:     1.0, // human decision
		Status:         domain.MatchResolvedByHuman,
		CreatedAt:      time.Now().UTC(),
	}

	commit := portsrepo.ResolutionCommit{
		Match:             match,
		ClaimIDs:          match.InvoiceIDs,
		Edges:             paidByEdges(match, *deposit, resolvedBy),
		LedgerEntry:       ledgerEntryFor(*deposit, match.MatchID),
		SupersedeMatchIDs: exception.CandidateMatchIDs,
	}
	if err := s.repos.ResolutionRepo.CommitResolution(ctx, commit); err != nil {
		if errors.Is(err, apperrors.ErrInvoiceClaimConflict) {
			return fmt.Errorf("%w: an invoice in the custom set is no longer open", apperrors.ErrConflict)
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			return fmt.Errorf("%w: deposit %s is already posted to the ledger", apperrors.ErrConflict, deposit.EventID)
		}
		return fmt.Errorf("failed to commit custom resolution: %w", err)
	}

	return s.recordCorrection(ctx, exception, deposit.PayerRef, match.MatchID, ids, req.Rationale, resolvedBy)
}

// dismiss resolves an exception without posting anything: pending candidates are
// rejected, and the decision is still recorded as a correction.
func (s *reconService) dismiss(ctx context.Context, exception *domain.Exception, req dto.ResolveExceptionRequest, resolvedBy string) error {
	for _, matchID := range exception.CandidateMatchIDs {
		if err := s.repos.MatchRepo.UpdateMatchStatus(ctx, matchID, domain.MatchRejected); err != nil {
			return fmt.Errorf("failed to reject candidate %s: %w", matchID, err)
		}
	}

	payerRef := ""
	if exception.DepositEventID != "" {
		deposit, err := s.repos.EventRepo.FindEventByID(ctx, exception.DepositEventID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("deposit %s: %w", exception.DepositEventID, err)
		}
		if deposit != nil {
			payerRef = deposit.PayerRef
		}
	}
	return s.recordCorrection(ctx, exception, payerRef, "", nil, req.Rationale, resolvedBy)
}

func (s *reconService) recordCorrection(ctx context.Context, exception *domain.Exception, payerRef, chosenMatchID string, invoiceIDs []string, rationale, resolvedBy string) error {
	correction := domain.Correction{
		CorrectionID:     uuid.NewString(),
		TenantID:         exception.TenantID,
		ExceptionID:      exception.ExceptionID,
		PayerRef:         payerRef,
		ChosenMatchID:    chosenMatchID,
		ChosenInvoiceIDs: invoiceIDs,
		SubsetSize:       len(invoiceIDs),
		Rationale:        rationale,
		CreatedAt:        time.Now().UTC(),
		CreatedBy:        resolvedBy,
	}
	if err := s.repos.CorrectionRepo.SaveCorrection(ctx, correction); err != nil {
		return fmt.Errorf("failed to record correction for exception %s: %w", exception.ExceptionID, err)
	}
	return nil
}

// ListLedgerEntries exposes the read-only feed of posted cash ledger entries.
func (s *reconService) ListLedgerEntries(ctx context.Context, tenantID string, params dto.ListLedgerParams) ([]domain.LedgerEntry, error) {
	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries, err := s.repos.LedgerRepo.ListEntries(ctx, tenantID, limit, params.Before)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

// paidByEdges builds the inferred PAID_BY edges linking each matched invoice's
// event node to the settling deposit.
func paidByEdges(match domain.Match, deposit domain.Event, createdBy string) []domain.Edge {
	now := time.Now().UTC()
	edges := make([]domain.Edge, len(match.InvoiceIDs))
	for i, invoiceID := range match.InvoiceIDs {
		edges[i] = domain.Edge{
			EdgeID:      uuid.NewString(),
			FromEventID: domain.NewEventID(domain.SourceInvoice, invoiceID),
			ToEventID:   deposit.EventID,
			Type:        domain.EdgePaidBy,
			Confidence:  match.Confidence,
			Source:      domain.EdgeInferred,
			CreatedAt:   now,
			CreatedBy:   createdBy,
		}
	}
	return edges
}

// ledgerEntryFor builds the single count-once posting for a settled deposit.
func ledgerEntryFor(deposit domain.Event, matchID string) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:           uuid.NewString(),
		TenantID:          deposit.TenantID,
		SettlementEventID: deposit.EventID,
		MatchID:           &matchID,
		Amount:            deposit.Amount,
		Direction:         domain.DirectionForAmount(deposit.Amount),
		PostedAt:          time.Now().UTC(),
	}
}

// businessDaysBetween counts the weekdays strictly after from up to and including
// to, in UTC. Returns 0 when to is not after from.
func businessDaysBetween(from, to time.Time) int {
	from = from.UTC().Truncate(24 * time.Hour)
	to = to.UTC().Truncate(24 * time.Hour)
	days := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}
