package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/data-steve/rowcol-sub000/internal/apperrors"
	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	portsrepo "github.com/data-steve/rowcol-sub000/internal/core/ports/repositories"
	portssvc "github.com/data-steve/rowcol-sub000/internal/core/ports/services"
	"github.com/data-steve/rowcol-sub000/internal/core/services"
	"github.com/data-steve/rowcol-sub000/internal/dto"
	"github.com/data-steve/rowcol-sub000/pkg/config"
)

type ReconServiceTestSuite struct {
	suite.Suite
	mockEventRepo      *MockEventRepository
	mockGraphRepo      *MockGraphRepository
	mockInvoiceRepo    *MockInvoiceRepository
	mockMatchRepo      *MockMatchRepository
	mockExceptionRepo  *MockExceptionRepository
	mockCorrectionRepo *MockCorrectionRepository
	mockLedgerRepo     *MockLedgerRepository
	mockResolutionRepo *MockResolutionRepository
	mockRunRepo        *MockRunRepository
	mockGraphSvc       *MockGraphService
	mockMatcherSvc     *MockMatcherService
	mockLocker         *MockRunLocker
	mockLock           *MockRunLock
	service            portssvc.ReconSvcFacade

	tenantID string
	deposit  domain.Event
}

func (s *ReconServiceTestSuite) SetupTest() {
	s.buildService(config.DefaultReconConfig())

	s.tenantID = "tenant-1"
	s.deposit = domain.Event{
		EventID:    "dep-1",
		TenantID:   s.tenantID,
		Source:     domain.SourceBank,
		Amount:     453300,
		OccurredAt: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		PayerRef:   "acme",
	}
}

func (s *ReconServiceTestSuite) buildService(cfg config.ReconConfig) {
	s.mockEventRepo = new(MockEventRepository)
	s.mockGraphRepo = new(MockGraphRepository)
	s.mockInvoiceRepo = new(MockInvoiceRepository)
	s.mockMatchRepo = new(MockMatchRepository)
	s.mockExceptionRepo = new(MockExceptionRepository)
	s.mockCorrectionRepo = new(MockCorrectionRepository)
	s.mockLedgerRepo = new(MockLedgerRepository)
	s.mockResolutionRepo = new(MockResolutionRepository)
	s.mockRunRepo = new(MockRunRepository)
	s.mockGraphSvc = new(MockGraphService)
	s.mockMatcherSvc = new(MockMatcherService)
	s.mockLocker = new(MockRunLocker)
	s.mockLock = new(MockRunLock)

	repos := &portsrepo.RepositoryProvider{
		EventRepo:      s.mockEventRepo,
		GraphRepo:      s.mockGraphRepo,
		InvoiceRepo:    s.mockInvoiceRepo,
		MatchRepo:      s.mockMatchRepo,
		ExceptionRepo:  s.mockExceptionRepo,
		CorrectionRepo: s.mockCorrectionRepo,
		LedgerRepo:     s.mockLedgerRepo,
		ResolutionRepo: s.mockResolutionRepo,
		RunRepo:        s.mockRunRepo,
	}
	s.service = services.NewReconService(repos, s.mockGraphSvc, s.mockMatcherSvc, s.mockLocker, cfg)
}

// expectRunScaffolding wires the lock, run bookkeeping and deposit listing shared
// by every successful run test.
func (s *ReconServiceTestSuite) expectRunScaffolding(deposits []domain.Event) {
	s.mockLock.On("Release", mock.Anything).Return(nil)
	s.mockLocker.On("AcquireRunLock", mock.Anything, s.tenantID, mock.Anything).Return(s.mockLock, nil)
	s.mockRunRepo.On("FindLatestRun", mock.Anything, s.tenantID).Return(nil, apperrors.ErrNotFound)
	s.mockRunRepo.On("SaveRun", mock.Anything, mock.AnythingOfType("domain.ReconRun")).Return(nil)
	s.mockRunRepo.On("UpdateRun", mock.Anything, mock.AnythingOfType("domain.ReconRun")).Return(nil)
	s.mockEventRepo.On("ListDepositsSince", mock.Anything, s.tenantID, "", mock.Anything).Return(deposits, nil)
}

func (s *ReconServiceTestSuite) match(id string, confidence float64, invoiceIDs ...string) domain.Match {
	return domain.Match{
		MatchID:        id,
		TenantID:       s.tenantID,
		DepositEventID: s.deposit.EventID,
		InvoiceIDs:     invoiceIDs,
		Confidence:     confidence,
		CreatedAt:      time.Now().UTC(),
	}
}

func (s *ReconServiceTestSuite) TestRunLockConflict() {
	s.mockLocker.On("AcquireRunLock", mock.Anything, s.tenantID, mock.Anything).
		Return(nil, apperrors.ErrRunLockConflict)

	_, err := s.service.RunReconciliation(context.Background(), s.tenantID, "scheduler")

	s.Require().ErrorIs(err, apperrors.ErrRunLockConflict)
	s.mockRunRepo.AssertNotCalled(s.T(), "SaveRun", mock.Anything, mock.Anything)
}

func (s *ReconServiceTestSuite) TestHighConfidenceAutoApplies() {
	s.expectRunScaffolding([]domain.Event{s.deposit})
	pool := []domain.Invoice{{InvoiceID: "inv-1", TenantID: s.tenantID, Status: domain.InvoiceOpen, AmountDue: 453300}}

	s.mockGraphSvc.On("FindSettlementPayout", mock.Anything, "dep-1").Return(nil, apperrors.ErrNotFound)
	s.mockGraphSvc.On("GetOpenInvoices", mock.Anything, s.tenantID, "acme", s.deposit.OccurredAt).Return(pool, nil)
	s.mockMatcherSvc.On("FindMatches", mock.Anything, s.deposit, pool).
		Return([]domain.Match{s.match("m-1", 1.0, "inv-1")}, nil)
	s.mockResolutionRepo.On("CommitResolution", mock.Anything, mock.MatchedBy(func(c portsrepo.ResolutionCommit) bool {
		return c.Match.Status == domain.MatchAutoApplied &&
			c.LedgerEntry.SettlementEventID == "dep-1" &&
			len(c.ClaimIDs) == 1 && len(c.Edges) == 1
	})).Return(nil).Once()

	run, err := s.service.RunReconciliation(context.Background(), s.tenantID, "scheduler")

	s.Require().NoError(err)
	s.Equal(domain.RunCompleted, run.Status)
	s.Equal(1, run.AutoApplied)
	s.Equal("dep-1", run.CheckpointEventID)
	s.mockResolutionRepo.AssertExpectations(s.T())
}

func (s *ReconServiceTestSuite) TestTieRoutesToReview() {
	s.expectRunScaffolding([]domain.Event{s.deposit})
	pool := []domain.Invoice{
		{InvoiceID: "inv-1", TenantID: s.tenantID, Status: domain.InvoiceOpen, AmountDue: 453300},
		{InvoiceID: "inv-2", TenantID: s.tenantID, Status: domain.InvoiceOpen, AmountDue: 255000},
		{InvoiceID: "inv-3", TenantID: s.tenantID, Status: domain.InvoiceOpen, AmountDue: 198300},
	}
	matches := []domain.Match{
		s.match("m-1", 0.95, "inv-1"),
		s.match("m-2", 0.93, "inv-2", "inv-3"),
	}

	s.mockGraphSvc.On("FindSettlementPayout", mock.Anything, "dep-1").Return(nil, apperrors.ErrNotFound)
	s.mockGraphSvc.On("GetOpenInvoices", mock.Anything, s.tenantID, "acme", s.deposit.OccurredAt).Return(pool, nil)
	s.mockMatcherSvc.On("FindMatches", mock.Anything, s.deposit, pool).Return(matches, nil)
	s.mockMatchRepo.On("SaveMatches", mock.Anything, mock.MatchedBy(func(saved []domain.Match) bool {
		return len(saved) == 2 && saved[0].Status == domain.MatchPendingReview && saved[1].Status == domain.MatchPendingReview
	})).Return(nil).Once()
	s.mockExceptionRepo.On("SaveException", mock.Anything, mock.MatchedBy(func(e domain.Exception) bool {
		return e.Kind == domain.ExceptionARAmbig && len(e.CandidateMatchIDs) == 2 && e.CandidateMatchIDs[0] == "m-1"
	})).Return(nil).Once()

	run, err := s.service.RunReconciliation(context.Background(), s.tenantID, "scheduler")

	s.Require().NoError(err)
	s.Equal(1, run.PendingReview)
	s.Equal(1, run.ExceptionsRaised)
	s.Equal(0, run.AutoApplied)
	s.mockResolutionRepo.AssertNotCalled(s.T(), "CommitResolution", mock.Anything, mock.Anything)
}

func (s *ReconServiceTestSuite) TestReviewBandRoutesToReview() {
	s.expectRunScaffolding([]domain.Event{s.deposit})
	pool := []domain.Invoice{{InvoiceID: "inv-1", TenantID: s.tenantID, Status: domain.InvoiceOpen, AmountDue: 450000}}

	s.mockGraphSvc.On("FindSettlementPayout", mock.Anything, "dep-1").Return(nil, apperrors.ErrNotFound)
	s.mockGraphSvc.On("GetOpenInvoices", mock.Anything, s.tenantID, "acme", s.deposit.OccurredAt).Return(pool, nil)
	s.mockMatcherSvc.On("FindMatches", mock.Anything, s.deposit, pool).
		Return([]domain.Match{s.match("m-1", 0.72, "inv-1")}, nil)
	s.mockMatchRepo.On("SaveMatches", mock.Anything, mock.Anything).Return(nil).Once()
	s.mockExceptionRepo.On("SaveException", mock.Anything, mock.MatchedBy(func(e domain.Exception) bool {
		return e.Kind == domain.ExceptionARAmbig
	})).Return(nil).Once()

	run, err := s.service.RunReconciliation(context.Background(), s.tenantID, "scheduler")

	s.Require().NoError(err)
	s.Equal(1, run.PendingReview)
}

func (s *ReconServiceTestSuite) TestWeakCandidatesClassifiedNoMatchButKept() {
	s.expectRunScaffolding([]domain.Event{s.deposit})
	pool := []domain.Invoice{{InvoiceID: "inv-1", TenantID: s.tenantID, Status: domain.InvoiceOpen, AmountDue: 449000}}

	s.mockGraphSvc.On("FindSettlementPayout", mock.Anything, "dep-1").Return(nil, apperrors.ErrNotFound)
	s.mockGraphSvc.On("GetOpenInvoices", mock.Anything, s.tenantID, "acme", s.deposit.OccurredAt).Return(pool, nil)
	s.mockMatcherSvc.On("FindMatches", mock.Anything, s.deposit, pool).
		Return([]domain.Match{s.match("m-1", 0.41, "inv-1")}, nil)
	s.mockMatchRepo.On("SaveMatches", mock.Anything, mock.MatchedBy(func(saved []domain.Match) bool {
		return len(saved) == 1 && saved[0].Status == domain.MatchPendingReview
	})).Return(nil).Once()
	s.mockExceptionRepo.On("SaveException", mock.Anything, mock.MatchedBy(func(e domain.Exception) bool {
		return e.Kind == domain.ExceptionNoMatch && len(e.CandidateMatchIDs) == 1 && e.CandidateMatchIDs[0] == "m-1"
	})).Return(nil).Once()

	run, err := s.service.RunReconciliation(context.Background(), s.tenantID, "scheduler")

	s.Require().NoError(err)
	s.Equal(1, run.PendingReview)
	s.Equal(1, run.ExceptionsRaised)
	s.mockExceptionRepo.AssertExpectations(s.T())
	s.mockMatchRepo.AssertExpectations(s.T())
}

func (s *ReconServiceTestSuite) TestNoMatchRaisesException() {
	s.expectRunScaffolding([]domain.Event{s.deposit})

	s.mockGraphSvc.On("FindSettlementPayout", mock.Anything, "dep-1").Return(nil, apperrors.ErrNotFound)
	s.mockGraphSvc.On("GetOpenInvoices", mock.Anything, s.tenantID, "acme", s.deposit.OccurredAt).Return([]domain.Invoice{}, nil)
	s.mockMatcherSvc.On("FindMatches", mock.Anything, s.deposit, mock.Anything).Return([]domain.Match{}, nil)
	s.mockExceptionRepo.On("SaveException", mock.Anything, mock.MatchedBy(func(e domain.Exception) bool {
		return e.Kind == domain.ExceptionNoMatch && e.DepositEventID == "dep-1"
	})).Return(nil).Once()

	run, err := s.service.RunReconciliation(context.Background(), s.tenantID, "scheduler")

	s.Require().NoError(err)
	s.Equal(1, run.ExceptionsRaised)
}

func (s *ReconServiceTestSuite) TestUnmappedDepositRaisesException() {
	unmapped := s.deposit
	unmapped.PayerRef = ""
	s.expectRunScaffolding([]domain.Event{unmapped})

	s.mockGraphSvc.On("FindSettlementPayout", mock.Anything, "dep-1").Return(nil, apperrors.ErrNotFound)
	s.mockExceptionRepo.On("SaveException", mock.Anything, mock.MatchedBy(func(e domain.Exception) bool {
		return e.Kind == domain.ExceptionUnmapped
	})).Return(nil).Once()

	run, err := s.service.RunReconciliation(context.Background(), s.tenantID, "scheduler")

	s.Require().NoError(err)
	s.Equal(1, run.ExceptionsRaised)
	s.mockGraphSvc.AssertNotCalled(s.T(), "GetOpenInvoices", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ReconServiceTestSuite) TestClaimConflictDefersAfterRetries() {
	s.expectRunScaffolding([]domain.Event{s.deposit})
	pool := []domain.Invoice{{InvoiceID: "inv-1", TenantID: s.tenantID, Status: domain.InvoiceOpen, AmountDue: 453300}}

	s.mockGraphSvc.On("FindSettlementPayout", mock.Anything, "dep-1").Return(nil, apperrors.ErrNotFound)
	s.mockGraphSvc.On("GetOpenInvoices", mock.Anything, s.tenantID, "acme", s.deposit.OccurredAt).Return(pool, nil).Times(3)
	s.mockMatcherSvc.On("FindMatches", mock.Anything, s.deposit, pool).
		Return([]domain.Match{s.match("m-1", 1.0, "inv-1")}, nil).Times(3)
	s.mockResolutionRepo.On("CommitResolution", mock.Anything, mock.Anything).
		Return(apperrors.ErrInvoiceClaimConflict).Times(3)

	run, err := s.service.RunReconciliation(context.Background(), s.tenantID, "scheduler")

	s.Require().NoError(err)
	s.Equal(1, run.Deferred)
	s.Equal(0, run.AutoApplied)
	s.mockResolutionRepo.AssertExpectations(s.T())
}

func (s *ReconServiceTestSuite) TestDuplicateLedgerEntrySkipsDeposit() {
	s.expectRunScaffolding([]domain.Event{s.deposit})
	pool := []domain.Invoice{{InvoiceID: "inv-1", TenantID: s.tenantID, Status: domain.InvoiceOpen, AmountDue: 453300}}

	s.mockGraphSvc.On("FindSettlementPayout", mock.Anything, "dep-1").Return(nil, apperrors.ErrNotFound)
	s.mockGraphSvc.On("GetOpenInvoices", mock.Anything, s.tenantID, "acme", s.deposit.OccurredAt).Return(pool, nil)
	s.mockMatcherSvc.On("FindMatches", mock.Anything, s.deposit, pool).
		Return([]domain.Match{s.match("m-1", 1.0, "inv-1")}, nil)
	s.mockResolutionRepo.On("CommitResolution", mock.Anything, mock.Anything).
		Return(apperrors.ErrDuplicate).Once()

	run, err := s.service.RunReconciliation(context.Background(), s.tenantID, "scheduler")

	s.Require().NoError(err)
	s.Equal(domain.RunCompleted, run.Status)
	s.Equal(0, run.AutoApplied)
	s.Equal(1, run.DepositsSeen)
}

func (s *ReconServiceTestSuite) TestTimingExceptionIndependentOfAutoApply() {
	s.expectRunScaffolding([]domain.Event{s.deposit})
	pool := []domain.Invoice{{InvoiceID: "inv-1", TenantID: s.tenantID, Status: domain.InvoiceOpen, AmountDue: 453300}}
	payout := &domain.Event{
		EventID:    "po-1",
		Source:     domain.SourceProcessorPayout,
		OccurredAt: s.deposit.OccurredAt.AddDate(0, 0, -10),
	}

	s.mockGraphSvc.On("FindSettlementPayout", mock.Anything, "dep-1").Return(payout, nil)
	s.mockExceptionRepo.On("SaveException", mock.Anything, mock.MatchedBy(func(e domain.Exception) bool {
		return e.Kind == domain.ExceptionTiming && e.DepositEventID == "dep-1"
	})).Return(nil).Once()
	s.mockGraphSvc.On("GetOpenInvoices", mock.Anything, s.tenantID, "acme", s.deposit.OccurredAt).Return(pool, nil)
	s.mockMatcherSvc.On("FindMatches", mock.Anything, s.deposit, pool).
		Return([]domain.Match{s.match("m-1", 1.0, "inv-1")}, nil)
	s.mockResolutionRepo.On("CommitResolution", mock.Anything, mock.Anything).Return(nil).Once()

	run, err := s.service.RunReconciliation(context.Background(), s.tenantID, "scheduler")

	s.Require().NoError(err)
	// The lag breach is flagged, and the high-confidence match still applies.
	s.Equal(1, run.ExceptionsRaised)
	s.Equal(1, run.AutoApplied)
	s.mockExceptionRepo.AssertExpectations(s.T())
}

func (s *ReconServiceTestSuite) TestLockedPeriodAlwaysRoutesToReview() {
	cfg := config.DefaultReconConfig()
	cfg.LockedPeriodEnd = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	s.buildService(cfg)

	pool := []domain.Invoice{{
		InvoiceID: "inv-1",
		TenantID:  s.tenantID,
		Status:    domain.InvoiceOpen,
		AmountDue: 453300,
		IssuedAt:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}}
	s.expectRunScaffolding([]domain.Event{s.deposit})

	s.mockGraphSvc.On("FindSettlementPayout", mock.Anything, "dep-1").Return(nil, apperrors.ErrNotFound)
	s.mockGraphSvc.On("GetOpenInvoices", mock.Anything, s.tenantID, "acme", s.deposit.OccurredAt).Return(pool, nil)
	s.mockMatcherSvc.On("FindMatches", mock.Anything, s.deposit, pool).
		Return([]domain.Match{s.match("m-1", 1.0, "inv-1")}, nil)
	s.mockMatchRepo.On("SaveMatches", mock.Anything, mock.Anything).Return(nil).Once()
	s.mockExceptionRepo.On("SaveException", mock.Anything, mock.Anything).Return(nil).Once()

	run, err := s.service.RunReconciliation(context.Background(), s.tenantID, "scheduler")

	s.Require().NoError(err)
	s.Equal(1, run.PendingReview)
	s.Equal(0, run.AutoApplied)
	s.mockResolutionRepo.AssertNotCalled(s.T(), "CommitResolution", mock.Anything, mock.Anything)
}

func (s *ReconServiceTestSuite) TestSweepGhostAR() {
	ctx := context.Background()
	paidAt := time.Now().UTC().AddDate(0, 0, -45)
	ghost := domain.Invoice{InvoiceID: "inv-ghost", TenantID: s.tenantID, PayerRef: "acme", AmountDue: 50000, Status: domain.InvoiceOpen, ExternalPaidAt: &paidAt}
	settled := domain.Invoice{InvoiceID: "inv-ok", TenantID: s.tenantID, PayerRef: "beta", AmountDue: 70000, Status: domain.InvoiceOpen, ExternalPaidAt: &paidAt}

	s.mockInvoiceRepo.On("ListPaidUnconfirmed", ctx, s.tenantID, mock.Anything).
		Return([]domain.Invoice{ghost, settled}, nil).Once()
	s.mockEventRepo.On("HasSettlementEvidence", ctx, s.tenantID, "acme", int64(50000), mock.Anything, mock.Anything).Return(false, nil).Once()
	s.mockEventRepo.On("HasSettlementEvidence", ctx, s.tenantID, "beta", int64(70000), mock.Anything, mock.Anything).Return(true, nil).Once()
	s.mockExceptionRepo.On("HasOpenException", ctx, s.tenantID, domain.ExceptionGhostAR, "inv-ghost").Return(false, nil).Once()
	s.mockExceptionRepo.On("SaveException", ctx, mock.MatchedBy(func(e domain.Exception) bool {
		return e.Kind == domain.ExceptionGhostAR && e.InvoiceID == "inv-ghost"
	})).Return(nil).Once()

	raised, err := s.service.SweepGhostAR(ctx, s.tenantID)

	s.Require().NoError(err)
	s.Equal(1, raised)
	s.mockExceptionRepo.AssertExpectations(s.T())
}

func (s *ReconServiceTestSuite) TestSweepDoesNotDuplicateOpenExceptions() {
	ctx := context.Background()
	paidAt := time.Now().UTC().AddDate(0, 0, -45)
	ghost := domain.Invoice{InvoiceID: "inv-ghost", TenantID: s.tenantID, PayerRef: "acme", AmountDue: 50000, Status: domain.InvoiceOpen, ExternalPaidAt: &paidAt}

	s.mockInvoiceRepo.On("ListPaidUnconfirmed", ctx, s.tenantID, mock.Anything).
		Return([]domain.Invoice{ghost}, nil).Once()
	s.mockEventRepo.On("HasSettlementEvidence", ctx, s.tenantID, "acme", int64(50000), mock.Anything, mock.Anything).Return(false, nil).Once()
	s.mockExceptionRepo.On("HasOpenException", ctx, s.tenantID, domain.ExceptionGhostAR, "inv-ghost").Return(true, nil).Once()

	raised, err := s.service.SweepGhostAR(ctx, s.tenantID)

	s.Require().NoError(err)
	s.Equal(0, raised)
	s.mockExceptionRepo.AssertNotCalled(s.T(), "SaveException", mock.Anything, mock.Anything)
}

func (s *ReconServiceTestSuite) TestResolveExceptionWithChosenCandidate() {
	ctx := context.Background()
	exception := &domain.Exception{
		ExceptionID:       "exc-1",
		TenantID:          s.tenantID,
		Kind:              domain.ExceptionARAmbig,
		DepositEventID:    "dep-1",
		CandidateMatchIDs: []string{"m-1", "m-2"},
		Status:            domain.ExceptionOpen,
	}
	chosen := s.match("m-1", 0.8, "inv-1")
	chosen.Status = domain.MatchPendingReview

	s.mockExceptionRepo.On("FindExceptionByID", ctx, "exc-1").Return(exception, nil).Once()
	s.mockMatchRepo.On("FindMatchByID", ctx, "m-1").Return(&chosen, nil).Once()
	s.mockEventRepo.On("FindEventByID", ctx, "dep-1").Return(&s.deposit, nil).Once()
	s.mockResolutionRepo.On("CommitResolution", ctx, mock.MatchedBy(func(c portsrepo.ResolutionCommit) bool {
		return c.Match.Status == domain.MatchResolvedByHuman &&
			len(c.SupersedeMatchIDs) == 1 && c.SupersedeMatchIDs[0] == "m-2"
	})).Return(nil).Once()
	s.mockCorrectionRepo.On("SaveCorrection", ctx, mock.MatchedBy(func(c domain.Correction) bool {
		return c.ExceptionID == "exc-1" && c.ChosenMatchID == "m-1" && c.SubsetSize == 1 && c.PayerRef == "acme"
	})).Return(nil).Once()
	s.mockExceptionRepo.On("MarkResolved", ctx, "exc-1", "payment covers the older invoice", mock.Anything).Return(nil).Once()

	resolved, err := s.service.ResolveException(ctx, s.tenantID, "exc-1", dto.ResolveExceptionRequest{
		ChosenMatchID: strPtr("m-1"),
		Rationale:     "payment covers the older invoice",
	}, "reviewer-9")

	s.Require().NoError(err)
	s.Equal(domain.ExceptionResolved, resolved.Status)
	s.mockResolutionRepo.AssertExpectations(s.T())
	s.mockCorrectionRepo.AssertExpectations(s.T())
}

func (s *ReconServiceTestSuite) TestResolveExceptionTenantMismatch() {
	ctx := context.Background()
	exception := &domain.Exception{ExceptionID: "exc-1", TenantID: "other-tenant", Status: domain.ExceptionOpen}

	s.mockExceptionRepo.On("FindExceptionByID", ctx, "exc-1").Return(exception, nil).Once()

	_, err := s.service.ResolveException(ctx, s.tenantID, "exc-1", dto.ResolveExceptionRequest{Rationale: "x"}, "reviewer-9")

	s.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ReconServiceTestSuite) TestResolveExceptionAlreadyResolved() {
	ctx := context.Background()
	exception := &domain.Exception{ExceptionID: "exc-1", TenantID: s.tenantID, Status: domain.ExceptionResolved}

	s.mockExceptionRepo.On("FindExceptionByID", ctx, "exc-1").Return(exception, nil).Once()

	_, err := s.service.ResolveException(ctx, s.tenantID, "exc-1", dto.ResolveExceptionRequest{Rationale: "x"}, "reviewer-9")

	s.Require().ErrorIs(err, apperrors.ErrConflict)
}

func (s *ReconServiceTestSuite) TestDismissRejectsPendingCandidates() {
	ctx := context.Background()
	exception := &domain.Exception{
		ExceptionID:       "exc-1",
		TenantID:          s.tenantID,
		Kind:              domain.ExceptionARAmbig,
		DepositEventID:    "dep-1",
		CandidateMatchIDs: []string{"m-1", "m-2"},
		Status:            domain.ExceptionOpen,
	}

	s.mockExceptionRepo.On("FindExceptionByID", ctx, "exc-1").Return(exception, nil).Once()
	s.mockMatchRepo.On("UpdateMatchStatus", ctx, "m-1", domain.MatchRejected).Return(nil).Once()
	s.mockMatchRepo.On("UpdateMatchStatus", ctx, "m-2", domain.MatchRejected).Return(nil).Once()
	s.mockEventRepo.On("FindEventByID", ctx, "dep-1").Return(&s.deposit, nil).Once()
	s.mockCorrectionRepo.On("SaveCorrection", ctx, mock.MatchedBy(func(c domain.Correction) bool {
		return c.SubsetSize == 0 && c.ChosenMatchID == ""
	})).Return(nil).Once()
	s.mockExceptionRepo.On("MarkResolved", ctx, "exc-1", "not our customer", mock.Anything).Return(nil).Once()

	resolved, err := s.service.ResolveException(ctx, s.tenantID, "exc-1", dto.ResolveExceptionRequest{Rationale: "not our customer"}, "reviewer-9")

	s.Require().NoError(err)
	s.Equal(domain.ExceptionResolved, resolved.Status)
	s.mockMatchRepo.AssertExpectations(s.T())
}

func (s *ReconServiceTestSuite) TestListExceptionsDefaults() {
	ctx := context.Background()

	s.mockExceptionRepo.On("ListExceptions", ctx, s.tenantID, (*domain.ExceptionKind)(nil), domain.ExceptionOpen, 50).
		Return([]domain.Exception{}, nil).Once()

	_, err := s.service.ListExceptions(ctx, s.tenantID, dto.ListExceptionsParams{Status: "OPEN"})

	s.Require().NoError(err)
	s.mockExceptionRepo.AssertExpectations(s.T())
}

func strPtr(s string) *string { return &s }

func TestReconServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconServiceTestSuite))
}
