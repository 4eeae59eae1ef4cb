package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	portsrepo "github.com/data-steve/rowcol-sub000/internal/core/ports/repositories"
	portssvc "github.com/data-steve/rowcol-sub000/internal/core/ports/services"
)

// --- Mock EventRepository ---

type MockEventRepository struct {
	mock.Mock
}

var _ portsrepo.EventRepositoryFacade = (*MockEventRepository)(nil)

func (m *MockEventRepository) FindEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepository) ListDepositsSince(ctx context.Context, tenantID string, afterEventID string, limit int) ([]domain.Event, error) {
	args := m.Called(ctx, tenantID, afterEventID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockEventRepository) HasSettlementEvidence(ctx context.Context, tenantID string, payerRef string, amount int64, tolerance int64, since time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, payerRef, amount, tolerance, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventRepository) SaveEvent(ctx context.Context, event domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) SaveRejection(ctx context.Context, rejection domain.IngestRejection) error {
	args := m.Called(ctx, rejection)
	return args.Error(0)
}

func (m *MockEventRepository) ListRejections(ctx context.Context, tenantID string, limit int) ([]domain.IngestRejection, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IngestRejection), args.Error(1)
}

// --- Mock GraphRepository ---

type MockGraphRepository struct {
	mock.Mock
}

var _ portsrepo.GraphRepositoryFacade = (*MockGraphRepository)(nil)

func (m *MockGraphRepository) FindEdgesFrom(ctx context.Context, eventID string, edgeType domain.EdgeType) ([]domain.Edge, error) {
	args := m.Called(ctx, eventID, edgeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Edge), args.Error(1)
}

func (m *MockGraphRepository) FindEdgesTo(ctx context.Context, eventID string, edgeType domain.EdgeType) ([]domain.Edge, error) {
	args := m.Called(ctx, eventID, edgeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Edge), args.Error(1)
}

func (m *MockGraphRepository) SaveEdges(ctx context.Context, edges []domain.Edge) error {
	args := m.Called(ctx, edges)
	return args.Error(0)
}

// --- Mock InvoiceRepository ---

type MockInvoiceRepository struct {
	mock.Mock
}

var _ portsrepo.InvoiceRepositoryFacade = (*MockInvoiceRepository)(nil)

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindInvoicesByIDs(ctx context.Context, invoiceIDs []string) (map[string]domain.Invoice, error) {
	args := m.Called(ctx, invoiceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListOpenInvoicesByPayer(ctx context.Context, tenantID string, payerRef string, issuedAfter, issuedBefore time.Time, limit int) ([]domain.Invoice, error) {
	args := m.Called(ctx, tenantID, payerRef, issuedAfter, issuedBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListPaidUnconfirmed(ctx context.Context, tenantID string, paidBefore time.Time) ([]domain.Invoice, error) {
	args := m.Called(ctx, tenantID, paidBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

// --- Mock MatchRepository ---

type MockMatchRepository struct {
	mock.Mock
}

var _ portsrepo.MatchRepositoryFacade = (*MockMatchRepository)(nil)

func (m *MockMatchRepository) FindMatchByID(ctx context.Context, matchID string) (*domain.Match, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Match), args.Error(1)
}

func (m *MockMatchRepository) ListMatchesByDeposit(ctx context.Context, depositEventID string) ([]domain.Match, error) {
	args := m.Called(ctx, depositEventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

func (m *MockMatchRepository) SaveMatches(ctx context.Context, matches []domain.Match) error {
	args := m.Called(ctx, matches)
	return args.Error(0)
}

func (m *MockMatchRepository) UpdateMatchStatus(ctx context.Context, matchID string, status domain.MatchStatus) error {
	args := m.Called(ctx, matchID, status)
	return args.Error(0)
}

// --- Mock ExceptionRepository ---

type MockExceptionRepository struct {
	mock.Mock
}

var _ portsrepo.ExceptionRepositoryFacade = (*MockExceptionRepository)(nil)

func (m *MockExceptionRepository) FindExceptionByID(ctx context.Context, exceptionID string) (*domain.Exception, error) {
	args := m.Called(ctx, exceptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Exception), args.Error(1)
}

func (m *MockExceptionRepository) ListExceptions(ctx context.Context, tenantID string, kind *domain.ExceptionKind, status domain.ExceptionStatus, limit int) ([]domain.Exception, error) {
	args := m.Called(ctx, tenantID, kind, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Exception), args.Error(1)
}

func (m *MockExceptionRepository) HasOpenException(ctx context.Context, tenantID string, kind domain.ExceptionKind, invoiceID string) (bool, error) {
	args := m.Called(ctx, tenantID, kind, invoiceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockExceptionRepository) SaveException(ctx context.Context, exception domain.Exception) error {
	args := m.Called(ctx, exception)
	return args.Error(0)
}

func (m *MockExceptionRepository) MarkResolved(ctx context.Context, exceptionID string, resolution string, resolvedAt time.Time) error {
	args := m.Called(ctx, exceptionID, resolution, resolvedAt)
	return args.Error(0)
}

// --- Mock CorrectionRepository ---

type MockCorrectionRepository struct {
	mock.Mock
}

var _ portsrepo.CorrectionRepositoryFacade = (*MockCorrectionRepository)(nil)

func (m *MockCorrectionRepository) ListCorrectionsByPayer(ctx context.Context, tenantID string, payerRef string) ([]domain.Correction, error) {
	args := m.Called(ctx, tenantID, payerRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Correction), args.Error(1)
}

func (m *MockCorrectionRepository) SaveCorrection(ctx context.Context, correction domain.Correction) error {
	args := m.Called(ctx, correction)
	return args.Error(0)
}

// --- Mock LedgerRepository ---

type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) FindEntryBySettlementEvent(ctx context.Context, settlementEventID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, settlementEventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListEntries(ctx context.Context, tenantID string, limit int, postedBefore *time.Time) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, limit, postedBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// --- Mock ResolutionRepository ---

type MockResolutionRepository struct {
	mock.Mock
}

var _ portsrepo.ResolutionWriter = (*MockResolutionRepository)(nil)

func (m *MockResolutionRepository) CommitResolution(ctx context.Context, commit portsrepo.ResolutionCommit) error {
	args := m.Called(ctx, commit)
	return args.Error(0)
}

// --- Mock RunRepository ---

type MockRunRepository struct {
	mock.Mock
}

var _ portsrepo.RunRepositoryFacade = (*MockRunRepository)(nil)

func (m *MockRunRepository) FindLatestRun(ctx context.Context, tenantID string) (*domain.ReconRun, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconRun), args.Error(1)
}

func (m *MockRunRepository) SaveRun(ctx context.Context, run domain.ReconRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) UpdateRun(ctx context.Context, run domain.ReconRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// --- Mock GraphService ---

type MockGraphService struct {
	mock.Mock
}

var _ portssvc.GraphSvcFacade = (*MockGraphService)(nil)

func (m *MockGraphService) AddEvent(ctx context.Context, event domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockGraphService) AddEdge(ctx context.Context, fromID, toID string, edgeType domain.EdgeType, source domain.EdgeSource, confidence float64) error {
	args := m.Called(ctx, fromID, toID, edgeType, source, confidence)
	return args.Error(0)
}

func (m *MockGraphService) AddComposition(ctx context.Context, parentID string, childIDs []string, source domain.EdgeSource, confidence float64) error {
	args := m.Called(ctx, parentID, childIDs, source, confidence)
	return args.Error(0)
}

func (m *MockGraphService) GetCandidates(ctx context.Context, eventID string, edgeType domain.EdgeType) ([]domain.Event, error) {
	args := m.Called(ctx, eventID, edgeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockGraphService) GetOpenInvoices(ctx context.Context, tenantID string, payerRef string, refDate time.Time) ([]domain.Invoice, error) {
	args := m.Called(ctx, tenantID, payerRef, refDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockGraphService) FindSettlementPayout(ctx context.Context, depositEventID string) (*domain.Event, error) {
	args := m.Called(ctx, depositEventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

// --- Mock MatcherService ---

type MockMatcherService struct {
	mock.Mock
}

var _ portssvc.MatcherSvcFacade = (*MockMatcherService)(nil)

func (m *MockMatcherService) FindMatches(ctx context.Context, deposit domain.Event, pool []domain.Invoice) ([]domain.Match, error) {
	args := m.Called(ctx, deposit, pool)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

// --- Mock RunLocker ---

type MockRunLock struct {
	mock.Mock
}

var _ portssvc.RunLock = (*MockRunLock)(nil)

func (m *MockRunLock) Refresh(ctx context.Context, ttl time.Duration) error {
	args := m.Called(ctx, ttl)
	return args.Error(0)
}

func (m *MockRunLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockRunLocker struct {
	mock.Mock
}

var _ portssvc.RunLocker = (*MockRunLocker)(nil)

func (m *MockRunLocker) AcquireRunLock(ctx context.Context, tenantID string, ttl time.Duration) (portssvc.RunLock, error) {
	args := m.Called(ctx, tenantID, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(portssvc.RunLock), args.Error(1)
}
