package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/data-steve/rowcol-sub000/internal/apperrors"
	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	portssvc "github.com/data-steve/rowcol-sub000/internal/core/ports/services"
	"github.com/data-steve/rowcol-sub000/internal/core/services"
	"github.com/data-steve/rowcol-sub000/pkg/config"
)

type GraphServiceTestSuite struct {
	suite.Suite
	mockEventRepo   *MockEventRepository
	mockGraphRepo   *MockGraphRepository
	mockInvoiceRepo *MockInvoiceRepository
	service         portssvc.GraphSvcFacade
}

func (s *GraphServiceTestSuite) SetupTest() {
	s.mockEventRepo = new(MockEventRepository)
	s.mockGraphRepo = new(MockGraphRepository)
	s.mockInvoiceRepo = new(MockInvoiceRepository)
	s.service = services.NewGraphService(s.mockEventRepo, s.mockGraphRepo, s.mockInvoiceRepo, config.DefaultReconConfig())
}

func event(id string, amount int64) *domain.Event {
	return &domain.Event{
		EventID:    id,
		TenantID:   "tenant-1",
		Source:     domain.SourceProcessorCharge,
		Amount:     amount,
		OccurredAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *GraphServiceTestSuite) TestAddCompositionWithinTolerance() {
	ctx := context.Background()

	// Parent 9700, children 5000 + 5000 - 300 fee = 9700.
	s.mockEventRepo.On("FindEventByID", ctx, "parent").Return(event("parent", 9700), nil).Once()
	s.mockEventRepo.On("FindEventByID", ctx, "c1").Return(event("c1", 5000), nil).Once()
	s.mockEventRepo.On("FindEventByID", ctx, "c2").Return(event("c2", 5000), nil).Once()
	s.mockEventRepo.On("FindEventByID", ctx, "fee").Return(event("fee", -300), nil).Once()
	s.mockGraphRepo.On("SaveEdges", ctx, mock.MatchedBy(func(edges []domain.Edge) bool {
		return len(edges) == 3 && edges[0].Type == domain.EdgeComposedOf
	})).Return(nil).Once()

	err := s.service.AddComposition(ctx, "parent", []string{"c1", "c2", "fee"}, domain.EdgeSystemDeclared, 1.0)

	s.Require().NoError(err)
	s.mockGraphRepo.AssertExpectations(s.T())
}

func (s *GraphServiceTestSuite) TestAddCompositionMismatchInsertsNothing() {
	ctx := context.Background()

	s.mockEventRepo.On("FindEventByID", ctx, "parent").Return(event("parent", 9700), nil).Once()
	s.mockEventRepo.On("FindEventByID", ctx, "c1").Return(event("c1", 5000), nil).Once()
	s.mockEventRepo.On("FindEventByID", ctx, "c2").Return(event("c2", 5000), nil).Once()

	err := s.service.AddComposition(ctx, "parent", []string{"c1", "c2"}, domain.EdgeSystemDeclared, 1.0)

	s.Require().ErrorIs(err, apperrors.ErrDecompositionMismatch)
	s.mockGraphRepo.AssertNotCalled(s.T(), "SaveEdges", mock.Anything, mock.Anything)
}

func (s *GraphServiceTestSuite) TestAddEdgeRequiresBothEndpoints() {
	ctx := context.Background()

	s.mockEventRepo.On("FindEventByID", ctx, "a").Return(event("a", 100), nil).Once()
	s.mockEventRepo.On("FindEventByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	err := s.service.AddEdge(ctx, "a", "missing", domain.EdgeSettles, domain.EdgeSystemDeclared, 1.0)

	s.Require().ErrorIs(err, apperrors.ErrNotFound)
	s.mockGraphRepo.AssertNotCalled(s.T(), "SaveEdges", mock.Anything, mock.Anything)
}

func (s *GraphServiceTestSuite) TestGetOpenInvoicesEmptyPayer() {
	invoices, err := s.service.GetOpenInvoices(context.Background(), "tenant-1", "", time.Now())

	s.Require().NoError(err)
	s.Nil(invoices)
	s.mockInvoiceRepo.AssertNotCalled(s.T(), "ListOpenInvoicesByPayer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *GraphServiceTestSuite) TestFindSettlementPayout() {
	ctx := context.Background()
	edges := []domain.Edge{{FromEventID: "payout-1", ToEventID: "dep-1", Type: domain.EdgeSettles}}

	s.mockGraphRepo.On("FindEdgesTo", ctx, "dep-1", domain.EdgeSettles).Return(edges, nil).Once()
	s.mockEventRepo.On("FindEventByID", ctx, "payout-1").Return(event("payout-1", 9700), nil).Once()

	payout, err := s.service.FindSettlementPayout(ctx, "dep-1")

	s.Require().NoError(err)
	s.Equal("payout-1", payout.EventID)
}

func TestGraphServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GraphServiceTestSuite))
}
