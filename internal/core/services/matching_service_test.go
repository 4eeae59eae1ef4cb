package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	portssvc "github.com/data-steve/rowcol-sub000/internal/core/ports/services"
	"github.com/data-steve/rowcol-sub000/internal/core/services"
	"github.com/data-steve/rowcol-sub000/pkg/config"
)

type MatchingServiceTestSuite struct {
	suite.Suite
	mockCorrectionRepo *MockCorrectionRepository
	service            portssvc.MatcherSvcFacade
	baseDate           time.Time
}

func (s *MatchingServiceTestSuite) SetupTest() {
	s.mockCorrectionRepo = new(MockCorrectionRepository)
	s.service = services.NewMatcherService(s.mockCorrectionRepo, config.DefaultReconConfig())
	s.baseDate = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
}

func (s *MatchingServiceTestSuite) deposit(amount int64, payerRef string) domain.Event {
	return domain.Event{
		EventID:    "dep-1",
		TenantID:   "tenant-1",
		Source:     domain.SourceBank,
		Amount:     amount,
		OccurredAt: s.baseDate,
		PayerRef:   payerRef,
	}
}

func (s *MatchingServiceTestSuite) invoice(id string, amount int64, daysBefore int) domain.Invoice {
	return domain.Invoice{
		InvoiceID: id,
		TenantID:  "tenant-1",
		PayerRef:  "acme",
		AmountDue: amount,
		IssuedAt:  s.baseDate.AddDate(0, 0, -daysBefore),
		Status:    domain.InvoiceOpen,
	}
}

func (s *MatchingServiceTestSuite) TestExactSingleMatchScoresOne() {
	pool := []domain.Invoice{
		s.invoice("inv-1", 255000, 10),
		s.invoice("inv-2", 12000, 5),
	}

	matches, err := s.service.FindMatches(context.Background(), s.deposit(255000, ""), pool)

	s.Require().NoError(err)
	s.Require().NotEmpty(matches)
	s.Equal([]string{"inv-1"}, matches[0].InvoiceIDs)
	s.Equal(int64(0), matches[0].Residual)
	s.Equal(1.0, matches[0].Confidence)
}

func (s *MatchingServiceTestSuite) TestAmbiguousSubsetsBothReturned() {
	// 2550 + 1983 = 4533: the single invoice and the pair are both viable.
	pool := []domain.Invoice{
		s.invoice("inv-a", 453300, 8),
		s.invoice("inv-b", 255000, 12),
		s.invoice("inv-c", 198300, 11),
	}

	matches, err := s.service.FindMatches(context.Background(), s.deposit(453300, ""), pool)

	s.Require().NoError(err)
	s.Require().Len(matches, 2)
	s.Equal([]string{"inv-a"}, matches[0].InvoiceIDs)
	s.Equal(1.0, matches[0].Confidence)
	s.Equal([]string{"inv-b", "inv-c"}, matches[1].InvoiceIDs)
	s.Less(matches[1].Confidence, matches[0].Confidence)
}

func (s *MatchingServiceTestSuite) TestNoViableSubset() {
	pool := []domain.Invoice{
		s.invoice("inv-1", 100000, 3),
		s.invoice("inv-2", 50000, 4),
	}

	matches, err := s.service.FindMatches(context.Background(), s.deposit(999999, ""), pool)

	s.Require().NoError(err)
	s.Empty(matches)
}

func (s *MatchingServiceTestSuite) TestResidualWithinToleranceViable() {
	// Tolerance for 10000 is max(5, 1%) = 100; residual 40 is viable but penalized.
	pool := []domain.Invoice{s.invoice("inv-1", 9960, 2)}

	matches, err := s.service.FindMatches(context.Background(), s.deposit(10000, ""), pool)

	s.Require().NoError(err)
	s.Require().Len(matches, 1)
	s.Equal(int64(40), matches[0].Residual)
	s.Less(matches[0].Confidence, 1.0)
	s.Greater(matches[0].Confidence, 0.0)
}

func (s *MatchingServiceTestSuite) TestIgnoresNonOpenInvoices() {
	matched := s.invoice("inv-1", 255000, 10)
	matched.Status = domain.InvoiceMatched

	matches, err := s.service.FindMatches(context.Background(), s.deposit(255000, ""), []domain.Invoice{matched})

	s.Require().NoError(err)
	s.Empty(matches)
}

func (s *MatchingServiceTestSuite) TestCorrectionBonusLiftsLearnedShape() {
	ctx := context.Background()
	pool := []domain.Invoice{
		s.invoice("inv-b", 255000, 12),
		s.invoice("inv-c", 198300, 11),
	}

	s.mockCorrectionRepo.On("ListCorrectionsByPayer", ctx, "tenant-1", "acme").Return([]domain.Correction{}, nil).Once()
	baseline, err := s.service.FindMatches(ctx, s.deposit(453300, "acme"), pool)
	s.Require().NoError(err)
	s.Require().Len(baseline, 1)

	corrections := []domain.Correction{
		{PayerRef: "acme", SubsetSize: 2},
		{PayerRef: "acme", SubsetSize: 2},
	}
	s.mockCorrectionRepo.On("ListCorrectionsByPayer", ctx, "tenant-1", "acme").Return(corrections, nil).Once()
	boosted, err := s.service.FindMatches(ctx, s.deposit(453300, "acme"), pool)
	s.Require().NoError(err)
	s.Require().Len(boosted, 1)

	s.Greater(boosted[0].Confidence, baseline[0].Confidence)
}

func (s *MatchingServiceTestSuite) TestTieBreakPrefersSmallerSubsetAndRecency() {
	// Two single-invoice exact candidates force the deterministic tie-break chain
	// down to the invoice-id comparison.
	pool := []domain.Invoice{
		s.invoice("inv-x", 50000, 7),
		s.invoice("inv-y", 50000, 7),
	}

	matches, err := s.service.FindMatches(context.Background(), s.deposit(50000, ""), pool)

	s.Require().NoError(err)
	s.Require().Len(matches, 2)
	s.Equal(1.0, matches[0].Confidence)
	s.Equal(1.0, matches[1].Confidence)
	s.Equal([]string{"inv-x"}, matches[0].InvoiceIDs)
}

func (s *MatchingServiceTestSuite) TestExactMatchSurvivesDenseNearMissPool() {
	// 252 five-invoice combinations of the 1980s sum to 9900, inside the 100-unit
	// tolerance of a 10000 deposit. They exceed the solution cap on their own; the
	// single exact invoice must still come out ranked first at confidence 1.0.
	pool := make([]domain.Invoice, 0, 11)
	for i := 0; i < 10; i++ {
		pool = append(pool, s.invoice(fmt.Sprintf("inv-near-%02d", i), 1980, 5))
	}
	pool = append(pool, s.invoice("inv-exact", 10000, 5))

	matches, err := s.service.FindMatches(context.Background(), s.deposit(10000, ""), pool)

	s.Require().NoError(err)
	s.Require().NotEmpty(matches)
	s.Equal([]string{"inv-exact"}, matches[0].InvoiceIDs)
	s.Equal(int64(0), matches[0].Residual)
	s.Equal(1.0, matches[0].Confidence)
}

func (s *MatchingServiceTestSuite) TestInvoiceIDsSortedForReproducibility() {
	pool := []domain.Invoice{
		s.invoice("inv-z", 255000, 12),
		s.invoice("inv-a", 198300, 11),
	}

	matches, err := s.service.FindMatches(context.Background(), s.deposit(453300, ""), pool)

	s.Require().NoError(err)
	s.Require().Len(matches, 1)
	s.Equal([]string{"inv-a", "inv-z"}, matches[0].InvoiceIDs)
}

func TestMatchingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MatchingServiceTestSuite))
}
