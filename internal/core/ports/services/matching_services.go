package services

import (
	"context"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
)

// MatcherSvcFacade searches an invoice candidate pool for the subsets whose net
// value explains a deposit, ranked by confidence. Pure given its inputs: safe to
// call from concurrent workers.
type MatcherSvcFacade interface {
	// FindMatches returns candidate matches for the deposit ordered best first.
	// An empty pool yields an empty list. Matches are not persisted here.
	FindMatches(ctx context.Context, deposit domain.Event, pool []domain.Invoice) ([]domain.Match, error)
}
