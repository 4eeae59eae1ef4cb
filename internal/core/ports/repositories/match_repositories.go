package repositories

import (
	"context"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
)

// MatchReader defines read operations for candidate matches.
type MatchReader interface {
	// FindMatchByID retrieves a single match.
	FindMatchByID(ctx context.Context, matchID string) (*domain.Match, error)

	// ListMatchesByDeposit retrieves all matches recorded for a deposit.
	ListMatchesByDeposit(ctx context.Context, depositEventID string) ([]domain.Match, error)
}

// MatchWriter defines write operations for candidate matches.
type MatchWriter interface {
	// SaveMatches persists a batch of candidate matches.
	SaveMatches(ctx context.Context, matches []domain.Match) error

	// UpdateMatchStatus transitions a match to the given status.
	UpdateMatchStatus(ctx context.Context, matchID string, status domain.MatchStatus) error
}

// MatchRepositoryFacade combines match repository interfaces.
type MatchRepositoryFacade interface {
	MatchReader
	MatchWriter
}
