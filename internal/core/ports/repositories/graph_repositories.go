package repositories

import (
	"context"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
)

// EdgeReader defines read operations for identity graph edges.
type EdgeReader interface {
	// FindEdgesFrom retrieves edges of the given type originating at eventID.
	FindEdgesFrom(ctx context.Context, eventID string, edgeType domain.EdgeType) ([]domain.Edge, error)

	// FindEdgesTo retrieves edges of the given type terminating at eventID.
	FindEdgesTo(ctx context.Context, eventID string, edgeType domain.EdgeType) ([]domain.Edge, error)
}

// EdgeWriter defines write operations for identity graph edges.
type EdgeWriter interface {
	// SaveEdges persists a set of edges. Edge identity is (from, to, type):
	// re-saving an identical edge is a no-op, not a duplicate.
	SaveEdges(ctx context.Context, edges []domain.Edge) error
}

// GraphRepositoryFacade combines edge repository interfaces.
type GraphRepositoryFacade interface {
	EdgeReader
	EdgeWriter
}
