package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	portsrepo "github.com/data-steve/rowcol-sub000/internal/core/ports/repositories"
)

type PgxGraphRepository struct {
	pool *pgxpool.Pool
}

// NewPgxGraphRepository creates a new repository for identity-graph edges.
func NewPgxGraphRepository(pool *pgxpool.Pool) portsrepo.GraphRepositoryFacade {
	return &PgxGraphRepository{pool: pool}
}

var _ portsrepo.GraphRepositoryFacade = (*PgxGraphRepository)(nil)

// SaveEdges inserts a batch of edges. Edge identity is (from, to, type): re-adding
// an identical edge is a no-op.
func (r *PgxGraphRepository) SaveEdges(ctx context.Context, edges []domain.Edge) error {
	if len(edges) == 0 {
		return nil
	}

	query := `
		INSERT INTO edges (edge_id, from_event_id, to_event_id, edge_type, confidence, source, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (from_event_id, to_event_id, edge_type) DO NOTHING;
	`
	batch := &pgx.Batch{}
	for _, edge := range edges {
		batch.Queue(query,
			edge.EdgeID,
			edge.FromEventID,
			edge.ToEventID,
			edge.Type,
			edge.Confidence,
			edge.Source,
			edge.CreatedAt,
			edge.CreatedBy,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute edge batch: %w", err)
	}
	return nil
}

// FindEdgesFrom retrieves edges of the given type originating at eventID.
func (r *PgxGraphRepository) FindEdgesFrom(ctx context.Context, fromEventID string, edgeType domain.EdgeType) ([]domain.Edge, error) {
	query := `
		SELECT edge_id, from_event_id, to_event_id, edge_type, confidence, source, created_at, created_by
		FROM edges
		WHERE from_event_id = $1 AND edge_type = $2
		ORDER BY created_at;
	`
	return r.queryEdges(ctx, query, fromEventID, edgeType)
}

// FindEdgesTo retrieves edges of the given type terminating at eventID.
func (r *PgxGraphRepository) FindEdgesTo(ctx context.Context, toEventID string, edgeType domain.EdgeType) ([]domain.Edge, error) {
	query := `
		SELECT edge_id, from_event_id, to_event_id, edge_type, confidence, source, created_at, created_by
		FROM edges
		WHERE to_event_id = $1 AND edge_type = $2
		ORDER BY created_at;
	`
	return r.queryEdges(ctx, query, toEventID, edgeType)
}

func (r *PgxGraphRepository) queryEdges(ctx context.Context, query string, args ...any) ([]domain.Edge, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	edges := []domain.Edge{}
	for rows.Next() {
		var edge domain.Edge
		if err := rows.Scan(
			&edge.EdgeID,
			&edge.FromEventID,
			&edge.ToEventID,
			&edge.Type,
			&edge.Confidence,
			&edge.Source,
			&edge.CreatedAt,
			&edge.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan edge row: %w", err)
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edge rows: %w", err)
	}
	return edges, nil
}
