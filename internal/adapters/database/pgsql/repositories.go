package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/data-steve/rowcol-sub000/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgx-backed repository over a shared pool.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		EventRepo:      NewPgxEventRepository(pool),
		GraphRepo:      NewPgxGraphRepository(pool),
		InvoiceRepo:    NewPgxInvoiceRepository(pool),
		MatchRepo:      NewPgxMatchRepository(pool),
		ExceptionRepo:  NewPgxExceptionRepository(pool),
		CorrectionRepo: NewPgxCorrectionRepository(pool),
		LedgerRepo:     NewPgxLedgerRepository(pool),
		ResolutionRepo: NewPgxResolutionRepository(pool),
		RunRepo:        NewPgxRunRepository(pool),
	}
}
