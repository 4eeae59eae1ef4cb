package repositories

import (
	"context"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
)

// CorrectionReader defines read operations for persisted human decisions.
type CorrectionReader interface {
	// ListCorrectionsByPayer retrieves all corrections recorded for a payer.
	ListCorrectionsByPayer(ctx context.Context, tenantID string, payerRef string) ([]domain.Correction, error)
}

// CorrectionWriter defines write operations for persisted human decisions.
// Corrections are append-only: there is no update or delete.
type CorrectionWriter interface {
	SaveCorrection(ctx context.Context, correction domain.Correction) error
}

// CorrectionRepositoryFacade combines correction repository interfaces.
type CorrectionRepositoryFacade interface {
	CorrectionReader
	CorrectionWriter
}
