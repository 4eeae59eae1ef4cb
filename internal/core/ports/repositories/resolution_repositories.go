package repositories

import (
	"context"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
)

// ResolutionCommit bundles everything a resolved deposit writes. The commit is
// transactional: either all of it lands or none of it does, so a run aborted
// between deposits never leaves partial state.
type ResolutionCommit struct {
	Match       domain.Match
	ClaimIDs    []string // invoices to claim OPEN -> MATCHED
	Edges       []domain.Edge
	LedgerEntry domain.LedgerEntry
	// SupersedeMatchIDs are sibling candidate matches to mark SUPERSEDED.
	SupersedeMatchIDs []string
}

// ResolutionWriter commits a resolved deposit atomically.
type ResolutionWriter interface {
	// CommitResolution claims the invoices (optimistic OPEN -> MATCHED check-then-set),
	// records the winning match, creates PAID_BY edges and posts exactly one ledger
	// entry, all in a single transaction. Returns apperrors.ErrInvoiceClaimConflict
	// if any invoice was claimed concurrently, and apperrors.ErrDuplicate if a
	// ledger entry for the settlement event already exists.
	CommitResolution(ctx context.Context, commit ResolutionCommit) error
}
