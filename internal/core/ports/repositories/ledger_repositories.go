package repositories

import (
	"context"
	"time"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
)

// LedgerReader defines read operations for posted cash ledger entries.
type LedgerReader interface {
	// FindEntryBySettlementEvent retrieves the entry posted for a settlement event.
	FindEntryBySettlementEvent(ctx context.Context, settlementEventID string) (*domain.LedgerEntry, error)

	// ListEntries retrieves posted entries for a tenant, newest first. A non-nil
	// postedBefore cursor pages further back.
	ListEntries(ctx context.Context, tenantID string, limit int, postedBefore *time.Time) ([]domain.LedgerEntry, error)
}

// LedgerWriter defines write operations for the cash ledger. Entries are immutable:
// the only writes are the initial posting and linked reversal entries.
type LedgerWriter interface {
	// SaveEntry posts a new ledger entry. Returns apperrors.ErrDuplicate when an
	// entry for the same settlement event already exists (count-once invariant).
	SaveEntry(ctx context.Context, entry domain.LedgerEntry) error
}

// LedgerRepositoryFacade combines ledger repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
