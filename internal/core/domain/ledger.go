package domain

import "time"

// EntryDirection is the cash flow direction of a ledger entry.
type EntryDirection string

const (
	Inflow  EntryDirection = "INFLOW"
	Outflow EntryDirection = "OUTFLOW"
)

// LedgerEntry is the single count-once cash posting derived from a resolved match or
// a standalone bank event. Exactly one entry exists per bank-settlement event,
// regardless of how many upstream charge/payout nodes decompose into it. Entries are
// immutable once posted: adjustments require a new entry linked via ReversesEntryID,
// never an in-place edit.
type LedgerEntry struct {
	EntryID           string         `json:"entryID"`
	TenantID          string         `json:"tenantID"`
	SettlementEventID string         `json:"settlementEventID"`
	MatchID           *string        `json:"matchID,omitempty"`
	Amount            int64          `json:"amount"`
	Direction         EntryDirection `json:"direction"`
	PostedAt          time.Time      `json:"postedAt"`
	ReversesEntryID   *string        `json:"reversesEntryID,omitempty"`
}

// DirectionForAmount returns the entry direction implied by a signed amount.
func DirectionForAmount(amount int64) EntryDirection {
	if amount < 0 {
		return Outflow
	}
	return Inflow
}
