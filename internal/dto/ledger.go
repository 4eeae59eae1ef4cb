package dto

import (
	"time"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
)

// ListLedgerParams pages the read-only cash ledger feed.
type ListLedgerParams struct {
	Limit  int        `form:"limit,default=50"`
	Before *time.Time `form:"before" time_format:"2006-01-02T15:04:05Z07:00"`
}

// LedgerEntryResponse is the API representation of a posted cash ledger entry.
type LedgerEntryResponse struct {
	EntryID           string    `json:"entryID"`
	SettlementEventID string    `json:"settlementEventID"`
	MatchID           *string   `json:"matchID,omitempty"`
	Amount            int64     `json:"amount"`
	Direction         string    `json:"direction"`
	PostedAt          time.Time `json:"postedAt"`
	ReversesEntryID   *string   `json:"reversesEntryID,omitempty"`
}

// ToLedgerEntryResponses maps posted entries to their API representation.
func ToLedgerEntryResponses(entries []domain.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = LedgerEntryResponse{
			EntryID:           e.EntryID,
			SettlementEventID: e.SettlementEventID,
			MatchID:           e.MatchID,
			Amount:            e.Amount,
			Direction:         string(e.Direction),
			PostedAt:          e.PostedAt,
			ReversesEntryID:   e.ReversesEntryID,
		}
	}
	return out
}
