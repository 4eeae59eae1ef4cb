package domain

import "time"

// MatchStatus is the lifecycle state of a candidate match.
type MatchStatus string

const (
	MatchAutoApplied     MatchStatus = "AUTO_APPLIED"
	MatchPendingReview   MatchStatus = "PENDING_REVIEW"
	MatchResolvedByHuman MatchStatus = "RESOLVED_BY_HUMAN"
	MatchRejected        MatchStatus = "REJECTED"
	MatchSuperseded      MatchStatus = "SUPERSEDED"
)

// Match is one candidate solution for a deposit: the subset of invoices whose net
// value explains the deposit amount, with the residual and a 0..1 confidence.
// Only one match per deposit may reach AUTO_APPLIED or RESOLVED_BY_HUMAN.
type Match struct {
	MatchID        string      `json:"matchID"`
	TenantID       string      `json:"tenantID"`
	DepositEventID string      `json:"depositEventID"`
	InvoiceIDs     []string    `json:"invoiceIDs"` // sorted ascending for reproducibility
	Residual       int64       `json:"residual"`   // deposit amount minus subset sum
	Confidence     float64     `json:"confidence"`
	Status         MatchStatus `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`
}
