package domain

import "time"

// ExceptionKind classifies why a deposit or invoice could not be resolved
// automatically. All kinds are business-expected outcomes, not failures: they are
// first-class queue items, never thrown as errors.
type ExceptionKind string

const (
	// ExceptionARAmbig: multiple viable invoice subsets, or confidence in the
	// review band; carries the ranked candidate list.
	ExceptionARAmbig ExceptionKind = "AR_AMBIG"
	// ExceptionNoMatch: no viable invoice subset found for the deposit.
	ExceptionNoMatch ExceptionKind = "NO_MATCH"
	// ExceptionUnmapped: the deposit's payer could not be identified at all.
	ExceptionUnmapped ExceptionKind = "UNMAPPED"
	// ExceptionTiming: settlement arrived outside the expected lag window. Raised
	// independently of match confidence, as a data-quality signal.
	ExceptionTiming ExceptionKind = "TIMING"
	// ExceptionGhostAR: invoice marked paid by the operations system with no
	// corroborating bank/processor event within the lookback window.
	ExceptionGhostAR ExceptionKind = "GHOST_AR"
)

// ExceptionStatus tracks the open → resolved transition of a queue item.
type ExceptionStatus string

const (
	ExceptionOpen     ExceptionStatus = "OPEN"
	ExceptionResolved ExceptionStatus = "RESOLVED"
)

// Exception is an unresolved reconciliation case awaiting human review.
type Exception struct {
	ExceptionID    string          `json:"exceptionID"`
	TenantID       string          `json:"tenantID"`
	Kind           ExceptionKind   `json:"kind"`
	DepositEventID string          `json:"depositEventID,omitempty"`
	InvoiceID      string          `json:"invoiceID,omitempty"`
	// CandidateMatchIDs is the ranked candidate list for AR_AMBIG, best first.
	CandidateMatchIDs []string        `json:"candidateMatchIDs,omitempty"`
	Status            ExceptionStatus `json:"status"`
	OpenedAt          time.Time       `json:"openedAt"`
	ResolvedAt        *time.Time      `json:"resolvedAt,omitempty"`
	Resolution        string          `json:"resolution,omitempty"`
}
