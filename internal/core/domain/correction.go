package domain

import "time"

// Correction is a persisted human decision on an exception. Corrections are
// append-only (audit trail) and are read by the matching engine to adjust scoring
// for future deposits from the same payer.
type Correction struct {
	CorrectionID     string    `json:"correctionID"`
	TenantID         string    `json:"tenantID"`
	ExceptionID      string    `json:"exceptionID"`
	PayerRef         string    `json:"payerRef"`
	ChosenMatchID    string    `json:"chosenMatchID,omitempty"`
	ChosenInvoiceIDs []string  `json:"chosenInvoiceIDs"`
	SubsetSize       int       `json:"subsetSize"`
	Rationale        string    `json:"rationale"`
	CreatedAt        time.Time `json:"createdAt"`
	CreatedBy        string    `json:"createdBy"`
}
