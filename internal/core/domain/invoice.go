package domain

import "time"

// InvoiceStatus indicates whether an invoice is still a matching candidate.
type InvoiceStatus string

const (
	InvoiceOpen    InvoiceStatus = "OPEN"
	InvoiceMatched InvoiceStatus = "MATCHED"
	InvoiceVoid    InvoiceStatus = "VOID"
)

// Invoice is an outstanding receivable from the operations system. An invoice is
// eligible as a matching candidate while OPEN; a committed PAID_BY edge marks it
// MATCHED. AmountDue is in minor units.
type Invoice struct {
	InvoiceID string        `json:"invoiceID"`
	TenantID  string        `json:"tenantID"`
	PayerRef  string        `json:"payerRef"`
	AmountDue int64         `json:"amountDue"`
	IssuedAt  time.Time     `json:"issuedAt"`
	Status    InvoiceStatus `json:"status"`
	// ExternalPaidAt is the "paid" marker from the operations system, if any. An
	// invoice marked paid with no corroborating bank/processor event within the
	// lookback window is a ghost receivable.
	ExternalPaidAt *time.Time `json:"externalPaidAt,omitempty"`
	AuditFields
}
