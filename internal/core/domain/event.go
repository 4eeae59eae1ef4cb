package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// EventSource identifies the external system a money-movement event came from.
type EventSource string

const (
	SourceBank            EventSource = "bank"
	SourceProcessorCharge EventSource = "processor_charge"
	SourceProcessorPayout EventSource = "processor_payout"
	SourceInvoice         EventSource = "invoice"
	SourceInvoicePayment  EventSource = "invoice_payment"
)

// ValidSource reports whether s is one of the known event sources.
func ValidSource(s EventSource) bool {
	switch s {
	case SourceBank, SourceProcessorCharge, SourceProcessorPayout, SourceInvoice, SourceInvoicePayment:
		return true
	}
	return false
}

// Event is an immutable record of a money-movement fact. Events are append-only;
// corrections produce new events or edges, never edits.
// Amounts are signed integers in minor units (cents) to avoid floating-point error.
type Event struct {
	EventID     string            `json:"eventID"`
	TenantID    string            `json:"tenantID"`
	Source      EventSource       `json:"source"`
	ExternalRef string            `json:"externalRef"`
	Amount      int64             `json:"amount"`
	OccurredAt  time.Time         `json:"occurredAt"`
	AccountRef  string            `json:"accountRef"`
	PayerRef    string            `json:"payerRef"` // payer or payee; empty when unidentifiable
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// NewEventID derives a stable event identifier from (source, external_ref) so that
// re-ingestion of the same external event always normalizes to the same internal id.
func NewEventID(source EventSource, externalRef string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", source, externalRef)))
	return "evt_" + hex.EncodeToString(sum[:])[:24]
}
