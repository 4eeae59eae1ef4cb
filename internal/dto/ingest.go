package dto

import (
	"time"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
)

// RawEvent is one raw money-movement record as delivered by an ingestion connector.
// Amount is a decimal string in major units (e.g. "125.40"); the normalizer converts
// it to minor-unit integers. Connectors guarantee at-least-once delivery, so the
// same external_ref may arrive more than once.
type RawEvent struct {
	Source      string            `json:"source" binding:"required"`
	ExternalRef string            `json:"externalRef" binding:"required"`
	Amount      string            `json:"amount"`
	OccurredAt  string            `json:"occurredAt"` // RFC3339
	AccountRef  string            `json:"accountRef"`
	PayerRef    string            `json:"payerRef"`
	Metadata    map[string]string `json:"metadata"`
}

// IngestRequest is a batch of raw events from a single connector delivery.
type IngestRequest struct {
	Events []RawEvent `json:"events" binding:"required,min=1,dive"`
}

// IngestSummary reports the outcome of a batch ingest. Rejected payloads are queued
// for operator triage, not dropped.
type IngestSummary struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// ListRejectionsParams pages the operator triage queue.
type ListRejectionsParams struct {
	Limit int `form:"limit,default=50"`
}

// RejectionResponse is the API representation of a queued normalization failure.
type RejectionResponse struct {
	RejectionID string    `json:"rejectionID"`
	Source      string    `json:"source"`
	ExternalRef string    `json:"externalRef,omitempty"`
	Payload     string    `json:"payload"`
	Reason      string    `json:"reason"`
	ReceivedAt  time.Time `json:"receivedAt"`
}

// ToRejectionResponses maps queued rejections to their API representation.
func ToRejectionResponses(rejections []domain.IngestRejection) []RejectionResponse {
	out := make([]RejectionResponse, len(rejections))
	for i, r := range rejections {
		out[i] = RejectionResponse{
			RejectionID: r.RejectionID,
			Source:      r.Source,
			ExternalRef: r.ExternalRef,
			Payload:     r.Payload,
			Reason:      r.Reason,
			ReceivedAt:  r.ReceivedAt,
		}
	}
	return out
}
