package domain

import "time"

// IngestRejection is a raw payload that failed normalization. Rejections are queued
// for operator triage; evidence of money movement is never silently dropped.
type IngestRejection struct {
	RejectionID string    `json:"rejectionID"`
	TenantID    string    `json:"tenantID"`
	Source      string    `json:"source"`
	ExternalRef string    `json:"externalRef,omitempty"`
	Payload     string    `json:"payload"` // raw JSON passthrough
	Reason      string    `json:"reason"`
	ReceivedAt  time.Time `json:"receivedAt"`
}
