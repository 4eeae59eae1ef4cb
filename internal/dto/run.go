package dto

import (
	"time"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
)

// RunResponse summarizes a reconciliation run.
type RunResponse struct {
	RunID            string     `json:"runID"`
	Status           string     `json:"status"`
	StartedAt        time.Time  `json:"startedAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	DepositsSeen     int        `json:"depositsSeen"`
	AutoApplied      int        `json:"autoApplied"`
	PendingReview    int        `json:"pendingReview"`
	ExceptionsRaised int        `json:"exceptionsRaised"`
	Deferred         int        `json:"deferred"`
}

// ToRunResponse maps a domain run to its API representation.
func ToRunResponse(r *domain.ReconRun) RunResponse {
	return RunResponse{
		RunID:            r.RunID,
		Status:           string(r.Status),
		StartedAt:        r.StartedAt,
		CompletedAt:      r.CompletedAt,
		DepositsSeen:     r.DepositsSeen,
		AutoApplied:      r.AutoApplied,
		PendingReview:    r.PendingReview,
		ExceptionsRaised: r.ExceptionsRaised,
		Deferred:         r.Deferred,
	}
}
