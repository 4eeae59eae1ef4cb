package domain

import "time"

// RunStatus is the lifecycle state of a reconciliation run.
type RunStatus string

const (
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunAborted   RunStatus = "ABORTED"
)

// ReconRun records one scheduled reconciliation batch for a tenant. The checkpoint
// cursor advances after every deposit, so an aborted run resumes without reprocessing
// committed deposits.
type ReconRun struct {
	RunID             string     `json:"runID"`
	TenantID          string     `json:"tenantID"`
	Status            RunStatus  `json:"status"`
	StartedAt         time.Time  `json:"startedAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	CheckpointEventID string     `json:"checkpointEventID,omitempty"`
	DepositsSeen      int        `json:"depositsSeen"`
	AutoApplied       int        `json:"autoApplied"`
	PendingReview     int        `json:"pendingReview"`
	ExceptionsRaised  int        `json:"exceptionsRaised"`
	Deferred          int        `json:"deferred"`
}
