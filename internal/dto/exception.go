package dto

import (
	"time"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
)

// ListExceptionsParams filters the review queue.
type ListExceptionsParams struct {
	Kind   *string `form:"kind"`
	Status string  `form:"status,default=OPEN"`
	Limit  int     `form:"limit,default=50"`
}

// ExceptionResponse is the API representation of a review-queue item.
type ExceptionResponse struct {
	ExceptionID       string     `json:"exceptionID"`
	Kind              string     `json:"kind"`
	DepositEventID    string     `json:"depositEventID,omitempty"`
	InvoiceID         string     `json:"invoiceID,omitempty"`
	CandidateMatchIDs []string   `json:"candidateMatchIDs,omitempty"`
	Status            string     `json:"status"`
	OpenedAt          time.Time  `json:"openedAt"`
	ResolvedAt        *time.Time `json:"resolvedAt,omitempty"`
	Resolution        string     `json:"resolution,omitempty"`
}

// ToExceptionResponse maps a domain exception to its API representation.
func ToExceptionResponse(e *domain.Exception) ExceptionResponse {
	return ExceptionResponse{
		ExceptionID:       e.ExceptionID,
		Kind:              string(e.Kind),
		DepositEventID:    e.DepositEventID,
		InvoiceID:         e.InvoiceID,
		CandidateMatchIDs: e.CandidateMatchIDs,
		Status:            string(e.Status),
		OpenedAt:          e.OpenedAt,
		ResolvedAt:        e.ResolvedAt,
		Resolution:        e.Resolution,
	}
}

// ToExceptionResponses maps a slice of domain exceptions.
func ToExceptionResponses(exceptions []domain.Exception) []ExceptionResponse {
	out := make([]ExceptionResponse, len(exceptions))
	for i := range exceptions {
		out[i] = ToExceptionResponse(&exceptions[i])
	}
	return out
}

// ResolveExceptionRequest carries a human resolution: either a chosen candidate
// match, or a custom invoice mapping, plus a free-form rationale.
type ResolveExceptionRequest struct {
	ChosenMatchID    *string  `json:"chosenMatchID"`
	CustomInvoiceIDs []string `json:"customInvoiceIDs"`
	Rationale        string   `json:"rationale" binding:"required"`
}
