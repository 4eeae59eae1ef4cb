package services

import (
	"context"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	"github.com/data-steve/rowcol-sub000/internal/dto"
)

// ReconSvcFacade is the reconciliation orchestrator: batch runs, the exception
// queue, human resolution, and the cash ledger feed.
type ReconSvcFacade interface {
	// RunReconciliation executes one batch run for a tenant under the per-tenant
	// run lock. Returns an error wrapping apperrors.ErrRunLockConflict when another
	// run holds the lock.
	RunReconciliation(ctx context.Context, tenantID string, triggeredBy string) (*domain.ReconRun, error)

	// SweepGhostAR flags invoices marked paid by the operations system that have no
	// corroborating bank or processor evidence within the lookback window. Returns
	// the number of new GHOST_AR exceptions raised.
	SweepGhostAR(ctx context.Context, tenantID string) (int, error)

	// ListExceptions queries the review queue.
	ListExceptions(ctx context.Context, tenantID string, params dto.ListExceptionsParams) ([]domain.Exception, error)

	// ResolveException records a human decision as a Correction and, when a
	// candidate set is selected, performs the same edge creation and ledger posting
	// as an automatic apply.
	ResolveException(ctx context.Context, tenantID string, exceptionID string, req dto.ResolveExceptionRequest, resolvedBy string) (*domain.Exception, error)

	// ListLedgerEntries exposes the read-only feed of posted cash ledger entries.
	ListLedgerEntries(ctx context.Context, tenantID string, params dto.ListLedgerParams) ([]domain.LedgerEntry, error)
}
