package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that an operation conflicts with the current state of a resource.
var ErrConflict = errors.New("resource state conflict")

// ErrForbidden indicates that the caller is not allowed to perform the operation.
var ErrForbidden = errors.New("operation not permitted")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrMalformedEvent indicates a raw payload whose amount or timestamp is absent or
// unparseable. Such payloads are rejected at the normalization boundary and queued
// for operator triage, never retried automatically.
var ErrMalformedEvent = errors.New("malformed event payload")

// ErrDecompositionMismatch indicates a COMPOSED_OF edge set whose children do not
// sum to the parent amount within tolerance. The edge set is rejected as a whole.
var ErrDecompositionMismatch = errors.New("decomposition amounts do not match parent")

// ErrRunLockConflict indicates a reconciliation run was attempted while another run
// holds the tenant's lock. Callers retry with backoff; the run never proceeds.
var ErrRunLockConflict = errors.New("reconciliation run already in progress for tenant")

// ErrInvoiceClaimConflict indicates an optimistic invoice claim that lost to a
// concurrent claim within the same run.
var ErrInvoiceClaimConflict = errors.New("invoice already claimed by another match")
