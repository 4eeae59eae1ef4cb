package repositories

import (
	"context"
	"time"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
)

// InvoiceReader defines read operations for invoices.
type InvoiceReader interface {
	// FindInvoiceByID retrieves a single invoice.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// FindInvoicesByIDs retrieves multiple invoices keyed by invoice ID.
	FindInvoicesByIDs(ctx context.Context, invoiceIDs []string) (map[string]domain.Invoice, error)

	// ListOpenInvoicesByPayer retrieves OPEN invoices for a payer issued within
	// [issuedAfter, issuedBefore], capped at limit, oldest first.
	ListOpenInvoicesByPayer(ctx context.Context, tenantID string, payerRef string, issuedAfter, issuedBefore time.Time, limit int) ([]domain.Invoice, error)

	// ListPaidUnconfirmed retrieves invoices the operations system marked paid
	// before the cutoff that still have no PAID_BY edge. Input to the ghost sweep.
	ListPaidUnconfirmed(ctx context.Context, tenantID string, paidBefore time.Time) ([]domain.Invoice, error)
}

// InvoiceWriter defines write operations for invoices.
type InvoiceWriter interface {
	// SaveInvoice upserts an invoice record from normalization. Status transitions
	// to MATCHED happen only through resolution commits, never here.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error
}

// InvoiceRepositoryFacade combines invoice repository interfaces.
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}
