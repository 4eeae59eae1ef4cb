package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/data-steve/rowcol-sub000/internal/apperrors"
	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	portsrepo "github.com/data-steve/rowcol-sub000/internal/core/ports/repositories"
)

type PgxInvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewPgxInvoiceRepository creates a new repository for invoice records.
func NewPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{pool: pool}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

// SaveInvoice upserts an invoice from normalization. A MATCHED invoice is never
// overwritten here: only resolution commits transition that status.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	query := `
		INSERT INTO invoices (invoice_id, tenant_id, payer_ref, amount_due, issued_at, status, external_paid_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (invoice_id) DO UPDATE
		SET payer_ref = EXCLUDED.payer_ref,
		    amount_due = EXCLUDED.amount_due,
		    issued_at = EXCLUDED.issued_at,
		    status = EXCLUDED.status,
		    external_paid_at = EXCLUDED.external_paid_at,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by
		WHERE invoices.status <> 'MATCHED';
	`
	_, err := r.pool.Exec(ctx, query,
		invoice.InvoiceID,
		invoice.TenantID,
		invoice.PayerRef,
		invoice.AmountDue,
		invoice.IssuedAt,
		invoice.Status,
		invoice.ExternalPaidAt,
		invoice.CreatedAt,
		invoice.CreatedBy,
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert invoice %s: %w", invoice.InvoiceID, err)
	}
	return nil
}

// FindInvoiceByID retrieves a single invoice.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := selectInvoice + ` WHERE invoice_id = $1;`
	invoice, err := scanInvoice(r.pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find invoice by ID %s: %w", invoiceID, err)
	}
	return invoice, nil
}

// FindInvoicesByIDs retrieves multiple invoices keyed by invoice ID. Missing IDs
// are simply absent from the map.
func (r *PgxInvoiceRepository) FindInvoicesByIDs(ctx context.Context, invoiceIDs []string) (map[string]domain.Invoice, error) {
	if len(invoiceIDs) == 0 {
		return map[string]domain.Invoice{}, nil
	}
	query := selectInvoice + ` WHERE invoice_id = ANY($1);`
	rows, err := r.pool.Query(ctx, query, invoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices by IDs: %w", err)
	}
	defer rows.Close()

	invoices := make(map[string]domain.Invoice, len(invoiceIDs))
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		invoices[invoice.InvoiceID] = *invoice
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", err)
	}
	return invoices, nil
}

// ListOpenInvoicesByPayer retrieves OPEN invoices for a payer issued within
// [issuedAfter, issuedBefore], oldest first, capped at limit.
func (r *PgxInvoiceRepository) ListOpenInvoicesByPayer(ctx context.Context, tenantID string, payerRef string, issuedAfter, issuedBefore time.Time, limit int) ([]domain.Invoice, error) {
	query := selectInvoice + `
		WHERE tenant_id = $1
		  AND payer_ref = $2
		  AND status = 'OPEN'
		  AND issued_at >= $3
		  AND issued_at <= $4
		ORDER BY issued_at, invoice_id
		LIMIT $5;
	`
	rows, err := r.pool.Query(ctx, query, tenantID, payerRef, issuedAfter, issuedBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query open invoices for payer %s: %w", payerRef, err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

// ListPaidUnconfirmed retrieves OPEN invoices the operations system marked paid
// before the cutoff. These are the ghost-sweep inputs: "paid" externally, yet never
// claimed by a committed match.
func (r *PgxInvoiceRepository) ListPaidUnconfirmed(ctx context.Context, tenantID string, paidBefore time.Time) ([]domain.Invoice, error) {
	query := selectInvoice + `
		WHERE tenant_id = $1
		  AND status = 'OPEN'
		  AND external_paid_at IS NOT NULL
		  AND external_paid_at <= $2
		ORDER BY external_paid_at, invoice_id;
	`
	rows, err := r.pool.Query(ctx, query, tenantID, paidBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to query paid-unconfirmed invoices: %w", err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

const selectInvoice = `
	SELECT invoice_id, tenant_id, payer_ref, amount_due, issued_at, status, external_paid_at, created_at, created_by, last_updated_at, last_updated_by
	FROM invoices
`

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var invoice domain.Invoice
	if err := row.Scan(
		&invoice.InvoiceID,
		&invoice.TenantID,
		&invoice.PayerRef,
		&invoice.AmountDue,
		&invoice.IssuedAt,
		&invoice.Status,
		&invoice.ExternalPaidAt,
		&invoice.CreatedAt,
		&invoice.CreatedBy,
		&invoice.LastUpdatedAt,
		&invoice.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func collectInvoices(rows pgx.Rows) ([]domain.Invoice, error) {
	invoices := []domain.Invoice{}
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		invoices = append(invoices, *invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", err)
	}
	return invoices, nil
}
