package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

const invoiceColumns = `id, tenant_id, invoice_number, customer_id, status, items,
	subtotal::text, tax_rate::text, tax_amount::text, discount::text, total::text, currency,
	issue_date, due_date, payment_date, payment_method, payment_reference,
	created_by, created_at, updated_at`

// InvoiceRepository is the secondary adapter for invoice persistence.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

var _ ports.InvoiceRepository = (*InvoiceRepository)(nil)

// NewInvoiceRepository creates a new invoice repository.
func NewInvoiceRepository(pool *pgxpool.Pool) ports.InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var (
		inv                          domain.Invoice
		status, currency             string
		items                        []byte
		subtotal, taxRate, taxAmount string
		discount, total              string
		paymentDate                  pgtype.Timestamptz
		paymentMethod                pgtype.Text
	)
	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.InvoiceNumber, &inv.CustomerID, &status, &items,
		&subtotal, &taxRate, &taxAmount, &discount, &total, &currency,
		&inv.IssueDate, &inv.DueDate, &paymentDate, &paymentMethod, &inv.PaymentRef,
		&inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.Status = domain.InvoiceStatus(status)
	inv.Currency = strings.TrimSpace(currency)
	if err := json.Unmarshal(items, &inv.Items); err != nil {
		return nil, fmt.Errorf("invoice items: %w", err)
	}

	amounts := []struct {
		src string
		dst *decimal.Decimal
	}{
		{subtotal, &inv.Subtotal},
		{taxRate, &inv.TaxRate},
		{taxAmount, &inv.TaxAmount},
		{discount, &inv.Discount},
		{total, &inv.Total},
	}
	for _, a := range amounts {
		if *a.dst, err = parseNumeric(a.src); err != nil {
			return nil, fmt.Errorf("invoice amount: %w", err)
		}
	}

	inv.PaymentDate = fromNullTime(paymentDate)
	if paymentMethod.Valid {
		m := domain.PaymentMethod(paymentMethod.String)
		inv.PaymentMethod = &m
	}
	inv.IssueDate = inv.IssueDate.UTC()
	inv.DueDate = inv.DueDate.UTC()
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.UpdatedAt = inv.UpdatedAt.UTC()
	return &inv, nil
}

func paymentMethodText(m *domain.PaymentMethod) pgtype.Text {
	if m == nil {
		return pgtype.Text{}
	}
	s := string(*m)
	return toNullText(&s)
}

// Create persists a new invoice. Invoice numbers are unique per tenant.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	items, err := json.Marshal(invoice.Items)
	if err != nil {
		return nil, fmt.Errorf("encode invoice items: %w", err)
	}

	q := `
		INSERT INTO invoices (id, tenant_id, invoice_number, customer_id, status, items,
			subtotal, tax_rate, tax_amount, discount, total, currency,
			issue_date, due_date, payment_date, payment_method, payment_reference,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6,
			$7::numeric, $8::numeric, $9::numeric, $10::numeric, $11::numeric, $12,
			$13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING ` + invoiceColumns

	created, err := scanInvoice(GetDBTX(ctx, r.pool).QueryRow(ctx, q,
		invoice.ID, invoice.TenantID, invoice.InvoiceNumber, invoice.CustomerID, string(invoice.Status), items,
		invoice.Subtotal.String(), invoice.TaxRate.String(), invoice.TaxAmount.String(),
		invoice.Discount.String(), invoice.Total.String(), invoice.Currency,
		invoice.IssueDate, invoice.DueDate, toNullTime(invoice.PaymentDate),
		paymentMethodText(invoice.PaymentMethod), invoice.PaymentRef,
		invoice.CreatedBy, invoice.CreatedAt, invoice.UpdatedAt,
	))
	if err != nil {
		if _, ok := constraintViolation(err, pgUniqueViolation); ok {
			return nil, fmt.Errorf("invoice %s: %w", invoice.InvoiceNumber, apperrors.ErrConflict)
		}
		if _, ok := constraintViolation(err, pgForeignKeyViolation); ok {
			return nil, apperrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return created, nil
}

// GetByID returns an invoice of the given tenant.
func (r *InvoiceRepository) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE tenant_id = $1 AND id = $2`

	invoice, err := scanInvoice(GetDBTX(ctx, r.pool).QueryRow(ctx, q, tenantID, invoiceID))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return invoice, nil
}

// Update writes the status and payment fields of an invoice back. Paid and
// Cancelled rows are never rewritten, so of two racing payments only the
// first one lands; the other gets ErrInvoiceNotPayable.
func (r *InvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	q := `
		UPDATE invoices SET
			status = $3, payment_date = $4, payment_method = $5, payment_reference = $6, updated_at = $7
		WHERE tenant_id = $1 AND id = $2 AND status NOT IN ('Paid', 'Cancelled')
		RETURNING ` + invoiceColumns

	db := GetDBTX(ctx, r.pool)
	updated, err := scanInvoice(db.QueryRow(ctx, q,
		invoice.TenantID, invoice.ID, string(invoice.Status), toNullTime(invoice.PaymentDate),
		paymentMethodText(invoice.PaymentMethod), invoice.PaymentRef, invoice.UpdatedAt,
	))
	if err == nil {
		return updated, nil
	}
	if !isNoRows(err) {
		return nil, fmt.Errorf("update invoice: %w", err)
	}

	var exists bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM invoices WHERE tenant_id = $1 AND id = $2)`,
		invoice.TenantID, invoice.ID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check invoice: %w", err)
	}
	if exists {
		return nil, apperrors.ErrInvoiceNotPayable
	}
	return nil, apperrors.ErrInvoiceNotFound
}

// List returns invoices of a tenant, newest first.
func (r *InvoiceRepository) List(ctx context.Context, filter ports.InvoiceFilter) ([]*domain.Invoice, error) {
	where := []string{"tenant_id = $1"}
	args := []any{filter.TenantID}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}

	args = append(args, filter.Limit, filter.Offset)
	q := fmt.Sprintf(`SELECT %s FROM invoices WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		invoiceColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// NextSequence reserves the next number for a tenant and year. The row lock
// taken by the upsert serialises concurrent invoice creation.
func (r *InvoiceRepository) NextSequence(ctx context.Context, tenantID uuid.UUID, year int) (int64, error) {
	const q = `
		INSERT INTO invoice_sequences (tenant_id, year, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, year)
		DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value`

	var seq int64
	if err := GetDBTX(ctx, r.pool).QueryRow(ctx, q, tenantID, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next invoice sequence: %w", err)
	}
	return seq, nil
}
