package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

const customerColumns = `id, tenant_id, company_name, contact_name, email, phone, status, value::text,
	created_by, communications, deals, last_contact_date, created_at, updated_at`

const customerEmailConstraint = "customers_tenant_email_key"

// CustomerRepository is the secondary adapter for customer persistence.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

var _ ports.CustomerRepository = (*CustomerRepository)(nil)

// NewCustomerRepository creates a new customer repository.
func NewCustomerRepository(pool *pgxpool.Pool) ports.CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var (
		c               domain.Customer
		status, value   string
		comms, deals    []byte
		lastContactDate pgtype.Timestamptz
	)
	err := row.Scan(&c.ID, &c.TenantID, &c.CompanyName, &c.ContactName, &c.Email, &c.Phone,
		&status, &value, &c.CreatedBy, &comms, &deals, &lastContactDate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.Status = domain.CustomerStatus(status)
	if c.Value, err = parseNumeric(value); err != nil {
		return nil, fmt.Errorf("customer value: %w", err)
	}
	if err := json.Unmarshal(comms, &c.Communications); err != nil {
		return nil, fmt.Errorf("customer communications: %w", err)
	}
	if err := json.Unmarshal(deals, &c.Deals); err != nil {
		return nil, fmt.Errorf("customer deals: %w", err)
	}
	c.LastContactDate = fromNullTime(lastContactDate)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

// Create persists a new customer. Emails are unique per tenant.
func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	comms, err := encodeLog(customer.Communications)
	if err != nil {
		return nil, fmt.Errorf("encode communications: %w", err)
	}
	deals, err := encodeLog(customer.Deals)
	if err != nil {
		return nil, fmt.Errorf("encode deals: %w", err)
	}

	q := `
		INSERT INTO customers (id, tenant_id, company_name, contact_name, email, phone, status, value,
			created_by, communications, deals, last_contact_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10, $11, $12, $13, $14)
		RETURNING ` + customerColumns

	created, err := scanCustomer(GetDBTX(ctx, r.pool).QueryRow(ctx, q,
		customer.ID, customer.TenantID, customer.CompanyName, customer.ContactName, customer.Email,
		customer.Phone, string(customer.Status), customer.Value.String(), customer.CreatedBy,
		comms, deals, toNullTime(customer.LastContactDate), customer.CreatedAt, customer.UpdatedAt,
	))
	if err != nil {
		if name, ok := constraintViolation(err, pgUniqueViolation); ok && name == customerEmailConstraint {
			return nil, apperrors.ErrCustomerExists
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

// GetByID returns a customer of the given tenant.
func (r *CustomerRepository) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*domain.Customer, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE tenant_id = $1 AND id = $2`

	customer, err := scanCustomer(GetDBTX(ctx, r.pool).QueryRow(ctx, q, tenantID, customerID))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return customer, nil
}

// List returns customers of a tenant, newest first.
func (r *CustomerRepository) List(ctx context.Context, filter ports.CustomerFilter) ([]*domain.Customer, error) {
	q := `SELECT ` + customerColumns + ` FROM customers
		WHERE tenant_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, q, filter.TenantID, toNullText(status), filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]*domain.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// Update writes the profile fields of a customer back.
func (r *CustomerRepository) Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	q := `
		UPDATE customers SET
			company_name = $3, contact_name = $4, email = $5, phone = $6, status = $7,
			value = $8::numeric, updated_at = $9
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + customerColumns

	updated, err := scanCustomer(GetDBTX(ctx, r.pool).QueryRow(ctx, q,
		customer.TenantID, customer.ID, customer.CompanyName, customer.ContactName, customer.Email,
		customer.Phone, string(customer.Status), customer.Value.String(), customer.UpdatedAt,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrCustomerNotFound
		}
		if name, ok := constraintViolation(err, pgUniqueViolation); ok && name == customerEmailConstraint {
			return nil, apperrors.ErrCustomerExists
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return updated, nil
}

// Delete removes a customer. Tasks pointing at it are unlinked by the
// schema; invoices block the delete.
func (r *CustomerRepository) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	tag, err := GetDBTX(ctx, r.pool).Exec(ctx,
		`DELETE FROM customers WHERE tenant_id = $1 AND id = $2`, tenantID, customerID)
	if err != nil {
		if _, ok := constraintViolation(err, pgForeignKeyViolation); ok {
			return apperrors.ErrCustomerHasInvoices
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCustomerNotFound
	}
	return nil
}

// AppendCommunication appends in a single statement so concurrent writers
// never lose each other's entries. The last contact date never moves back.
func (r *CustomerRepository) AppendCommunication(ctx context.Context, tenantID, customerID uuid.UUID, entry domain.CustomerCommunication) (*domain.Customer, error) {
	payload, err := json.Marshal([]domain.CustomerCommunication{entry})
	if err != nil {
		return nil, fmt.Errorf("encode communication: %w", err)
	}

	q := `
		UPDATE customers SET
			communications = communications || $3::jsonb,
			last_contact_date = GREATEST(last_contact_date, $4),
			updated_at = $5
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + customerColumns

	return r.appendLog(ctx, q, "communication", tenantID, customerID, payload, entry.Date, time.Now().UTC())
}

// AppendDeal appends a deal in a single statement.
func (r *CustomerRepository) AppendDeal(ctx context.Context, tenantID, customerID uuid.UUID, deal domain.CustomerDeal) (*domain.Customer, error) {
	payload, err := json.Marshal([]domain.CustomerDeal{deal})
	if err != nil {
		return nil, fmt.Errorf("encode deal: %w", err)
	}

	q := `
		UPDATE customers SET deals = deals || $3::jsonb, updated_at = $4
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + customerColumns

	return r.appendLog(ctx, q, "deal", tenantID, customerID, payload, time.Now().UTC())
}

func (r *CustomerRepository) appendLog(ctx context.Context, q, what string, tenantID, customerID uuid.UUID, args ...any) (*domain.Customer, error) {
	customer, err := scanCustomer(GetDBTX(ctx, r.pool).QueryRow(ctx, q, append([]any{tenantID, customerID}, args...)...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("append %s: %w", what, err)
	}
	return customer, nil
}

// encodeLog marshals a log column, writing [] for an empty one.
func encodeLog[T any](entries []T) ([]byte, error) {
	if entries == nil {
		entries = []T{}
	}
	return json.Marshal(entries)
}
