package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

// InvoiceStatus represents the billing state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "Draft"
	InvoiceStatusSent      InvoiceStatus = "Sent"
	InvoiceStatusViewed    InvoiceStatus = "Viewed"
	InvoiceStatusPaid      InvoiceStatus = "Paid"
	InvoiceStatusOverdue   InvoiceStatus = "Overdue"
	InvoiceStatusCancelled InvoiceStatus = "Cancelled"
)

// PaymentMethod records how an invoice was settled.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Cash"
	PaymentCheck        PaymentMethod = "Check"
	PaymentCreditCard   PaymentMethod = "Credit Card"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
	PaymentPayPal       PaymentMethod = "PayPal"
	PaymentOther        PaymentMethod = "Other"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCheck, PaymentCreditCard, PaymentBankTransfer, PaymentPayPal, PaymentOther:
		return true
	}
	return false
}

var supportedCurrencies = map[string]struct{}{
	"USD": {}, "EUR": {}, "GBP": {}, "CAD": {}, "AUD": {},
}

var hundred = decimal.NewFromInt(100)

// InvoiceItem is a single billed line.
type InvoiceItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// Invoice bills a customer of a tenant.
type Invoice struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	InvoiceNumber string
	CustomerID    uuid.UUID
	Status        InvoiceStatus
	Items         []InvoiceItem
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal
	TaxAmount     decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	Currency      string
	IssueDate     time.Time
	DueDate       time.Time
	PaymentDate   *time.Time
	PaymentMethod *PaymentMethod
	PaymentRef    string
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// InvoiceParams holds the input for creating an invoice.
type InvoiceParams struct {
	TenantID      uuid.UUID
	InvoiceNumber string
	CustomerID    uuid.UUID
	Items         []InvoiceItem
	TaxRate       decimal.Decimal
	Discount      decimal.Decimal
	Currency      string
	IssueDate     time.Time
	DueDate       time.Time
	CreatedBy     uuid.UUID
}

// FormatInvoiceNumber builds the tenant-scoped number INV-<year>-<seq>.
func FormatInvoiceNumber(year int, sequence int64) string {
	return fmt.Sprintf("INV-%d-%05d", year, sequence)
}

// NewInvoice is a factory function to create a valid draft invoice with
// computed totals.
func NewInvoice(params InvoiceParams) (*Invoice, error) {
	if len(params.Items) == 0 {
		return nil, apperrors.ErrInvoiceItemsRequired
	}
	for _, item := range params.Items {
		if strings.TrimSpace(item.Description) == "" || !item.Quantity.IsPositive() || item.Rate.IsNegative() {
			return nil, apperrors.ErrInvalidInvoiceItem
		}
	}
	if params.TaxRate.IsNegative() || params.TaxRate.GreaterThan(hundred) {
		return nil, apperrors.ErrInvalidTaxRate
	}
	if params.Discount.IsNegative() {
		return nil, apperrors.ErrNegativeDiscount
	}
	if params.DueDate.IsZero() {
		return nil, apperrors.ErrDueDateRequired
	}

	currency := strings.ToUpper(params.Currency)
	if currency == "" {
		currency = "USD"
	}
	if _, ok := supportedCurrencies[currency]; !ok {
		return nil, apperrors.ErrInvalidCurrency
	}

	issueDate := params.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now().UTC()
	}

	now := time.Now().UTC()
	invoice := &Invoice{
		ID:            uuid.New(),
		TenantID:      params.TenantID,
		InvoiceNumber: params.InvoiceNumber,
		CustomerID:    params.CustomerID,
		Status:        InvoiceStatusDraft,
		Items:         append([]InvoiceItem(nil), params.Items...),
		TaxRate:       params.TaxRate,
		Discount:      params.Discount,
		Currency:      currency,
		IssueDate:     issueDate,
		DueDate:       params.DueDate,
		CreatedBy:     params.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	invoice.CalculateTotals()

	if invoice.Total.IsNegative() {
		return nil, apperrors.ErrNegativeInvoiceTotal
	}
	return invoice, nil
}

// CalculateTotals recomputes line amounts, subtotal, tax and total.
func (i *Invoice) CalculateTotals() {
	subtotal := decimal.Zero
	for idx := range i.Items {
		i.Items[idx].Amount = i.Items[idx].Quantity.Mul(i.Items[idx].Rate)
		subtotal = subtotal.Add(i.Items[idx].Amount)
	}
	i.Subtotal = subtotal
	i.TaxAmount = subtotal.Mul(i.TaxRate).Div(hundred).Round(2)
	i.Total = i.Subtotal.Add(i.TaxAmount).Sub(i.Discount)
}

// IsPayable reports whether the invoice can still be settled.
func (i *Invoice) IsPayable() bool {
	switch i.Status {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusViewed, InvoiceStatusOverdue:
		return true
	}
	return false
}

// MarkPaid settles the invoice.
func (i *Invoice) MarkPaid(method PaymentMethod, reference string, at time.Time) error {
	if !i.IsPayable() {
		return apperrors.ErrInvoiceNotPayable
	}
	if !method.IsValid() {
		return apperrors.ErrInvalidPaymentMethod
	}
	paidAt := at.UTC()
	i.Status = InvoiceStatusPaid
	i.PaymentDate = &paidAt
	i.PaymentMethod = &method
	i.PaymentRef = reference
	i.UpdatedAt = time.Now().UTC()
	return nil
}

// RefreshOverdue flips open invoices past their due date to Overdue and
// reports whether the status changed.
func (i *Invoice) RefreshOverdue(now time.Time) bool {
	if i.Status != InvoiceStatusSent && i.Status != InvoiceStatusViewed {
		return false
	}
	if !now.After(i.DueDate) {
		return false
	}
	i.Status = InvoiceStatusOverdue
	i.UpdatedAt = now.UTC()
	return true
}
