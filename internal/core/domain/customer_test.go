package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

func TestNewCustomer(t *testing.T) {
	creator := uuid.New()
	base := domain.CustomerParams{
		TenantID:    uuid.New(),
		CompanyName: "Acme Corp",
		Email:       "Sales@Acme.io",
		CreatedBy:   creator,
	}

	t.Run("defaults", func(t *testing.T) {
		customer, err := domain.NewCustomer(base)
		require.NoError(t, err)
		assert.Equal(t, domain.CustomerStatusLead, customer.Status)
		assert.Equal(t, "sales@acme.io", customer.Email)
		assert.True(t, customer.Value.IsZero())
	})

	tests := []struct {
		name        string
		mutate      func(p *domain.CustomerParams)
		expectedErr error
	}{
		{"missing company", func(p *domain.CustomerParams) { p.CompanyName = " " }, apperrors.ErrCompanyNameRequired},
		{"company too long", func(p *domain.CustomerParams) { p.CompanyName = strings.Repeat("c", 101) }, apperrors.ErrCompanyNameTooLong},
		{"missing email", func(p *domain.CustomerParams) { p.Email = "" }, apperrors.ErrEmailRequired},
		{"bad email", func(p *domain.CustomerParams) { p.Email = "nope" }, apperrors.ErrEmailInvalid},
		{"bad status", func(p *domain.CustomerParams) { p.Status = "Churned" }, apperrors.ErrInvalidCustomerStatus},
		{"negative value", func(p *domain.CustomerParams) { p.Value = decimal.NewFromInt(-1) }, apperrors.ErrNegativeCustomerValue},
		{"missing creator", func(p *domain.CustomerParams) { p.CreatedBy = uuid.Nil }, apperrors.ErrCustomerCreatorMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := base
			tt.mutate(&params)
			customer, err := domain.NewCustomer(params)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Nil(t, customer)
		})
	}
}

func TestCustomer_Apply(t *testing.T) {
	newCustomer := func(t *testing.T) *domain.Customer {
		c, err := domain.NewCustomer(domain.CustomerParams{
			TenantID:    uuid.New(),
			CompanyName: "Acme Corp",
			Email:       "sales@acme.io",
			CreatedBy:   uuid.New(),
		})
		require.NoError(t, err)
		return c
	}
	ptr := func(s string) *string { return &s }

	t.Run("partial update", func(t *testing.T) {
		c := newCustomer(t)
		status := domain.CustomerStatusCustomer
		value := decimal.NewFromInt(900)

		err := c.Apply(domain.CustomerChanges{Email: ptr(" Buy@Acme.io "), Status: &status, Value: &value})

		require.NoError(t, err)
		assert.Equal(t, "buy@acme.io", c.Email)
		assert.Equal(t, domain.CustomerStatusCustomer, c.Status)
		assert.True(t, value.Equal(c.Value))
		assert.Equal(t, "Acme Corp", c.CompanyName)
	})

	t.Run("invalid change leaves the customer untouched", func(t *testing.T) {
		c := newCustomer(t)
		before := *c
		negative := decimal.NewFromInt(-5)

		err := c.Apply(domain.CustomerChanges{CompanyName: ptr("Renamed"), Value: &negative})

		assert.ErrorIs(t, err, apperrors.ErrNegativeCustomerValue)
		assert.Equal(t, before.CompanyName, c.CompanyName)
		assert.Equal(t, before.UpdatedAt, c.UpdatedAt)
	})

	t.Run("blank company", func(t *testing.T) {
		c := newCustomer(t)
		assert.ErrorIs(t, c.Apply(domain.CustomerChanges{CompanyName: ptr("  ")}), apperrors.ErrCompanyNameRequired)
	})

	t.Run("bad email", func(t *testing.T) {
		c := newCustomer(t)
		assert.ErrorIs(t, c.Apply(domain.CustomerChanges{Email: ptr("nope")}), apperrors.ErrEmailInvalid)
	})
}

func TestNewCustomerCommunication(t *testing.T) {
	author := uuid.New()

	entry, err := domain.NewCustomerCommunication(domain.CommunicationMeeting, " Kickoff ", "", time.Time{}, author)
	require.NoError(t, err)
	assert.Equal(t, "Kickoff", entry.Subject)
	assert.False(t, entry.Date.IsZero(), "missing date means now")
	assert.Equal(t, author, entry.CreatedBy)

	_, err = domain.NewCustomerCommunication("Fax", "", "", time.Time{}, author)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCommunicationType)
}

func TestNewCustomerDeal(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		deal, err := domain.NewCustomerDeal(domain.DealParams{Title: "Renewal", Value: decimal.NewFromInt(100)})
		require.NoError(t, err)
		assert.Equal(t, domain.DealQualification, deal.Stage)
		assert.Equal(t, domain.DefaultDealProbability, deal.Probability)
		assert.NotEqual(t, uuid.Nil, deal.ID)
	})

	t.Run("zero probability is kept", func(t *testing.T) {
		zero := 0
		deal, err := domain.NewCustomerDeal(domain.DealParams{Title: "Long shot", Probability: &zero})
		require.NoError(t, err)
		assert.Equal(t, 0, deal.Probability)
	})

	over, under := 101, -1
	tests := []struct {
		name        string
		params      domain.DealParams
		expectedErr error
	}{
		{"missing title", domain.DealParams{Title: " "}, apperrors.ErrDealTitleRequired},
		{"negative value", domain.DealParams{Title: "x", Value: decimal.NewFromInt(-1)}, apperrors.ErrNegativeDealValue},
		{"bad stage", domain.DealParams{Title: "x", Stage: "Won"}, apperrors.ErrInvalidDealStage},
		{"probability over 100", domain.DealParams{Title: "x", Probability: &over}, apperrors.ErrInvalidDealProbability},
		{"probability under 0", domain.DealParams{Title: "x", Probability: &under}, apperrors.ErrInvalidDealProbability},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewCustomerDeal(tt.params)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}
