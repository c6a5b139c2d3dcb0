package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

const MaxCompanyNameLength = 100

// CustomerStatus is the position of a customer in the sales funnel.
type CustomerStatus string

const (
	CustomerStatusLead     CustomerStatus = "Lead"
	CustomerStatusProspect CustomerStatus = "Prospect"
	CustomerStatusCustomer CustomerStatus = "Customer"
	CustomerStatusInactive CustomerStatus = "Inactive"
)

// IsValid reports whether s is a known status.
func (s CustomerStatus) IsValid() bool {
	switch s {
	case CustomerStatusLead, CustomerStatusProspect, CustomerStatusCustomer, CustomerStatusInactive:
		return true
	}
	return false
}

// Customer is a company a tenant sells to.
type Customer struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	Status      CustomerStatus
	Value       decimal.Decimal
	CreatedBy   uuid.UUID

	// Communications and Deals are append-only logs kept on the customer.
	Communications  []CustomerCommunication
	Deals           []CustomerDeal
	LastContactDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomerParams holds the input for creating a customer.
type CustomerParams struct {
	TenantID    uuid.UUID
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	Status      CustomerStatus
	Value       decimal.Decimal
	CreatedBy   uuid.UUID
}

// NewCustomer is a factory function to create a valid new customer.
func NewCustomer(params CustomerParams) (*Customer, error) {
	company := strings.TrimSpace(params.CompanyName)
	if company == "" {
		return nil, apperrors.ErrCompanyNameRequired
	}
	if len(company) > MaxCompanyNameLength {
		return nil, apperrors.ErrCompanyNameTooLong
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, apperrors.ErrEmailRequired
	}
	if !isValidEmail(email) {
		return nil, apperrors.ErrEmailInvalid
	}

	status := params.Status
	if status == "" {
		status = CustomerStatusLead
	}
	if !status.IsValid() {
		return nil, apperrors.ErrInvalidCustomerStatus
	}
	if params.Value.IsNegative() {
		return nil, apperrors.ErrNegativeCustomerValue
	}
	if params.CreatedBy == uuid.Nil {
		return nil, apperrors.ErrCustomerCreatorMissing
	}

	now := time.Now().UTC()
	return &Customer{
		ID:             uuid.New(),
		TenantID:       params.TenantID,
		CompanyName:    company,
		ContactName:    strings.TrimSpace(params.ContactName),
		Email:          email,
		Phone:          strings.TrimSpace(params.Phone),
		Status:         status,
		Value:          params.Value,
		CreatedBy:      params.CreatedBy,
		Communications: []CustomerCommunication{},
		Deals:          []CustomerDeal{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CustomerChanges is a partial update. Nil fields are left alone.
type CustomerChanges struct {
	CompanyName *string
	ContactName *string
	Email       *string
	Phone       *string
	Status      *CustomerStatus
	Value       *decimal.Decimal
}

// Apply validates and applies changes. On error the customer is untouched.
func (c *Customer) Apply(changes CustomerChanges) error {
	next := *c

	if changes.CompanyName != nil {
		company := strings.TrimSpace(*changes.CompanyName)
		if company == "" {
			return apperrors.ErrCompanyNameRequired
		}
		if len(company) > MaxCompanyNameLength {
			return apperrors.ErrCompanyNameTooLong
		}
		next.CompanyName = company
	}
	if changes.ContactName != nil {
		next.ContactName = strings.TrimSpace(*changes.ContactName)
	}
	if changes.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*changes.Email))
		if email == "" {
			return apperrors.ErrEmailRequired
		}
		if !isValidEmail(email) {
			return apperrors.ErrEmailInvalid
		}
		next.Email = email
	}
	if changes.Phone != nil {
		next.Phone = strings.TrimSpace(*changes.Phone)
	}
	if changes.Status != nil {
		if !changes.Status.IsValid() {
			return apperrors.ErrInvalidCustomerStatus
		}
		next.Status = *changes.Status
	}
	if changes.Value != nil {
		if changes.Value.IsNegative() {
			return apperrors.ErrNegativeCustomerValue
		}
		next.Value = *changes.Value
	}

	next.UpdatedAt = time.Now().UTC()
	*c = next
	return nil
}

// CommunicationType classifies an entry of the communication log.
type CommunicationType string

const (
	CommunicationEmail   CommunicationType = "Email"
	CommunicationCall    CommunicationType = "Call"
	CommunicationMeeting CommunicationType = "Meeting"
	CommunicationNote    CommunicationType = "Note"
)

// IsValid reports whether t is a known communication type.
func (t CommunicationType) IsValid() bool {
	switch t {
	case CommunicationEmail, CommunicationCall, CommunicationMeeting, CommunicationNote:
		return true
	}
	return false
}

// CustomerCommunication is one contact with a customer.
type CustomerCommunication struct {
	Type        CommunicationType `json:"type"`
	Subject     string            `json:"subject"`
	Description string            `json:"description"`
	Date        time.Time         `json:"date"`
	CreatedBy   uuid.UUID         `json:"createdBy"`
}

// NewCustomerCommunication validates a log entry. A zero date means now.
func NewCustomerCommunication(kind CommunicationType, subject, description string, date time.Time, createdBy uuid.UUID) (CustomerCommunication, error) {
	if !kind.IsValid() {
		return CustomerCommunication{}, apperrors.ErrInvalidCommunicationType
	}
	if date.IsZero() {
		date = time.Now()
	}
	return CustomerCommunication{
		Type:        kind,
		Subject:     strings.TrimSpace(subject),
		Description: description,
		Date:        date.UTC(),
		CreatedBy:   createdBy,
	}, nil
}

// DealStage is the position of a deal in the pipeline.
type DealStage string

const (
	DealQualification DealStage = "Qualification"
	DealProposal      DealStage = "Proposal"
	DealNegotiation   DealStage = "Negotiation"
	DealClosedWon     DealStage = "Closed Won"
	DealClosedLost    DealStage = "Closed Lost"
)

// IsValid reports whether s is a known stage.
func (s DealStage) IsValid() bool {
	switch s {
	case DealQualification, DealProposal, DealNegotiation, DealClosedWon, DealClosedLost:
		return true
	}
	return false
}

const DefaultDealProbability = 10

// CustomerDeal is a sales opportunity with a customer.
type CustomerDeal struct {
	ID                uuid.UUID       `json:"id"`
	Title             string          `json:"title"`
	Value             decimal.Decimal `json:"value"`
	Stage             DealStage       `json:"stage"`
	Probability       int             `json:"probability"`
	ExpectedCloseDate *time.Time      `json:"expectedCloseDate"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// DealParams holds the input for a new deal. A nil Probability means the
// default of 10 percent.
type DealParams struct {
	Title             string
	Value             decimal.Decimal
	Stage             DealStage
	Probability       *int
	ExpectedCloseDate *time.Time
}

// NewCustomerDeal validates a new deal.
func NewCustomerDeal(params DealParams) (CustomerDeal, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return CustomerDeal{}, apperrors.ErrDealTitleRequired
	}
	if params.Value.IsNegative() {
		return CustomerDeal{}, apperrors.ErrNegativeDealValue
	}

	stage := params.Stage
	if stage == "" {
		stage = DealQualification
	}
	if !stage.IsValid() {
		return CustomerDeal{}, apperrors.ErrInvalidDealStage
	}

	probability := DefaultDealProbability
	if params.Probability != nil {
		probability = *params.Probability
	}
	if probability < 0 || probability > 100 {
		return CustomerDeal{}, apperrors.ErrInvalidDealProbability
	}

	return CustomerDeal{
		ID:                uuid.New(),
		Title:             title,
		Value:             params.Value,
		Stage:             stage,
		Probability:       probability,
		ExpectedCloseDate: params.ExpectedCloseDate,
		CreatedAt:         time.Now().UTC(),
	}, nil
}
