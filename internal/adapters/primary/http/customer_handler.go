package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/skycrm-backend/internal/adapters/primary/validation"
	"github.com/lorrc/skycrm-backend/internal/core/domain"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// CustomerHandler handles HTTP requests for customers
type CustomerHandler struct {
	customerService ports.CustomerService
	errorHandler    *ErrorHandler
	logger          *slog.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService ports.CustomerService, errorHandler *ErrorHandler, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		errorHandler:    errorHandler,
		logger:          logger.With("handler", "customer"),
	}
}

// RegisterRoutes sets up the routing for all customer endpoints.
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListCustomers)
	r.Post("/", h.HandleCreateCustomer)
	r.Get("/{customerID}", h.HandleGetCustomer)
	r.Put("/{customerID}", h.HandleUpdateCustomer)
	r.Delete("/{customerID}", h.HandleDeleteCustomer)
	r.Post("/{customerID}/communication", h.HandleAddCommunication)
	r.Post("/{customerID}/deals", h.HandleAddDeal)
}

// CreateCustomerRequest defines the expected JSON body for creating a customer
type CreateCustomerRequest struct {
	CompanyName string `json:"companyName" validate:"notblank,max=100"`
	ContactName string `json:"contactName" validate:"max=255"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Phone       string `json:"phone" validate:"max=50"`
	Status      string `json:"status" validate:"omitempty,oneof=Lead Prospect Customer Inactive"`
	Value       string `json:"value" validate:"decimal"`
}

// UpdateCustomerRequest carries a partial update. Absent fields are unchanged.
type UpdateCustomerRequest struct {
	CompanyName *string `json:"companyName" validate:"omitempty,notblank,max=100"`
	ContactName *string `json:"contactName" validate:"omitempty,max=255"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	Status      *string `json:"status" validate:"omitempty,oneof=Lead Prospect Customer Inactive"`
	Value       *string `json:"value" validate:"omitempty,decimal"`
}

// AddCommunicationRequest defines the expected JSON body for logging a contact
type AddCommunicationRequest struct {
	Type        string  `json:"type" validate:"required,oneof=Email Call Meeting Note"`
	Subject     string  `json:"subject" validate:"max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Date        *string `json:"date"`
}

// AddDealRequest defines the expected JSON body for opening a deal
type AddDealRequest struct {
	Title             string  `json:"title" validate:"notblank,max=200"`
	Value             string  `json:"value" validate:"decimal"`
	Stage             string  `json:"stage" validate:"omitempty,oneof=Qualification Proposal Negotiation 'Closed Won' 'Closed Lost'"`
	Probability       *int    `json:"probability" validate:"omitempty,min=0,max=100"`
	ExpectedCloseDate *string `json:"expectedCloseDate"`
}

func toCustomerDTOs(customers []*domain.Customer) []domain.CustomerSnapshot {
	out := make([]domain.CustomerSnapshot, 0, len(customers))
	for _, c := range customers {
		out = append(out, domain.NewCustomerSnapshot(c))
	}
	return out
}

// HandleListCustomers handles GET /customers
func (h *CustomerHandler) HandleListCustomers(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	pagination := validation.ParsePagination(r, maxItemsPerPage)
	params := ports.ListCustomersParams{
		Actor:  identity,
		Limit:  pagination.Limit + 1,
		Offset: pagination.Offset,
	}
	if status := validation.ParseStringQueryParam(r, "status"); status != nil {
		s := domain.CustomerStatus(*status)
		params.Status = &s
	}

	customers, err := h.customerService.ListCustomers(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginatedSimple(w, toCustomerDTOs(customers), pagination.Limit, pagination.Offset)
}

// HandleCreateCustomer handles POST /customers
func (h *CustomerHandler) HandleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateCustomerRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	customer, err := h.customerService.CreateCustomer(r.Context(), ports.CreateCustomerParams{
		Actor:       identity,
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Status:      domain.CustomerStatus(req.Status),
		Value:       validation.ParseDecimal(req.Value),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "customer created", "customer_id", customer.ID)
	WriteCreated(w, domain.NewCustomerSnapshot(customer))
}

// HandleGetCustomer handles GET /customers/{customerID}
func (h *CustomerHandler) HandleGetCustomer(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	customerID, err := pathUUID(r, "customerID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	customer, err := h.customerService.GetCustomer(r.Context(), identity, customerID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, domain.NewCustomerSnapshot(customer))
}

// HandleUpdateCustomer handles PUT /customers/{customerID}
func (h *CustomerHandler) HandleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	customerID, err := pathUUID(r, "customerID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateCustomerRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	changes := domain.CustomerChanges{
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
	}
	if req.Status != nil {
		s := domain.CustomerStatus(*req.Status)
		changes.Status = &s
	}
	if req.Value != nil {
		v := validation.ParseDecimal(*req.Value)
		changes.Value = &v
	}

	customer, err := h.customerService.UpdateCustomer(r.Context(), ports.UpdateCustomerParams{
		Actor:      identity,
		CustomerID: customerID,
		Changes:    changes,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "customer updated", "customer_id", customer.ID)
	WriteJSON(w, http.StatusOK, domain.NewCustomerSnapshot(customer))
}

// HandleDeleteCustomer handles DELETE /customers/{customerID}
func (h *CustomerHandler) HandleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	customerID, err := pathUUID(r, "customerID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.customerService.DeleteCustomer(r.Context(), identity, customerID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "customer deleted", "customer_id", customerID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddCommunication handles POST /customers/{customerID}/communication
func (h *CustomerHandler) HandleAddCommunication(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	customerID, err := pathUUID(r, "customerID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[AddCommunicationRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.AddCommunicationParams{
		Actor:       identity,
		CustomerID:  customerID,
		Type:        domain.CommunicationType(req.Type),
		Subject:     req.Subject,
		Description: req.Description,
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if date != nil {
		params.Date = *date
	}

	customer, err := h.customerService.AddCommunication(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteCreated(w, domain.NewCustomerSnapshot(customer))
}

// HandleAddDeal handles POST /customers/{customerID}/deals
func (h *CustomerHandler) HandleAddDeal(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	customerID, err := pathUUID(r, "customerID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[AddDealRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	deal := domain.DealParams{
		Title:       req.Title,
		Value:       validation.ParseDecimal(req.Value),
		Stage:       domain.DealStage(req.Stage),
		Probability: req.Probability,
	}
	if deal.ExpectedCloseDate, err = parseOptionalDate("expectedCloseDate", req.ExpectedCloseDate); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	customer, err := h.customerService.AddDeal(r.Context(), ports.AddDealParams{
		Actor:      identity,
		CustomerID: customerID,
		Deal:       deal,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteCreated(w, domain.NewCustomerSnapshot(customer))
}
