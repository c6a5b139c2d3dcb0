package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/skycrm-backend/internal/adapters/primary/validation"
	"github.com/lorrc/skycrm-backend/internal/core/domain"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// InvoiceHandler handles HTTP requests for invoices
type InvoiceHandler struct {
	invoiceService ports.InvoiceService
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService ports.InvoiceService, errorHandler *ErrorHandler, logger *slog.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "invoice"),
	}
}

// RegisterRoutes sets up the routing for all invoice endpoints.
func (h *InvoiceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListInvoices)
	r.Post("/", h.HandleCreateInvoice)
	r.Route("/{invoiceID}", func(r chi.Router) {
		r.Get("/", h.HandleGetInvoice)
		r.Post("/pay", h.HandleMarkPaid)
	})
}

// InvoiceItemRequest is one billed line. Numbers are decimal strings.
type InvoiceItemRequest struct {
	Description string `json:"description" validate:"notblank,max=255"`
	Quantity    string `json:"quantity" validate:"required,decimal"`
	Rate        string `json:"rate" validate:"required,decimal"`
}

// CreateInvoiceRequest defines the expected JSON body for creating an invoice
type CreateInvoiceRequest struct {
	CustomerID string               `json:"customerId" validate:"required,uuid"`
	Items      []InvoiceItemRequest `json:"items" validate:"min=1,dive"`
	TaxRate    string               `json:"taxRate" validate:"decimal"`
	Discount   string               `json:"discount" validate:"decimal"`
	Currency   string               `json:"currency" validate:"omitempty,len=3"`
	IssueDate  *string              `json:"issueDate"`
	DueDate    string               `json:"dueDate" validate:"required"`
}

// MarkPaidRequest defines the expected JSON body for settling an invoice
type MarkPaidRequest struct {
	PaymentMethod string  `json:"paymentMethod" validate:"omitempty,oneof=Cash Check 'Credit Card' 'Bank Transfer' PayPal Other"`
	Reference     string  `json:"reference" validate:"max=255"`
	PaymentDate   *string `json:"paymentDate"`
}

func toInvoiceDTOs(invoices []*domain.Invoice) []domain.InvoiceSnapshot {
	out := make([]domain.InvoiceSnapshot, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, domain.NewInvoiceSnapshot(inv))
	}
	return out
}

// HandleListInvoices handles GET /invoices
func (h *InvoiceHandler) HandleListInvoices(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	pagination := validation.ParsePagination(r, maxItemsPerPage)

	customerID, err := validation.ParseUUIDQueryParam(r, "customerId")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.ListInvoicesParams{
		Actor:      identity,
		CustomerID: customerID,
		Limit:      pagination.Limit + 1,
		Offset:     pagination.Offset,
	}
	if status := validation.ParseStringQueryParam(r, "status"); status != nil {
		s := domain.InvoiceStatus(*status)
		params.Status = &s
	}

	invoices, err := h.invoiceService.ListInvoices(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginatedSimple(w, toInvoiceDTOs(invoices), pagination.Limit, pagination.Offset)
}

// HandleCreateInvoice handles POST /invoices
func (h *InvoiceHandler) HandleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateInvoiceRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	customerID, err := validation.ParseUUIDParam("customerId", req.CustomerID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	dueDate, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	issueDate, err := parseOptionalDate("issueDate", req.IssueDate)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	items := make([]domain.InvoiceItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.InvoiceItem{
			Description: item.Description,
			Quantity:    validation.ParseDecimal(item.Quantity),
			Rate:        validation.ParseDecimal(item.Rate),
		})
	}

	params := ports.CreateInvoiceParams{
		Actor:      identity,
		CustomerID: customerID,
		Items:      items,
		TaxRate:    validation.ParseDecimal(req.TaxRate),
		Discount:   validation.ParseDecimal(req.Discount),
		Currency:   req.Currency,
		DueDate:    dueDate,
	}
	if issueDate != nil {
		params.IssueDate = *issueDate
	}

	invoice, err := h.invoiceService.CreateInvoice(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteCreated(w, domain.NewInvoiceSnapshot(invoice))
}

// HandleGetInvoice handles GET /invoices/{invoiceID}
func (h *InvoiceHandler) HandleGetInvoice(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	invoiceID, err := pathUUID(r, "invoiceID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	invoice, err := h.invoiceService.GetInvoice(r.Context(), identity, invoiceID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, domain.NewInvoiceSnapshot(invoice))
}

// HandleMarkPaid handles POST /invoices/{invoiceID}/pay
func (h *InvoiceHandler) HandleMarkPaid(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	invoiceID, err := pathUUID(r, "invoiceID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[MarkPaidRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	paidAt, err := parseOptionalDate("paymentDate", req.PaymentDate)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.MarkPaidParams{
		Actor:     identity,
		InvoiceID: invoiceID,
		Method:    domain.PaymentMethod(req.PaymentMethod),
		Reference: req.Reference,
	}
	if paidAt != nil {
		params.PaidAt = *paidAt
	}

	invoice, err := h.invoiceService.MarkPaid(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "invoice paid",
		"invoice_id", invoice.ID,
		"invoice_number", invoice.InvoiceNumber,
	)
	WriteJSON(w, http.StatusOK, domain.NewInvoiceSnapshot(invoice))
}
