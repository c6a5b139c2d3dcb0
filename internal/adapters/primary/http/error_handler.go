package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/lorrc/skycrm-backend/internal/adapters/primary/http/middleware"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

// ErrorResponse is the standard JSON error response format
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ValidationErrorResponse includes field-level validation errors
type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	requestID := mw.GetRequestID(r.Context())

	// Check for AppError first (our custom error type)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.logError(r, appErr.StatusCode, appErr.Err, requestID)
		h.writeErrorResponse(w, appErr.StatusCode, ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		})
		return
	}

	// Check for ValidationErrors
	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.logError(r, http.StatusBadRequest, err, requestID)
		h.writeValidationErrorResponse(w, validationErrs)
		return
	}

	// Map known domain errors to HTTP responses
	statusCode, response := h.mapDomainError(err)
	h.logError(r, statusCode, err, requestID)
	h.writeErrorResponse(w, statusCode, response)
}

// domainErrorMapping pairs sentinel errors with their HTTP representation.
// The first match wins.
type domainErrorMapping struct {
	errs    []error
	status  int
	message string // empty means err.Error()
	code    string
}

var domainErrorMappings = []domainErrorMapping{
	{[]error{apperrors.ErrInvalidCredentials}, http.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS"},
	{[]error{apperrors.ErrMissingCredential, apperrors.ErrAuthentication, apperrors.ErrUnauthorized}, http.StatusUnauthorized, "Authentication error", "UNAUTHORIZED"},
	{[]error{apperrors.ErrForbidden}, http.StatusForbidden, "You do not have permission to perform this action", "FORBIDDEN"},

	{[]error{apperrors.ErrUserNotFound}, http.StatusNotFound, "User not found", "USER_NOT_FOUND"},
	{[]error{apperrors.ErrTenantNotFound}, http.StatusNotFound, "Tenant not found", "TENANT_NOT_FOUND"},
	{[]error{apperrors.ErrTaskNotFound}, http.StatusNotFound, "Task not found", "TASK_NOT_FOUND"},
	{[]error{apperrors.ErrCustomerNotFound}, http.StatusNotFound, "Customer not found", "CUSTOMER_NOT_FOUND"},
	{[]error{apperrors.ErrInvoiceNotFound}, http.StatusNotFound, "Invoice not found", "INVOICE_NOT_FOUND"},
	{[]error{apperrors.ErrTicketNotFound}, http.StatusNotFound, "Ticket not found", "TICKET_NOT_FOUND"},
	{[]error{apperrors.ErrNotFound}, http.StatusNotFound, "Resource not found", "NOT_FOUND"},

	{[]error{apperrors.ErrUserExists}, http.StatusConflict, "A user with this email already exists", "USER_EXISTS"},
	{[]error{apperrors.ErrCustomerExists}, http.StatusConflict, "A customer with this email already exists", "CUSTOMER_EXISTS"},
	{[]error{apperrors.ErrInvoiceNotPayable}, http.StatusConflict, "Invoice cannot be marked as paid in its current status", "INVOICE_NOT_PAYABLE"},
	{[]error{apperrors.ErrCustomerHasInvoices}, http.StatusConflict, "Customer has invoices and cannot be deleted", "CUSTOMER_HAS_INVOICES"},
	{[]error{apperrors.ErrTicketClosed}, http.StatusConflict, "Ticket is closed", "TICKET_CLOSED"},
	{[]error{apperrors.ErrInvalidStatusTransition}, http.StatusConflict, "", "INVALID_STATUS_TRANSITION"},
	{[]error{apperrors.ErrConflict}, http.StatusConflict, "Resource conflict", "CONFLICT"},

	{[]error{apperrors.ErrRoomInvalid}, http.StatusBadRequest, "", "ROOM_INVALID"},
	{[]error{apperrors.ErrRoomReserved}, http.StatusBadRequest, "", "ROOM_RESERVED"},

	{[]error{
		apperrors.ErrSubdomainRequired,
		apperrors.ErrEmailRequired,
		apperrors.ErrEmailInvalid,
		apperrors.ErrPasswordTooWeak,
		apperrors.ErrPasswordRequired,
		apperrors.ErrNameRequired,
		apperrors.ErrNameTooLong,
		apperrors.ErrInvalidRole,
		apperrors.ErrTitleRequired,
		apperrors.ErrTitleTooLong,
		apperrors.ErrDescriptionTooLong,
		apperrors.ErrInvalidTaskStatus,
		apperrors.ErrInvalidTaskPriority,
		apperrors.ErrAssignerRequired,
		apperrors.ErrCompanyNameRequired,
		apperrors.ErrCompanyNameTooLong,
		apperrors.ErrInvalidCustomerStatus,
		apperrors.ErrNegativeCustomerValue,
		apperrors.ErrInvalidCommunicationType,
		apperrors.ErrDealTitleRequired,
		apperrors.ErrNegativeDealValue,
		apperrors.ErrInvalidDealStage,
		apperrors.ErrInvalidDealProbability,
		apperrors.ErrSubjectRequired,
		apperrors.ErrSubjectTooLong,
		apperrors.ErrTicketDescriptionRequired,
		apperrors.ErrTicketDescriptionTooLong,
		apperrors.ErrInvalidTicketStatus,
		apperrors.ErrInvalidTicketPriority,
		apperrors.ErrInvalidTicketType,
		apperrors.ErrCommentBodyRequired,
		apperrors.ErrCommentTooLong,
		apperrors.ErrInvoiceItemsRequired,
		apperrors.ErrInvalidInvoiceItem,
		apperrors.ErrInvalidTaxRate,
		apperrors.ErrNegativeDiscount,
		apperrors.ErrNegativeInvoiceTotal,
		apperrors.ErrDueDateRequired,
		apperrors.ErrInvalidCurrency,
		apperrors.ErrInvalidPaymentMethod,
		apperrors.ErrBadRequest,
	}, http.StatusBadRequest, "", "VALIDATION_ERROR"},

	{[]error{apperrors.ErrRateLimited}, http.StatusTooManyRequests, "Too many requests. Please try again later.", "RATE_LIMITED"},
}

// mapDomainError converts domain errors to HTTP status codes and responses
func (h *ErrorHandler) mapDomainError(err error) (int, ErrorResponse) {
	for _, m := range domainErrorMappings {
		for _, target := range m.errs {
			if !errors.Is(err, target) {
				continue
			}
			msg := m.message
			if msg == "" {
				msg = target.Error()
			}
			return m.status, ErrorResponse{Error: msg, Code: m.code}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error: "An unexpected error occurred",
		Code:  "INTERNAL_ERROR",
	}
}

// logError logs the error with appropriate context
func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error, requestID string) {
	logAttrs := []any{
		"request_id", requestID,
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err.Error(),
	}

	// Log at different levels based on status code
	switch {
	case statusCode >= 500:
		h.logger.Error("server error", logAttrs...)
	case statusCode >= 400:
		h.logger.Warn("client error", logAttrs...)
	default:
		h.logger.Info("request error", logAttrs...)
	}
}

// writeErrorResponse writes a JSON error response
func (h *ErrorHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, response ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// writeValidationErrorResponse writes a validation error response
func (h *ErrorHandler) writeValidationErrorResponse(w http.ResponseWriter, errs *apperrors.ValidationErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(ValidationErrorResponse{
		Error:  "Validation failed",
		Code:   "VALIDATION_ERROR",
		Fields: errs.Errors,
	})
}

// HandleError Helper function to handle errors inline in handlers
// Usage: if HandleError(w, r, err, h.errorHandler) { return }
func HandleError(w http.ResponseWriter, r *http.Request, err error, handler *ErrorHandler) bool {
	if err != nil {
		handler.Handle(w, r, err)
		return true
	}
	return false
}
