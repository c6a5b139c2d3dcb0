package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/skycrm-backend/internal/adapters/primary/validation"
	"github.com/lorrc/skycrm-backend/internal/core/domain"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// TicketHandler handles HTTP requests for support tickets
type TicketHandler struct {
	ticketService  ports.TicketService
	commentHandler *CommentHandler
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(
	ticketService ports.TicketService,
	commentHandler *CommentHandler,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *TicketHandler {
	return &TicketHandler{
		ticketService:  ticketService,
		commentHandler: commentHandler,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "ticket"),
	}
}

// RegisterRoutes sets up the routing for all ticket endpoints.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTickets)
	r.Post("/", h.HandleCreateTicket)

	r.Route("/{ticketID}", func(r chi.Router) {
		r.Get("/", h.HandleGetTicket)
		r.Patch("/status", h.HandleUpdateTicketStatus)
		r.Patch("/assignee", h.HandleAssignTicket)

		if h.commentHandler != nil {
			r.Route("/comments", h.commentHandler.RegisterRoutes)
		}
	})
}

// CreateTicketRequest defines the expected JSON body for creating a ticket
type CreateTicketRequest struct {
	Subject     string `json:"subject" validate:"notblank,max=200"`
	Description string `json:"description" validate:"notblank,max=5000"`
	Priority    string `json:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
	Type        string `json:"type" validate:"omitempty,oneof=Bug Request Question Other"`
}

// UpdateTicketStatusRequest defines the JSON body for a status change
type UpdateTicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Open 'In Progress' Resolved Closed"`
}

// AssignTicketRequest defines the JSON body for assigning a ticket
type AssignTicketRequest struct {
	AssigneeID string `json:"assigneeId" validate:"required"`
}

func toTicketDTOs(tickets []*domain.Ticket) []domain.TicketSnapshot {
	out := make([]domain.TicketSnapshot, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, domain.NewTicketSnapshot(t))
	}
	return out
}

// HandleListTickets handles GET /tickets
func (h *TicketHandler) HandleListTickets(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	pagination := validation.ParsePagination(r, maxItemsPerPage)

	assignedTo, err := validation.ParseUUIDQueryParam(r, "assignedTo")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.ListTicketsParams{
		Actor:      identity,
		AssignedTo: assignedTo,
		Limit:      pagination.Limit + 1,
		Offset:     pagination.Offset,
	}
	if status := validation.ParseStringQueryParam(r, "status"); status != nil {
		s := domain.TicketStatus(*status)
		params.Status = &s
	}

	tickets, err := h.ticketService.ListTickets(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginatedSimple(w, toTicketDTOs(tickets), pagination.Limit, pagination.Offset)
}

// HandleCreateTicket handles POST /tickets
func (h *TicketHandler) HandleCreateTicket(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateTicketRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.CreateTicket(r.Context(), ports.CreateTicketParams{
		Actor:       identity,
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    domain.TicketPriority(req.Priority),
		Type:        domain.TicketType(req.Type),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ticket created", "ticket_id", ticket.ID)
	WriteCreated(w, domain.NewTicketSnapshot(ticket))
}

// HandleGetTicket handles GET /tickets/{ticketID}
func (h *TicketHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	ticketID, err := pathUUID(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.GetTicket(r.Context(), identity, ticketID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, domain.NewTicketSnapshot(ticket))
}

// HandleUpdateTicketStatus handles PATCH /tickets/{ticketID}/status
func (h *TicketHandler) HandleUpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	ticketID, err := pathUUID(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateTicketStatusRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.UpdateStatus(r.Context(), identity, ticketID, domain.TicketStatus(req.Status))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, domain.NewTicketSnapshot(ticket))
}

// HandleAssignTicket handles PATCH /tickets/{ticketID}/assignee
func (h *TicketHandler) HandleAssignTicket(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	ticketID, err := pathUUID(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[AssignTicketRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	assigneeID, err := validation.ParseUUIDParam("assigneeId", req.AssigneeID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.AssignTicket(r.Context(), identity, ticketID, assigneeID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, domain.NewTicketSnapshot(ticket))
}

// CommentHandler handles HTTP requests for ticket comments
type CommentHandler struct {
	commentService ports.CommentService
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService ports.CommentService, errorHandler *ErrorHandler, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "comment"),
	}
}

// RegisterRoutes sets up the comment routes under /tickets/{ticketID}/comments.
func (h *CommentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreateComment)
	r.Get("/", h.HandleListComments)
}

// CreateCommentRequest defines the expected JSON body for a comment
type CreateCommentRequest struct {
	Body string `json:"body" validate:"notblank,max=2000"`
}

// HandleCreateComment handles POST /tickets/{ticketID}/comments
func (h *CommentHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	ticketID, err := pathUUID(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[CreateCommentRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	comment, err := h.commentService.CreateComment(r.Context(), identity, ticketID, req.Body)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteCreated(w, domain.NewCommentSnapshot(comment))
}

// HandleListComments handles GET /tickets/{ticketID}/comments
func (h *CommentHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	ticketID, err := pathUUID(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	comments, err := h.commentService.ListComments(r.Context(), identity, ticketID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	out := make([]domain.CommentSnapshot, 0, len(comments))
	for _, c := range comments {
		out = append(out, domain.NewCommentSnapshot(c))
	}
	WriteJSON(w, http.StatusOK, out)
}
