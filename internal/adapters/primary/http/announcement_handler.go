package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/skycrm-backend/internal/adapters/primary/validation"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// AnnouncementHandler lets admins broadcast to every connected user.
type AnnouncementHandler struct {
	announcementService ports.AnnouncementService
	errorHandler        *ErrorHandler
	logger              *slog.Logger
}

// NewAnnouncementHandler creates a new announcement handler
func NewAnnouncementHandler(svc ports.AnnouncementService, errorHandler *ErrorHandler, logger *slog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcementService: svc,
		errorHandler:        errorHandler,
		logger:              logger.With("handler", "announcement"),
	}
}

// RegisterRoutes registers the announcement routes.
func (h *AnnouncementHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleAnnounce)
}

// AnnounceRequest defines the expected JSON body for an announcement
type AnnounceRequest struct {
	Title   string `json:"title" validate:"notblank,max=100"`
	Message string `json:"message" validate:"notblank,max=1000"`
}

// HandleAnnounce handles POST /announcements
func (h *AnnouncementHandler) HandleAnnounce(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[AnnounceRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.announcementService.Announce(r.Context(), identity, req.Title, req.Message); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteAccepted(w, "Announcement sent")
}
