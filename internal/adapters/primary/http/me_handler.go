package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// PresenceChecker reports whether a user has a live realtime connection.
type PresenceChecker interface {
	IsUserConnected(userID uuid.UUID) bool
}

// MeResponse is the profile of the authenticated user.
type MeResponse struct {
	UserDTO
	Online bool `json:"online"`
}

// MeHandler handles HTTP requests for the authenticated user.
type MeHandler struct {
	authService  ports.AuthService
	presence     PresenceChecker
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewMeHandler creates a new MeHandler. presence may be nil when realtime is
// disabled.
func NewMeHandler(
	authService ports.AuthService,
	presence PresenceChecker,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *MeHandler {
	return &MeHandler{
		authService:  authService,
		presence:     presence,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "me"),
	}
}

// RegisterRoutes registers the /me routes.
func (h *MeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleMe)
}

// HandleMe handles GET /me.
func (h *MeHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	user, err := h.authService.Me(r.Context(), identity)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	online := h.presence != nil && h.presence.IsUserConnected(user.ID)
	WriteJSON(w, http.StatusOK, MeResponse{UserDTO: toUserDTO(user), Online: online})
}
