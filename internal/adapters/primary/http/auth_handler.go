package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/skycrm-backend/internal/adapters/primary/validation"
	"github.com/lorrc/skycrm-backend/internal/core/domain"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	authService  ports.AuthService
	tokenIssuer  ports.TokenIssuer
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService ports.AuthService,
	tokenIssuer ports.TokenIssuer,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenIssuer:  tokenIssuer,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "auth"),
	}
}

// RegisterRoutes registers the public auth routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
}

// --- Request/Response DTOs ---

// RegisterRequest defines the expected JSON body for registration.
type RegisterRequest struct {
	TenantName string `json:"tenantName" validate:"max=255"`
	Subdomain  string `json:"subdomain" validate:"required,max=63"`
	Name       string `json:"name" validate:"notblank,max=255"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required"`
}

// LoginRequest defines the expected JSON body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserDTO is the public view of a user.
type UserDTO struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenantId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// AuthResponse carries the issued token and the user it was issued for.
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

func toUserDTO(user *domain.User) UserDTO {
	return UserDTO{
		ID:        user.ID.String(),
		TenantID:  user.TenantID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// --- Handlers ---

// HandleRegister handles POST /auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[RegisterRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), ports.RegisterParams{
		TenantName: req.TenantName,
		Subdomain:  req.Subdomain,
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.writeToken(w, r, http.StatusCreated, user)
}

// HandleLogin handles POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[LoginRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.writeToken(w, r, http.StatusOK, user)
}

func (h *AuthHandler) writeToken(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	token, err := h.tokenIssuer.GenerateToken(user.Identity())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "token issued",
		"user_id", user.ID,
		"tenant_id", user.TenantID,
	)

	WriteJSON(w, status, AuthResponse{Token: token, User: toUserDTO(user)})
}
