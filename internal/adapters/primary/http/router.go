package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	mw "github.com/lorrc/skycrm-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// RouterConfig collects everything the API router mounts. Nil handlers and
// limiters are skipped.
type RouterConfig struct {
	Logger         *slog.Logger
	Verifier       ports.TokenVerifier
	AllowedOrigins []string
	GeneralLimiter *mw.RateLimiter
	AuthLimiter    *mw.RateLimiter
	Health         *HealthHandler
	Auth           *AuthHandler
	Me             *MeHandler
	Tasks          *TaskHandler
	Customers      *CustomerHandler
	Invoices       *InvoiceHandler
	Tickets        *TicketHandler
	Announcements  *AnnouncementHandler
	WebSocket      http.Handler
}

// NewRouter builds the chi router for the whole service.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(cfg.Logger))
	r.Use(mw.RecoveryLogger(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(r)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Auth != nil {
			r.Group(func(r chi.Router) {
				if cfg.AuthLimiter != nil {
					r.Use(cfg.AuthLimiter.Middleware)
				}
				r.Route("/auth", cfg.Auth.RegisterRoutes)
			})
		}

		// The websocket route authenticates inside the handler.
		if cfg.WebSocket != nil {
			r.Method(http.MethodGet, "/ws", cfg.WebSocket)
		}

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireIdentity(cfg.Verifier))
			if cfg.GeneralLimiter != nil {
				r.Use(cfg.GeneralLimiter.Middleware)
			}

			if cfg.Me != nil {
				r.Route("/me", cfg.Me.RegisterRoutes)
			}
			if cfg.Tasks != nil {
				r.Route("/tasks", cfg.Tasks.RegisterRoutes)
			}
			if cfg.Customers != nil {
				r.Route("/customers", cfg.Customers.RegisterRoutes)
			}
			if cfg.Invoices != nil {
				r.Route("/invoices", cfg.Invoices.RegisterRoutes)
			}
			if cfg.Tickets != nil {
				r.Route("/tickets", cfg.Tickets.RegisterRoutes)
			}
			if cfg.Announcements != nil {
				r.Route("/announcements", func(r chi.Router) {
					r.Use(mw.RequireAdmin)
					cfg.Announcements.RegisterRoutes(r)
				})
			}
		})
	})

	return r
}
