package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	wsAdapter "github.com/lorrc/skycrm-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/skycrm-backend/internal/config"
	"github.com/lorrc/skycrm-backend/internal/infrastructure/logging"
)

// WebSocketHandler handles WebSocket connection upgrades
type WebSocketHandler struct {
	hub      *wsAdapter.Hub
	gate     *wsAdapter.Gate
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *wsAdapter.Hub,
	gate *wsAdapter.Gate,
	cfg *config.Config,
	logger *slog.Logger,
) *WebSocketHandler {
	handler := &WebSocketHandler{
		hub:    hub,
		gate:   gate,
		logger: logger.With("handler", "websocket"),
	}

	handler.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     handler.makeOriginChecker(cfg),
	}

	return handler
}

// makeOriginChecker creates an origin checking function based on configuration
func (h *WebSocketHandler) makeOriginChecker(cfg *config.Config) func(r *http.Request) bool {
	allowedOrigins := cfg.WebSocket.AllowedOrigins

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		if cfg.IsDevelopment() {
			if origin != "" {
				h.logger.Warn("allowing websocket connection in development mode",
					"origin", origin,
					"remote_addr", r.RemoteAddr,
				)
			}
			return true
		}

		// Non-browser clients send no Origin.
		if origin == "" {
			return true
		}

		parsedOrigin, err := url.Parse(origin)
		if err != nil {
			h.logger.Warn("failed to parse websocket origin",
				"origin", origin,
				"error", err,
			)
			return false
		}

		originHost := parsedOrigin.Host

		for _, allowed := range allowedOrigins {
			if u, err := url.Parse(allowed); err == nil && u.Host != "" {
				allowed = u.Host
			}
			// "*.example.com" matches any subdomain and the apex.
			if strings.HasPrefix(allowed, "*.") {
				suffix := allowed[1:]
				if strings.HasSuffix(originHost, suffix) || originHost == allowed[2:] {
					return true
				}
			} else if originHost == allowed {
				return true
			}
		}

		h.logger.Warn("websocket connection rejected due to origin",
			"origin", origin,
			"remote_addr", r.RemoteAddr,
			"allowed_origins", allowedOrigins,
		)
		return false
	}
}

// ServeHTTP admits, upgrades and attaches a realtime connection. Every
// admission failure gets the same 401 body so callers cannot tell a missing
// credential from a rejected one.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logging.LoggerFromContext(r.Context(), h.logger)

	identity, err := h.gate.Admit(r)
	if err != nil {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Authentication error",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	if !h.hub.Running() {
		WriteJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error: "Realtime service unavailable",
			Code:  "REALTIME_UNAVAILABLE",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an error response.
		log.Warn("failed to upgrade websocket connection", "error", err)
		return
	}

	client, err := h.hub.Attach(r.Context(), conn, identity)
	if err != nil {
		log.Warn("failed to attach websocket connection", "error", err)
		_ = conn.Close()
		return
	}

	log.Info("websocket connection established",
		"connection_id", client.ID,
		"user_id", identity.UserID,
		"tenant_id", identity.TenantID,
		"remote_addr", r.RemoteAddr,
	)
}
