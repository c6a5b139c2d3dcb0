package websocket

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// Gate authenticates a connection attempt before it is upgraded. A rejected
// attempt never reaches the hub.
type Gate struct {
	verifier ports.TokenVerifier
	logger   *slog.Logger
}

// NewGate creates a gate that checks credentials with verifier.
func NewGate(verifier ports.TokenVerifier, logger *slog.Logger) *Gate {
	return &Gate{
		verifier: verifier,
		logger:   logger.With("component", "websocket_gate"),
	}
}

// Admit resolves the identity of a handshake request. It returns
// ErrMissingCredential when no token is presented and ErrAuthentication for
// any token that does not verify. The reason a token was refused is logged
// here and never returned.
func (g *Gate) Admit(r *http.Request) (domain.Identity, error) {
	token := credentialFromRequest(r)
	if token == "" {
		g.logger.Warn("websocket connection rejected: missing token",
			"remote_addr", r.RemoteAddr,
		)
		return domain.Identity{}, apperrors.ErrMissingCredential
	}

	identity, err := g.verifier.Verify(token)
	if err != nil {
		g.logger.Warn("websocket connection rejected: invalid token",
			"remote_addr", r.RemoteAddr,
			"error", err,
		)
		return domain.Identity{}, apperrors.ErrAuthentication
	}
	return identity, nil
}

// credentialFromRequest reads a bearer token from the Authorization header,
// falling back to the token query parameter that browsers have to use.
func credentialFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
