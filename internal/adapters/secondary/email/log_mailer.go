package email

import (
	"context"
	"log/slog"

	"github.com/lorrc/skycrm-backend/internal/core/ports"
	"github.com/lorrc/skycrm-backend/internal/infrastructure/logging"
)

// LogMailer is a secondary adapter that writes emails to the log instead of
// sending them. It resolves recipients through the user repository.
type LogMailer struct {
	userRepo ports.UserRepository
	logger   *slog.Logger
}

var _ ports.Mailer = (*LogMailer)(nil)

// NewLogMailer creates a new log-only mailer.
func NewLogMailer(userRepo ports.UserRepository, logger *slog.Logger) *LogMailer {
	return &LogMailer{
		userRepo: userRepo,
		logger:   logger.With("component", "email"),
	}
}

// Send logs the email. The lookup outlives a cancelled request context.
func (m *LogMailer) Send(ctx context.Context, params ports.MailParams) {
	log := logging.LoggerFromContext(ctx, m.logger)
	ctx = context.WithoutCancel(ctx)

	user, err := m.userRepo.GetByID(ctx, params.TenantID, params.RecipientUserID)
	if err != nil {
		log.Error("failed to resolve email recipient",
			"user_id", params.RecipientUserID,
			"error", err,
		)
		return
	}

	log.Info("email sent",
		"to_name", user.Name,
		"to_email", user.Email,
		"subject", params.Subject,
	)
}
