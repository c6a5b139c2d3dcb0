package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

const (
	maxAnnouncementTitle   = 100
	maxAnnouncementMessage = 1000
)

// AnnouncementService pushes platform-wide messages to every connection.
type AnnouncementService struct {
	publisher ports.RealtimePublisher
	logger    *slog.Logger
}

var _ ports.AnnouncementService = (*AnnouncementService)(nil)

func NewAnnouncementService(publisher ports.RealtimePublisher, logger *slog.Logger) ports.AnnouncementService {
	return &AnnouncementService{
		publisher: publisher,
		logger:    logger.With("component", "announcements"),
	}
}

// Announce broadcasts a message to all connected users. Admins only.
func (s *AnnouncementService) Announce(ctx context.Context, actor domain.Identity, title, message string) error {
	if !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}

	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)

	errs := apperrors.NewValidationErrors()
	if title == "" {
		errs.Add("title", "Title is required")
	} else if len(title) > maxAnnouncementTitle {
		errs.Add("title", "Title must be 100 characters or less")
	}
	if message == "" {
		errs.Add("message", "Message is required")
	} else if len(message) > maxAnnouncementMessage {
		errs.Add("message", "Message must be 1000 characters or less")
	}
	if errs.HasErrors() {
		return errs
	}

	s.logger.InfoContext(ctx, "broadcasting announcement", "title", title)
	s.publisher.PushToAll(domain.EventAnnouncement, domain.NewAnnouncementNotification(title, message))
	return nil
}
