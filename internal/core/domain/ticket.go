package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

const (
	MaxTicketSubjectLength     = 200
	MaxTicketDescriptionLength = 5000
	MaxCommentLength           = 2000
)

// TicketStatus represents the possible states of a support ticket.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// IsValid reports whether s is a known status.
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// ticketTransitions lists where each status may move. Closed is terminal.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed},
	TicketStatusInProgress: {TicketStatusOpen, TicketStatusResolved, TicketStatusClosed},
	TicketStatusResolved:   {TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed},
	TicketStatusClosed:     {},
}

// TicketPriority shares the scale used for tasks.
type TicketPriority = TaskPriority

// TicketType classifies what the requester is asking for.
type TicketType string

const (
	TicketTypeBug      TicketType = "Bug"
	TicketTypeRequest  TicketType = "Request"
	TicketTypeQuestion TicketType = "Question"
	TicketTypeOther    TicketType = "Other"
)

// IsValid reports whether t is a known ticket type.
func (t TicketType) IsValid() bool {
	switch t {
	case TicketTypeBug, TicketTypeRequest, TicketTypeQuestion, TicketTypeOther:
		return true
	}
	return false
}

// Ticket is a support request raised inside a tenant.
type Ticket struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Subject     string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Type        TicketType
	CreatedBy   uuid.UUID
	AssignedTo  *uuid.UUID
	ClosedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketParams holds the input for opening a ticket.
type TicketParams struct {
	TenantID    uuid.UUID
	Subject     string
	Description string
	Priority    TicketPriority
	Type        TicketType
	CreatedBy   uuid.UUID
}

// NewTicket is a factory function to create a valid new ticket.
func NewTicket(params TicketParams) (*Ticket, error) {
	subject := strings.TrimSpace(params.Subject)
	if subject == "" {
		return nil, apperrors.ErrSubjectRequired
	}
	if len(subject) > MaxTicketSubjectLength {
		return nil, apperrors.ErrSubjectTooLong
	}
	if strings.TrimSpace(params.Description) == "" {
		return nil, apperrors.ErrTicketDescriptionRequired
	}
	if len(params.Description) > MaxTicketDescriptionLength {
		return nil, apperrors.ErrTicketDescriptionTooLong
	}

	priority := params.Priority
	if priority == "" {
		priority = TaskPriorityMedium
	}
	if !priority.IsValid() {
		return nil, apperrors.ErrInvalidTicketPriority
	}

	kind := params.Type
	if kind == "" {
		kind = TicketTypeOther
	}
	if !kind.IsValid() {
		return nil, apperrors.ErrInvalidTicketType
	}

	now := time.Now().UTC()
	return &Ticket{
		ID:          uuid.New(),
		TenantID:    params.TenantID,
		Subject:     subject,
		Description: params.Description,
		Status:      TicketStatusOpen,
		Priority:    priority,
		Type:        kind,
		CreatedBy:   params.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateStatus moves the ticket along its workflow. Closing stamps ClosedAt.
func (t *Ticket) UpdateStatus(status TicketStatus) error {
	if !status.IsValid() {
		return apperrors.ErrInvalidTicketStatus
	}

	for _, s := range ticketTransitions[t.Status] {
		if s != status {
			continue
		}
		now := time.Now().UTC()
		t.Status = status
		t.UpdatedAt = now
		if status == TicketStatusClosed {
			t.ClosedAt = &now
		}
		return nil
	}
	return apperrors.ErrInvalidStatusTransition
}

// Assign hands the ticket to a user. Closed tickets cannot be reassigned.
func (t *Ticket) Assign(assignee uuid.UUID) error {
	if t.Status == TicketStatusClosed {
		return apperrors.ErrTicketClosed
	}
	t.AssignedTo = &assignee
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// IsParticipant reports whether the user opened the ticket or works on it.
func (t *Ticket) IsParticipant(userID uuid.UUID) bool {
	return t.CreatedBy == userID || (t.AssignedTo != nil && *t.AssignedTo == userID)
}

// TicketComment is a message on a ticket thread.
type TicketComment struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	TicketID  uuid.UUID
	AuthorID  uuid.UUID
	Body      string
	CreatedAt time.Time
}

// NewTicketComment validates a comment for the given ticket.
func NewTicketComment(ticket *Ticket, authorID uuid.UUID, body string) (*TicketComment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.ErrCommentBodyRequired
	}
	if len(body) > MaxCommentLength {
		return nil, apperrors.ErrCommentTooLong
	}
	return &TicketComment{
		ID:        uuid.New(),
		TenantID:  ticket.TenantID,
		TicketID:  ticket.ID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}, nil
}
