package domain_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

func newTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := domain.NewTicket(domain.TicketParams{
		TenantID:    uuid.New(),
		Subject:     "Login broken",
		Description: "Nobody can sign in",
		CreatedBy:   uuid.New(),
	})
	require.NoError(t, err)
	return ticket
}

func TestNewTicket(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		ticket := newTicket(t)
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
		assert.Equal(t, domain.TaskPriorityMedium, ticket.Priority)
		assert.Equal(t, domain.TicketTypeOther, ticket.Type)
		assert.Nil(t, ticket.AssignedTo)
	})

	base := domain.TicketParams{Subject: "Subject", Description: "Body", CreatedBy: uuid.New()}
	tests := []struct {
		name        string
		mutate      func(p *domain.TicketParams)
		expectedErr error
	}{
		{"missing subject", func(p *domain.TicketParams) { p.Subject = "  " }, apperrors.ErrSubjectRequired},
		{"subject too long", func(p *domain.TicketParams) { p.Subject = strings.Repeat("s", 201) }, apperrors.ErrSubjectTooLong},
		{"missing description", func(p *domain.TicketParams) { p.Description = "" }, apperrors.ErrTicketDescriptionRequired},
		{"description too long", func(p *domain.TicketParams) { p.Description = strings.Repeat("d", 5001) }, apperrors.ErrTicketDescriptionTooLong},
		{"bad priority", func(p *domain.TicketParams) { p.Priority = "Urgent" }, apperrors.ErrInvalidTicketPriority},
		{"bad type", func(p *domain.TicketParams) { p.Type = "Complaint" }, apperrors.ErrInvalidTicketType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := base
			tt.mutate(&params)
			ticket, err := domain.NewTicket(params)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Nil(t, ticket)
		})
	}
}

func TestTicket_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		path    []domain.TicketStatus
		wantErr error
	}{
		{"open to in progress", []domain.TicketStatus{domain.TicketStatusInProgress}, nil},
		{"resolved can reopen", []domain.TicketStatus{domain.TicketStatusResolved, domain.TicketStatusOpen}, nil},
		{"same status is not a transition", []domain.TicketStatus{domain.TicketStatusOpen}, apperrors.ErrInvalidStatusTransition},
		{"closed is terminal", []domain.TicketStatus{domain.TicketStatusClosed, domain.TicketStatusOpen}, apperrors.ErrInvalidStatusTransition},
		{"unknown status", []domain.TicketStatus{"Pending"}, apperrors.ErrInvalidTicketStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := newTicket(t)
			var err error
			for _, s := range tt.path {
				if err = ticket.UpdateStatus(s); err != nil {
					break
				}
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.path[len(tt.path)-1], ticket.Status)
		})
	}

	t.Run("closing stamps closed at", func(t *testing.T) {
		ticket := newTicket(t)
		require.NoError(t, ticket.UpdateStatus(domain.TicketStatusClosed))
		assert.NotNil(t, ticket.ClosedAt)
	})
}

func TestTicket_Assign(t *testing.T) {
	ticket := newTicket(t)
	agent := uuid.New()

	require.NoError(t, ticket.Assign(agent))
	assert.True(t, ticket.IsParticipant(agent))
	assert.True(t, ticket.IsParticipant(ticket.CreatedBy))
	assert.False(t, ticket.IsParticipant(uuid.New()))

	require.NoError(t, ticket.UpdateStatus(domain.TicketStatusClosed))
	assert.ErrorIs(t, ticket.Assign(uuid.New()), apperrors.ErrTicketClosed)
	assert.Equal(t, agent, *ticket.AssignedTo)
}

func TestNewTicketComment(t *testing.T) {
	ticket := newTicket(t)

	comment, err := domain.NewTicketComment(ticket, ticket.CreatedBy, "  any update?  ")
	require.NoError(t, err)
	assert.Equal(t, "any update?", comment.Body)
	assert.Equal(t, ticket.TenantID, comment.TenantID)
	assert.Equal(t, ticket.ID, comment.TicketID)

	_, err = domain.NewTicketComment(ticket, ticket.CreatedBy, " ")
	assert.ErrorIs(t, err, apperrors.ErrCommentBodyRequired)

	_, err = domain.NewTicketComment(ticket, ticket.CreatedBy, strings.Repeat("c", 2001))
	assert.ErrorIs(t, err, apperrors.ErrCommentTooLong)
}
