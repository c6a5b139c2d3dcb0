package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

func seedTicket(t *testing.T, tenant *domain.Tenant, creator *domain.User, subject string) *domain.Ticket {
	t.Helper()

	ticket, err := domain.NewTicket(domain.TicketParams{
		TenantID:    tenant.ID,
		Subject:     subject,
		Description: "Steps to reproduce attached",
		Type:        domain.TicketTypeBug,
		CreatedBy:   creator.ID,
	})
	require.NoError(t, err)
	ticket, err = NewTicketRepository(testPool).Create(context.Background(), ticket)
	require.NoError(t, err)
	return ticket
}

func seedMember(t *testing.T, tenant *domain.Tenant) *domain.User {
	t.Helper()

	user, err := domain.NewUser(domain.UserRegistrationParams{
		Name:     "Agent",
		Email:    uuid.NewString()[:8] + "@agents.test",
		Password: "Password123",
	}, tenant.ID, domain.RoleUser)
	require.NoError(t, err)
	user, err = NewUserRepository(testPool).Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func TestTicketRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	tenant, admin := seedTenant(t)
	other, _ := seedTenant(t)
	agent := seedMember(t, tenant)
	repo := NewTicketRepository(testPool)

	ticket := seedTicket(t, tenant, admin, "Sync stuck")

	found, err := repo.GetByID(ctx, tenant.ID, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, found.Status)
	assert.Equal(t, domain.TicketTypeBug, found.Type)
	assert.Nil(t, found.AssignedTo)

	_, err = repo.GetByID(ctx, other.ID, ticket.ID)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	require.NoError(t, found.Assign(agent.ID))
	assigned, err := repo.Update(ctx, found)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, agent.ID, *assigned.AssignedTo)

	require.NoError(t, assigned.UpdateStatus(domain.TicketStatusClosed))
	closed, err := repo.Update(ctx, assigned)
	require.NoError(t, err)
	assert.NotNil(t, closed.ClosedAt)

	stale := *assigned
	stale.Status = domain.TicketStatusOpen
	stale.ClosedAt = nil
	_, err = repo.Update(ctx, &stale)
	assert.ErrorIs(t, err, apperrors.ErrTicketClosed, "a closed ticket is never rewritten")

	stale.ID = uuid.New()
	_, err = repo.Update(ctx, &stale)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestTicketRepository_ListParticipant(t *testing.T) {
	ctx := context.Background()
	tenant, admin := seedTenant(t)
	agent := seedMember(t, tenant)
	repo := NewTicketRepository(testPool)

	mine := seedTicket(t, tenant, agent, "Opened by agent")
	handed := seedTicket(t, tenant, admin, "Assigned to agent")
	seedTicket(t, tenant, admin, "Admin only")

	require.NoError(t, handed.Assign(agent.ID))
	_, err := repo.Update(ctx, handed)
	require.NoError(t, err)

	all, err := repo.List(ctx, ports.TicketFilter{TenantID: tenant.ID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	visible, err := repo.List(ctx, ports.TicketFilter{TenantID: tenant.ID, Participant: &agent.ID, Limit: 10})
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(visible))
	for _, tk := range visible {
		ids = append(ids, tk.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{mine.ID, handed.ID}, ids)

	open := domain.TicketStatusOpen
	assignedOpen, err := repo.List(ctx, ports.TicketFilter{TenantID: tenant.ID, Status: &open, AssignedTo: &agent.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, assignedOpen, 1)
	assert.Equal(t, handed.ID, assignedOpen[0].ID)
}

func TestCommentRepository_Thread(t *testing.T) {
	ctx := context.Background()
	tenant, admin := seedTenant(t)
	ticket := seedTicket(t, tenant, admin, "Billing question")
	repo := NewCommentRepository(testPool)

	first, err := domain.NewTicketComment(ticket, admin.ID, "first")
	require.NoError(t, err)
	second, err := domain.NewTicketComment(ticket, admin.ID, "second")
	require.NoError(t, err)
	second.CreatedAt = first.CreatedAt.Add(time.Second)

	_, err = repo.Create(ctx, second)
	require.NoError(t, err)
	_, err = repo.Create(ctx, first)
	require.NoError(t, err)

	thread, err := repo.ListByTicket(ctx, tenant.ID, ticket.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "first", thread[0].Body)
	assert.Equal(t, "second", thread[1].Body)

	orphan, err := domain.NewTicketComment(&domain.Ticket{ID: uuid.New(), TenantID: tenant.ID}, admin.ID, "lost")
	require.NoError(t, err)
	_, err = repo.Create(ctx, orphan)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}
