package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	wsAdapter "github.com/lorrc/skycrm-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/skycrm-backend/internal/auth"
	"github.com/lorrc/skycrm-backend/internal/config"
	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
	"github.com/lorrc/skycrm-backend/internal/core/mocks"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", time.Hour)
}

func issue(t *testing.T, tokens *auth.TokenManager, role domain.Role) (string, domain.Identity) {
	t.Helper()
	identity := domain.Identity{UserID: uuid.New(), TenantID: uuid.New(), Role: role}
	token, err := tokens.GenerateToken(identity)
	require.NoError(t, err)
	return token, identity
}

func TestErrorHandler_MapsDomainErrors(t *testing.T) {
	eh := NewErrorHandler(discardLogger())

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.ErrInvalidCredentials, stdhttp.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{apperrors.ErrMissingCredential, stdhttp.StatusUnauthorized, "UNAUTHORIZED"},
		{apperrors.ErrForbidden, stdhttp.StatusForbidden, "FORBIDDEN"},
		{fmt.Errorf("lookup: %w", apperrors.ErrTaskNotFound), stdhttp.StatusNotFound, "TASK_NOT_FOUND"},
		{apperrors.ErrCustomerExists, stdhttp.StatusConflict, "CUSTOMER_EXISTS"},
		{apperrors.ErrInvoiceNotPayable, stdhttp.StatusConflict, "INVOICE_NOT_PAYABLE"},
		{apperrors.ErrCustomerHasInvoices, stdhttp.StatusConflict, "CUSTOMER_HAS_INVOICES"},
		{apperrors.ErrInvalidStatusTransition, stdhttp.StatusConflict, "INVALID_STATUS_TRANSITION"},
		{apperrors.ErrTicketNotFound, stdhttp.StatusNotFound, "TICKET_NOT_FOUND"},
		{apperrors.ErrInvalidDealProbability, stdhttp.StatusBadRequest, "VALIDATION_ERROR"},
		{apperrors.ErrRoomReserved, stdhttp.StatusBadRequest, "ROOM_RESERVED"},
		{apperrors.ErrInvalidTaxRate, stdhttp.StatusBadRequest, "VALIDATION_ERROR"},
		{apperrors.ErrRateLimited, stdhttp.StatusTooManyRequests, "RATE_LIMITED"},
		{fmt.Errorf("connection reset"), stdhttp.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			eh.Handle(rec, httptest.NewRequest(stdhttp.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				body := decode[ErrorResponse](t, rec)
				assert.Equal(t, tt.code, body.Code)
			}
		})
	}
}

func TestErrorHandler_InternalErrorsAreOpaque(t *testing.T) {
	eh := NewErrorHandler(discardLogger())
	rec := httptest.NewRecorder()

	eh.Handle(rec, httptest.NewRequest(stdhttp.MethodGet, "/", nil), fmt.Errorf("pq: password authentication failed"))

	assert.Equal(t, stdhttp.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	router := NewRouter(RouterConfig{
		Logger:   discardLogger(),
		Verifier: testTokens(),
		Tasks:    NewTaskHandler(mocks.NewMockTaskService(), NewErrorHandler(discardLogger()), discardLogger()),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/api/v1/tasks", nil))

	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "UNAUTHORIZED", body.Code)
}

func TestTaskHandler_CreateValidation(t *testing.T) {
	tokens := testTokens()
	svc := mocks.NewMockTaskService()
	router := NewRouter(RouterConfig{
		Logger:   discardLogger(),
		Verifier: tokens,
		Tasks:    NewTaskHandler(svc, NewErrorHandler(discardLogger()), discardLogger()),
	})
	token, _ := issue(t, tokens, domain.RoleUser)

	t.Run("blank title", func(t *testing.T) {
		rec := do(t, router, stdhttp.MethodPost, "/api/v1/tasks", token, map[string]any{"title": "  "})

		require.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		body := decode[ValidationErrorResponse](t, rec)
		assert.Contains(t, body.Fields, "title")
	})

	t.Run("bad assignee id", func(t *testing.T) {
		rec := do(t, router, stdhttp.MethodPost, "/api/v1/tasks", token, map[string]any{
			"title":      "Call back",
			"assignedTo": "not-a-uuid",
		})

		require.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		body := decode[ValidationErrorResponse](t, rec)
		assert.Contains(t, body.Fields, "assignedTo")
	})

	svc.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
}

func TestTaskHandler_GetUsesCallerTenant(t *testing.T) {
	tokens := testTokens()
	svc := mocks.NewMockTaskService()
	router := NewRouter(RouterConfig{
		Logger:   discardLogger(),
		Verifier: tokens,
		Tasks:    NewTaskHandler(svc, NewErrorHandler(discardLogger()), discardLogger()),
	})
	token, identity := issue(t, tokens, domain.RoleUser)
	taskID := uuid.New()

	svc.On("GetTask", mock.Anything, identity, taskID).Return(nil, apperrors.ErrTaskNotFound)

	rec := do(t, router, stdhttp.MethodGet, "/api/v1/tasks/"+taskID.String(), token, nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestCustomerHandler_Update(t *testing.T) {
	tokens := testTokens()
	svc := &mocks.MockCustomerService{}
	router := NewRouter(RouterConfig{
		Logger:    discardLogger(),
		Verifier:  tokens,
		Customers: NewCustomerHandler(svc, NewErrorHandler(discardLogger()), discardLogger()),
	})
	token, identity := issue(t, tokens, domain.RoleUser)
	customerID := uuid.New()

	t.Run("unknown status is rejected before the service", func(t *testing.T) {
		rec := do(t, router, stdhttp.MethodPut, "/api/v1/customers/"+customerID.String(), token, map[string]any{"status": "Churned"})

		require.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		body := decode[ValidationErrorResponse](t, rec)
		assert.Contains(t, body.Fields, "status")
		svc.AssertNotCalled(t, "UpdateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("only sent fields are changed", func(t *testing.T) {
		svc.On("UpdateCustomer", mock.Anything, mock.MatchedBy(func(p ports.UpdateCustomerParams) bool {
			return p.Actor == identity && p.CustomerID == customerID &&
				p.Changes.Phone != nil && *p.Changes.Phone == "555-0100" &&
				p.Changes.CompanyName == nil && p.Changes.Value == nil
		})).Return(&domain.Customer{ID: customerID, CompanyName: "Acme", Phone: "555-0100"}, nil).Once()

		rec := do(t, router, stdhttp.MethodPut, "/api/v1/customers/"+customerID.String(), token, map[string]any{"phone": "555-0100"})

		require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("delete maps invoices to conflict", func(t *testing.T) {
		svc.On("DeleteCustomer", mock.Anything, identity, customerID).Return(apperrors.ErrCustomerHasInvoices).Once()

		rec := do(t, router, stdhttp.MethodDelete, "/api/v1/customers/"+customerID.String(), token, nil)

		assert.Equal(t, stdhttp.StatusConflict, rec.Code)
	})
}

func TestTicketHandler_Assign(t *testing.T) {
	tokens := testTokens()
	svc := mocks.NewMockTicketService()
	router := NewRouter(RouterConfig{
		Logger:   discardLogger(),
		Verifier: tokens,
		Tickets:  NewTicketHandler(svc, nil, NewErrorHandler(discardLogger()), discardLogger()),
	})
	token, identity := issue(t, tokens, domain.RoleAdmin)
	ticketID := uuid.New()

	t.Run("bad assignee id", func(t *testing.T) {
		rec := do(t, router, stdhttp.MethodPatch, "/api/v1/tickets/"+ticketID.String()+"/assignee", token, AssignTicketRequest{AssigneeID: "nope"})

		require.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "AssignTicket", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("closed ticket", func(t *testing.T) {
		assignee := uuid.New()
		svc.On("AssignTicket", mock.Anything, identity, ticketID, assignee).Return(nil, apperrors.ErrTicketClosed).Once()

		rec := do(t, router, stdhttp.MethodPatch, "/api/v1/tickets/"+ticketID.String()+"/assignee", token, AssignTicketRequest{AssigneeID: assignee.String()})

		assert.Equal(t, stdhttp.StatusConflict, rec.Code)
		body := decode[ErrorResponse](t, rec)
		assert.Equal(t, "TICKET_CLOSED", body.Code)
	})
}

func TestAnnouncementHandler(t *testing.T) {
	tokens := testTokens()
	svc := mocks.NewMockAnnouncementService()
	router := NewRouter(RouterConfig{
		Logger:        discardLogger(),
		Verifier:      tokens,
		Announcements: NewAnnouncementHandler(svc, NewErrorHandler(discardLogger()), discardLogger()),
	})

	t.Run("members are forbidden", func(t *testing.T) {
		token, _ := issue(t, tokens, domain.RoleUser)
		rec := do(t, router, stdhttp.MethodPost, "/api/v1/announcements", token, AnnounceRequest{Title: "Hi", Message: "All"})
		assert.Equal(t, stdhttp.StatusForbidden, rec.Code)
	})

	t.Run("admins broadcast", func(t *testing.T) {
		token, identity := issue(t, tokens, domain.RoleAdmin)
		svc.On("Announce", mock.Anything, identity, "Maintenance", "Down at noon").Return(nil).Once()

		rec := do(t, router, stdhttp.MethodPost, "/api/v1/announcements", token, AnnounceRequest{Title: "Maintenance", Message: "Down at noon"})

		assert.Equal(t, stdhttp.StatusAccepted, rec.Code)
		svc.AssertExpectations(t)
	})
}

func TestMeHandler_ReportsPresence(t *testing.T) {
	tokens := testTokens()
	authService := mocks.NewMockAuthService()
	token, identity := issue(t, tokens, domain.RoleUser)
	authService.On("Me", mock.Anything, identity).Return(&domain.User{
		ID: identity.UserID, TenantID: identity.TenantID, Name: "Ivy", Role: domain.RoleUser,
	}, nil)

	router := NewRouter(RouterConfig{
		Logger:   discardLogger(),
		Verifier: tokens,
		Me:       NewMeHandler(authService, presenceFunc(func(uuid.UUID) bool { return true }), NewErrorHandler(discardLogger()), discardLogger()),
	})

	rec := do(t, router, stdhttp.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	me := decode[MeResponse](t, rec)
	assert.Equal(t, "Ivy", me.Name)
	assert.True(t, me.Online)
}

type presenceFunc func(uuid.UUID) bool

func (f presenceFunc) IsUserConnected(userID uuid.UUID) bool { return f(userID) }

func newWSTestHandler(env string, origins ...string) (*WebSocketHandler, *wsAdapter.Hub, *auth.TokenManager) {
	tokens := testTokens()
	cfg := &config.Config{
		App:       config.AppConfig{Environment: env},
		WebSocket: config.WebSocketConfig{AllowedOrigins: origins, ReadBufferSize: 1024, WriteBufferSize: 1024},
	}
	hub := wsAdapter.NewHub(discardLogger(), wsAdapter.DefaultHubConfig())
	gate := wsAdapter.NewGate(tokens, discardLogger())
	return NewWebSocketHandler(hub, gate, cfg, discardLogger()), hub, tokens
}

func TestWebSocketHandler_RejectsWithoutCredential(t *testing.T) {
	handler, _, _ := newWSTestHandler("development")

	for _, path := range []string{"/ws", "/ws?token=garbage"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, path, nil))

		assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code, path)
		assert.JSONEq(t, `{"error":"Authentication error","code":"UNAUTHORIZED"}`, rec.Body.String(), path)
	}
}

func TestWebSocketHandler_HubNotRunning(t *testing.T) {
	handler, _, tokens := newWSTestHandler("development")
	token, _ := issue(t, tokens, domain.RoleUser)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/ws?token="+token, nil))

	assert.Equal(t, stdhttp.StatusServiceUnavailable, rec.Code)
}

func TestWebSocketHandler_OriginCheck(t *testing.T) {
	handler, _, _ := newWSTestHandler("production", "https://app.skycrm.test", "*.partner.test")
	check := handler.upgrader.CheckOrigin

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://app.skycrm.test", true},
		{"https://eu.partner.test", true},
		{"https://partner.test", true},
		{"https://evil.test", false},
		{"https://app.skycrm.test.evil.test", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(stdhttp.MethodGet, "/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, check(r), tt.origin)
	}
}

func TestWebSocketHandler_EndToEnd(t *testing.T) {
	handler, hub, tokens := newWSTestHandler("development")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	require.Eventually(t, hub.Running, time.Second, 5*time.Millisecond)

	srv := httptest.NewServer(handler)
	defer srv.Close()

	token, identity := issue(t, tokens, domain.RoleUser)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?token=" + token

	conn, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, stdhttp.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return hub.IsUserConnected(identity.UserID) }, time.Second, 5*time.Millisecond)

	hub.PushToUser(identity.UserID, domain.EventNotification, domain.NewAnnouncementNotification("Hello", "World"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(frame), `"event":"notification"`)
	assert.Contains(t, string(frame), `"title":"Hello"`)
}
