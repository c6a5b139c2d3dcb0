package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

// Error codes sent to a client in an "error" event.
const (
	CodeRoomInvalid  = "ROOM_INVALID"
	CodeRoomReserved = "ROOM_RESERVED"
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	// ID identifies the connection in logs.
	ID string

	// Identity is fixed at admission.
	Identity domain.Identity

	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of encoded outbound frames. Only the hub loop sends
	// on it and only the hub closes it.
	send      chan []byte
	closeOnce sync.Once

	// Rooms this connection is in. Owned by the hub loop.
	rooms map[string]struct{}

	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a client for an admitted connection.
func NewClient(hub *Hub, conn *websocket.Conn, identity domain.Identity, logger *slog.Logger) *Client {
	id := uuid.NewString()

	limit := rate.Inf
	if hub.cfg.EventsPerSecond > 0 {
		limit = rate.Limit(hub.cfg.EventsPerSecond)
	}
	burst := hub.cfg.EventsBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		ID:       id,
		Identity: identity,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, hub.cfg.SendBufferSize),
		rooms:    make(map[string]struct{}),
		limiter:  rate.NewLimiter(limit, burst),
		logger: logger.With(
			"connection_id", id,
			"user_id", identity.UserID.String(),
			"tenant_id", identity.TenantID.String(),
		),
	}
}

// Attach registers an upgraded connection with the hub and starts its pumps.
// The caller must not use conn afterwards.
func (h *Hub) Attach(ctx context.Context, conn *websocket.Conn, identity domain.Identity) (*Client, error) {
	client := NewClient(h, conn, identity, h.logger)
	if err := h.Register(ctx, client); err != nil {
		return nil, err
	}

	go client.WritePump()
	go client.ReadPump()
	return client, nil
}

// closeSend closes the send channel exactly once
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// ReadPump pumps messages from the websocket connection to the hub.
// This method runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	cfg := c.hub.cfg
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}

		c.handleIncomingMessage(message)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	cfg := c.hub.cfg
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// --- Incoming Message Handling ---

// handleIncomingMessage routes one inbound frame.
func (c *Client) handleIncomingMessage(message []byte) {
	if !c.limiter.Allow() {
		c.logger.Warn("inbound rate limit exceeded, dropping frame")
		return
	}

	env, err := decodeEnvelope(message)
	if err != nil || env.Event == "" {
		c.logger.Warn("failed to decode client frame", "error", err)
		return
	}

	if out, ok := domain.TenantRelay(env.Event); ok {
		c.hub.submit(op{
			kind:          opDeliver,
			client:        c,
			room:          domain.TenantRoom(c.Identity.TenantID),
			event:         out,
			frame:         encodeFrame(out, env.Data),
			excludeSender: true,
		})
		return
	}

	if out, ok := domain.TypingRelay(env.Event); ok {
		c.handleTyping(out, env.Data)
		return
	}

	switch env.Event {
	case domain.EventRoomJoin:
		c.handleRoomChange(opJoin, env.Data)

	case domain.EventRoomLeave:
		c.handleRoomChange(opLeave, env.Data)

	case domain.EventPing:
		c.hub.submit(op{kind: opReply, client: c, frame: encodeFrame(domain.EventPong, nil)})

	default:
		c.logger.Debug("received unknown event", "event", env.Event)
	}
}

func (c *Client) handleTyping(out string, data json.RawMessage) {
	var p domain.RoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		c.logger.Debug("dropping typing event without room", "event", out)
		return
	}

	frame, err := encodeEvent(out, domain.TypingNotice{
		UserID: c.Identity.UserID.String(),
		Room:   p.Room,
	})
	if err != nil {
		return
	}

	c.hub.submit(op{
		kind:          opDeliver,
		client:        c,
		room:          c.roomKey(p.Room),
		event:         out,
		frame:         frame,
		excludeSender: true,
		senderInRoom:  true,
	})
}

func (c *Client) handleRoomChange(kind opKind, data json.RawMessage) {
	var p domain.RoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		c.rejectRoom(apperrors.ErrRoomInvalid, "")
		return
	}

	if err := domain.ValidateExplicitRoom(p.Room); err != nil {
		c.rejectRoom(err, p.Room)
		return
	}

	c.hub.submit(op{kind: kind, client: c, room: c.roomKey(p.Room), name: p.Room})
}

// roomKey maps a room name from the wire to the hub's table. Implicit rooms
// are already unique; explicit ones are scoped to the caller's tenant.
func (c *Client) roomKey(name string) string {
	if domain.IsReservedRoom(name) {
		return name
	}
	return domain.ScopedRoom(c.Identity.TenantID, name)
}

// rejectRoom tells the client why its join or leave was refused.
func (c *Client) rejectRoom(err error, room string) {
	code := CodeRoomInvalid
	if errors.Is(err, apperrors.ErrRoomReserved) {
		code = CodeRoomReserved
	}
	c.logger.Warn("room request refused", "room", room, "code", code)

	frame, encErr := encodeEvent(domain.EventError, domain.ErrorPayload{Code: code, Message: err.Error()})
	if encErr != nil {
		return
	}
	c.hub.submit(op{kind: opReply, client: c, frame: frame})
}
