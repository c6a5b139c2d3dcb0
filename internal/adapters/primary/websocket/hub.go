package websocket

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// ErrHubStopped is returned when a connection is offered to a hub that is
// not running.
var ErrHubStopped = errors.New("websocket hub is not running")

// HubConfig tunes the hub and the connections it owns.
type HubConfig struct {
	// Outbound frames buffered per connection before it counts as slow.
	SendBufferSize int
	// Operations buffered in front of the hub loop.
	QueueSize int

	WriteWait      time.Duration
	PongWait       time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64

	// Inbound events per second allowed per connection. Zero disables the limit.
	EventsPerSecond float64
	EventsBurst     int
}

// DefaultHubConfig returns the settings used when nothing is configured.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		SendBufferSize:  256,
		QueueSize:       1024,
		WriteWait:       10 * time.Second,
		PongWait:        60 * time.Second,
		PingInterval:    54 * time.Second,
		MaxMessageSize:  64 * 1024,
		EventsPerSecond: 20,
		EventsBurst:     40,
	}
}

type opKind int

const (
	opJoin opKind = iota
	opLeave
	opDeliver
	opReply
)

// op is a unit of work for the hub loop. Joins, leaves and deliveries share
// one queue so that everything a single connection asks for is applied in
// the order it was asked.
type op struct {
	kind   opKind
	client *Client
	// room is the hub key; name is what the client called it.
	room  string
	name  string
	frame []byte
	event string

	// Delivery options.
	everyone      bool
	excludeSender bool
	senderInRoom  bool
}

// Hub owns every live connection and the room membership table. All
// mutations and fan-out happen on the single goroutine running Run.
type Hub struct {
	cfg HubConfig

	// clients and rooms are written only by the loop. mu lets other
	// goroutines read counts without racing it.
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	ops        chan op

	started atomic.Bool
	running atomic.Bool
	done    chan struct{}

	logger *slog.Logger
}

var _ ports.RealtimePublisher = (*Hub)(nil)

// NewHub creates a new WebSocket hub. It does nothing until Run is called.
func NewHub(logger *slog.Logger, cfg HubConfig) *Hub {
	defaults := DefaultHubConfig()
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = defaults.SendBufferSize
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = defaults.WriteWait
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaults.PongWait
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongWait {
		cfg.PingInterval = (cfg.PongWait * 9) / 10
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}

	return &Hub{
		cfg:        cfg,
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ops:        make(chan op, cfg.QueueSize),
		done:       make(chan struct{}),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Run starts the hub's event loop and blocks until ctx is cancelled. On
// return every connection has been closed and later pushes are dropped.
// A hub runs once; later calls return immediately.
func (h *Hub) Run(ctx context.Context) {
	if !h.started.CompareAndSwap(false, true) {
		h.logger.Warn("hub already started")
		return
	}
	h.running.Store(true)
	h.logger.Info("websocket hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case o := <-h.ops:
			h.apply(o)
		}
	}
}

// Running reports whether the loop is accepting work.
func (h *Hub) Running() bool {
	return h != nil && h.running.Load()
}

// Register hands an admitted connection to the loop, which joins it to its
// tenant and user rooms before any of its frames are read.
func (h *Hub) Register(ctx context.Context, client *Client) error {
	if !h.Running() {
		return ErrHubStopped
	}
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unregister removes a connection. It is safe to call after the hub stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// PushToTenant delivers an event to every connection of a tenant.
func (h *Hub) PushToTenant(tenantID uuid.UUID, event string, data any) {
	h.push(op{kind: opDeliver, room: domain.TenantRoom(tenantID), event: event}, data)
}

// PushToUser delivers an event to every connection of a user.
func (h *Hub) PushToUser(userID uuid.UUID, event string, data any) {
	h.push(op{kind: opDeliver, room: domain.UserRoom(userID), event: event}, data)
}

// PushToAll delivers an event to every connection of every tenant.
func (h *Hub) PushToAll(event string, data any) {
	h.push(op{kind: opDeliver, everyone: true, event: event}, data)
}

// push is fire-and-forget: it never blocks and never fails. Pushes to a hub
// that is not running are dropped silently.
func (h *Hub) push(o op, data any) {
	if !h.Running() {
		return
	}

	frame, err := encodeEvent(o.event, data)
	if err != nil {
		h.logger.Error("failed to encode outbound event", "event", o.event, "error", err)
		return
	}
	o.frame = frame

	select {
	case h.ops <- o:
	default:
		h.logger.Warn("hub queue full, dropping event",
			"event", o.event,
			"room", o.room,
		)
	}
}

// submit queues work on behalf of a connection. Unlike push it waits for
// room in the queue so a connection's requests are never reordered or lost.
func (h *Hub) submit(o op) {
	select {
	case h.ops <- o:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.addToRoom(client, domain.TenantRoom(client.Identity.TenantID))
	h.addToRoom(client, domain.UserRoom(client.Identity.UserID))
	total := len(h.clients)
	h.mu.Unlock()

	client.logger.Info("client registered", "total_connections", total)
}

// removeClient drops a connection from the hub and every room it was in,
// then closes its send channel. After this no delivery can reach it.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	for room := range client.rooms {
		h.removeFromRoom(client, room)
	}
	h.mu.Unlock()

	client.closeSend()
	client.logger.Info("client unregistered")
}

func (h *Hub) apply(o op) {
	switch o.kind {
	case opJoin:
		h.join(o.client, o.room, o.name)
	case opLeave:
		h.leave(o.client, o.room, o.name)
	case opReply:
		if _, ok := h.clients[o.client]; ok {
			h.send(o.client, o.frame)
		}
	case opDeliver:
		h.deliver(o)
	}
}

func (h *Hub) join(client *Client, room, name string) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	h.mu.Lock()
	h.addToRoom(client, room)
	h.mu.Unlock()

	client.logger.Debug("client joined room", "room", name)
	h.reply(client, domain.EventRoomJoined, domain.RoomPayload{Room: name})
}

func (h *Hub) leave(client *Client, room, name string) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	h.mu.Lock()
	h.removeFromRoom(client, room)
	h.mu.Unlock()

	client.logger.Debug("client left room", "room", name)
	h.reply(client, domain.EventRoomLeft, domain.RoomPayload{Room: name})
}

func (h *Hub) deliver(o op) {
	if o.everyone {
		for client := range h.clients {
			h.send(client, o.frame)
		}
		return
	}

	members, ok := h.rooms[o.room]
	if !ok {
		return
	}
	if o.senderInRoom {
		if _, member := members[o.client]; !member {
			o.client.logger.Debug("dropping event for room the sender is not in",
				"event", o.event,
				"room", o.room,
			)
			return
		}
	}

	for client := range members {
		if o.excludeSender && client == o.client {
			continue
		}
		h.send(client, o.frame)
	}
}

// send queues a frame without blocking the loop. A connection whose buffer
// is full is disconnected.
func (h *Hub) send(client *Client, frame []byte) {
	select {
	case client.send <- frame:
	default:
		client.logger.Warn("client send buffer full, disconnecting")
		h.removeClient(client)
	}
}

func (h *Hub) reply(client *Client, event string, data any) {
	frame, err := encodeEvent(event, data)
	if err != nil {
		h.logger.Error("failed to encode reply", "event", event, "error", err)
		return
	}
	h.send(client, frame)
}

// addToRoom and removeFromRoom must be called with mu held.
func (h *Hub) addToRoom(client *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}
	client.rooms[room] = struct{}{}
}

func (h *Hub) removeFromRoom(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(client.rooms, room)
}

func (h *Hub) shutdown() {
	h.running.Store(false)
	close(h.done)

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]struct{})
	h.rooms = make(map[string]map[*Client]struct{})
	h.mu.Unlock()

	for _, client := range clients {
		client.closeSend()
	}
	h.logger.Info("websocket hub stopped", "closed_connections", len(clients))
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetRoomCount returns the number of non-empty rooms
func (h *Hub) GetRoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// GetClientsInRoom returns the number of connections in a room
func (h *Hub) GetClientsInRoom(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// IsUserConnected checks if a user has any active connections
func (h *Hub) IsUserConnected(userID uuid.UUID) bool {
	return h.GetClientsInRoom(domain.UserRoom(userID)) > 0
}
