package domain

import "encoding/json"

// Inbound events a client may emit.
const (
	EventTaskUpdate     = "task:update"
	EventCustomerUpdate = "customer:update"
	EventSupportNew     = "support:new"
	EventInvoiceUpdate  = "invoice:update"
	EventTypingStart    = "typing:start"
	EventTypingStop     = "typing:stop"
	EventRoomJoin       = "room:join"
	EventRoomLeave      = "room:leave"
	EventPing           = "ping"
)

// Outbound events the hub delivers.
const (
	EventTaskUpdated     = "task:updated"
	EventCustomerUpdated = "customer:updated"
	EventCustomerDeleted = "customer:deleted"
	EventSupportCreated  = "support:created"
	EventInvoiceUpdated  = "invoice:updated"
	EventTypingStarted   = "typing:started"
	EventTypingStopped   = "typing:stopped"
	EventRoomJoined      = "room:joined"
	EventRoomLeft        = "room:left"
	EventPong            = "pong"
	EventError           = "error"
	EventNotification    = "notification"
	EventAnnouncement    = "announcement"
)

// tenantRelays maps client intents to the notice broadcast to the rest of the
// sender's tenant.
var tenantRelays = map[string]string{
	EventTaskUpdate:     EventTaskUpdated,
	EventCustomerUpdate: EventCustomerUpdated,
	EventSupportNew:     EventSupportCreated,
	EventInvoiceUpdate:  EventInvoiceUpdated,
}

// typingRelays maps typing intents to the notice broadcast to the named room.
var typingRelays = map[string]string{
	EventTypingStart: EventTypingStarted,
	EventTypingStop:  EventTypingStopped,
}

// TenantRelay returns the broadcast name for an inbound tenant-scoped event.
func TenantRelay(inbound string) (string, bool) {
	out, ok := tenantRelays[inbound]
	return out, ok
}

// TypingRelay returns the broadcast name for an inbound typing event.
func TypingRelay(inbound string) (string, bool) {
	out, ok := typingRelays[inbound]
	return out, ok
}

// Envelope is the frame exchanged over the socket in both directions.
// Data is opaque to the router.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomPayload is the payload of room:join, room:leave and typing events.
type RoomPayload struct {
	Room string `json:"room"`
}

// TypingNotice is broadcast as typing:started / typing:stopped.
type TypingNotice struct {
	UserID string `json:"userId"`
	Room   string `json:"room"`
}

// ErrorPayload is sent to a single client when one of its requests is refused.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
