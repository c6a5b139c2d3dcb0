package websocket

import (
	"github.com/google/uuid"

	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// NopPublisher discards every push. It stands in for the hub when real-time
// delivery is switched off.
type NopPublisher struct{}

var _ ports.RealtimePublisher = NopPublisher{}

func (NopPublisher) PushToTenant(uuid.UUID, string, any) {}

func (NopPublisher) PushToUser(uuid.UUID, string, any) {}

func (NopPublisher) PushToAll(string, any) {}
