package platform

import (
	"github.com/marketsync/backend/internal/domain/shared"
)

// Event types for the connection aggregate
const (
	EventTypeConnectionEstablished  = "platform.connection_established"
	EventTypeConnectionDisconnected = "platform.connection_disconnected"
	EventTypeSettingsUpdated        = "platform.settings_updated"
	EventTypeTokenRefreshed         = "platform.token_refreshed"
)

const aggregateType = "PlatformConnection"

// ConnectionEstablishedEvent is emitted on connect and reconnect
type ConnectionEstablishedEvent struct {
	shared.BaseDomainEvent
	Platform Type   `json:"platform"`
	ShopName string `json:"shop_name"`
}

// NewConnectionEstablishedEvent creates a connection established event
func NewConnectionEstablishedEvent(c *Connection) *ConnectionEstablishedEvent {
	return &ConnectionEstablishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConnectionEstablished, aggregateType, c.ID, c.OrgID),
		Platform:        c.Platform,
		ShopName:        c.ShopName,
	}
}

// ConnectionDisconnectedEvent is emitted when credentials are cleared
type ConnectionDisconnectedEvent struct {
	shared.BaseDomainEvent
	Platform Type `json:"platform"`
}

// NewConnectionDisconnectedEvent creates a disconnected event
func NewConnectionDisconnectedEvent(c *Connection) *ConnectionDisconnectedEvent {
	return &ConnectionDisconnectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConnectionDisconnected, aggregateType, c.ID, c.OrgID),
		Platform:        c.Platform,
	}
}

// SettingsUpdatedEvent is emitted when sync settings change
type SettingsUpdatedEvent struct {
	shared.BaseDomainEvent
	Platform Type         `json:"platform"`
	Settings SyncSettings `json:"settings"`
}

// NewSettingsUpdatedEvent creates a settings updated event
func NewSettingsUpdatedEvent(c *Connection) *SettingsUpdatedEvent {
	return &SettingsUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettingsUpdated, aggregateType, c.ID, c.OrgID),
		Platform:        c.Platform,
		Settings:        c.Settings,
	}
}

// TokenRefreshedEvent is emitted after a successful credential rotation
type TokenRefreshedEvent struct {
	shared.BaseDomainEvent
	Platform Type `json:"platform"`
}

// NewTokenRefreshedEvent creates a token refreshed event
func NewTokenRefreshedEvent(c *Connection) *TokenRefreshedEvent {
	return &TokenRefreshedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTokenRefreshed, aggregateType, c.ID, c.OrgID),
		Platform:        c.Platform,
	}
}
