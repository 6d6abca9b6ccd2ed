package platform

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/shared"
)

// MinSyncIntervalMinutes is the smallest auto-sync interval a connection may use
const MinSyncIntervalMinutes = 5

// Credentials holds the platform API credentials for a connection.
// They are never written to the database in the clear; the persistence
// layer seals them into CredentialBlob before saving.
type Credentials map[string]string

// IsEmpty reports whether no credentials are present
func (c Credentials) IsEmpty() bool {
	return len(c) == 0
}

// SyncSettings controls what a connection synchronizes and how often
type SyncSettings struct {
	AutoSync            bool `json:"auto_sync"`
	SyncIntervalMinutes int  `json:"sync_interval_minutes" validate:"min=5"`
	SyncInventory       bool `json:"sync_inventory"`
	SyncOrders          bool `json:"sync_orders"`
	SyncPrices          bool `json:"sync_prices"`
}

// DefaultSyncSettings returns the settings applied to new connections
func DefaultSyncSettings() SyncSettings {
	return SyncSettings{
		AutoSync:            false,
		SyncIntervalMinutes: 60,
		SyncInventory:       true,
		SyncOrders:          true,
		SyncPrices:          false,
	}
}

// Validate checks settings invariants
func (s SyncSettings) Validate() error {
	if s.SyncIntervalMinutes < MinSyncIntervalMinutes {
		return shared.NewDomainError("VALIDATION_ERROR", "Sync interval must be at least 5 minutes")
	}
	return nil
}

// SettingsPatch carries a partial settings update. Nil fields keep the
// stored value.
type SettingsPatch struct {
	AutoSync            *bool `json:"auto_sync"`
	SyncIntervalMinutes *int  `json:"sync_interval_minutes"`
	SyncInventory       *bool `json:"sync_inventory"`
	SyncOrders          *bool `json:"sync_orders"`
	SyncPrices          *bool `json:"sync_prices"`
}

// Apply merges the patch onto existing settings
func (p SettingsPatch) Apply(s SyncSettings) SyncSettings {
	if p.AutoSync != nil {
		s.AutoSync = *p.AutoSync
	}
	if p.SyncIntervalMinutes != nil {
		s.SyncIntervalMinutes = *p.SyncIntervalMinutes
	}
	if p.SyncInventory != nil {
		s.SyncInventory = *p.SyncInventory
	}
	if p.SyncOrders != nil {
		s.SyncOrders = *p.SyncOrders
	}
	if p.SyncPrices != nil {
		s.SyncPrices = *p.SyncPrices
	}
	return s
}

// Connection is the aggregate root for a marketplace platform connection.
// One live connection exists per (org, platform); removed connections are
// soft-deleted so a platform can be reconnected later.
type Connection struct {
	shared.OrgAggregateRoot

	Platform Type   `gorm:"type:varchar(20);not null;uniqueIndex:idx_connection_org_platform,where:deleted_at IS NULL"`
	ShopName string `gorm:"type:varchar(200)"`
	ShopID   string `gorm:"type:varchar(100)"`

	// Credentials lives only in memory; CredentialBlob is the sealed form.
	Credentials    Credentials `gorm:"-"`
	CredentialBlob []byte      `gorm:"type:bytea"`

	Settings SyncSettings `gorm:"serializer:json;not null"`

	IsConnected    bool       `gorm:"not null;default:false"`
	LastSyncAt     *time.Time `gorm:"index"`
	TokenExpiresAt *time.Time
}

// TableName returns the database table name
func (Connection) TableName() string {
	return "platform_connections"
}

// NewConnection creates a connected platform connection. Callers must have
// verified the credentials against the platform first.
func NewConnection(orgID uuid.UUID, platformType Type, shopName string, creds Credentials, settings SyncSettings, actorID *uuid.UUID) (*Connection, error) {
	if !platformType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unsupported platform type")
	}
	if creds.IsEmpty() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Credentials are required")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	conn := &Connection{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Platform:         platformType,
		ShopName:         shopName,
		Credentials:      creds,
		Settings:         settings,
		IsConnected:      true,
	}
	if actorID != nil {
		conn.SetCreatedBy(*actorID)
	}
	conn.AddDomainEvent(NewConnectionEstablishedEvent(conn))
	return conn, nil
}

// Reconnect replaces the credentials on an existing connection and marks it
// connected again. Settings are left untouched.
func (c *Connection) Reconnect(shopName string, creds Credentials, actorID *uuid.UUID) error {
	if creds.IsEmpty() {
		return shared.NewDomainError("VALIDATION_ERROR", "Credentials are required")
	}
	c.Credentials = creds
	if shopName != "" {
		c.ShopName = shopName
	}
	c.IsConnected = true
	c.TokenExpiresAt = nil
	c.touch(actorID)
	c.AddDomainEvent(NewConnectionEstablishedEvent(c))
	return nil
}

// Disconnect clears the stored credentials but keeps the sync settings so a
// later reconnect resumes with the same configuration.
func (c *Connection) Disconnect(actorID *uuid.UUID) {
	c.Credentials = nil
	c.CredentialBlob = nil
	c.IsConnected = false
	c.TokenExpiresAt = nil
	c.touch(actorID)
	c.AddDomainEvent(NewConnectionDisconnectedEvent(c))
}

// UpdateSettings merges a partial settings update
func (c *Connection) UpdateSettings(patch SettingsPatch, actorID *uuid.UUID) error {
	merged := patch.Apply(c.Settings)
	if err := merged.Validate(); err != nil {
		return err
	}
	c.Settings = merged
	c.touch(actorID)
	c.AddDomainEvent(NewSettingsUpdatedEvent(c))
	return nil
}

// RotateCredentials stores refreshed credentials after a token exchange
func (c *Connection) RotateCredentials(creds Credentials, expiresAt *time.Time) error {
	if creds.IsEmpty() {
		return shared.NewDomainError("VALIDATION_ERROR", "Credentials are required")
	}
	c.Credentials = creds
	c.TokenExpiresAt = expiresAt
	c.touch(nil)
	c.AddDomainEvent(NewTokenRefreshedEvent(c))
	return nil
}

// MarkSynced records a successful sync completion time
func (c *Connection) MarkSynced(at time.Time) {
	c.LastSyncAt = &at
	c.touch(nil)
}

// CanSyncInventory reports whether inventory pushes should include this connection
func (c *Connection) CanSyncInventory() bool {
	return c.IsConnected && c.Settings.SyncInventory
}

// CanSyncOrders reports whether order pulls should include this connection
func (c *Connection) CanSyncOrders() bool {
	return c.IsConnected && c.Settings.SyncOrders
}

func (c *Connection) touch(actorID *uuid.UUID) {
	c.UpdatedAt = time.Now()
	if actorID != nil {
		c.SetUpdatedBy(*actorID)
	}
	c.IncrementVersion()
}
