package platform

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/platform"
)

// ConnectionResponse represents a platform connection in API responses.
// Credentials never appear here.
type ConnectionResponse struct {
	ID             uuid.UUID             `json:"id"`
	Platform       platform.Type         `json:"platform"`
	PlatformName   string                `json:"platform_name"`
	ShopName       string                `json:"shop_name"`
	Settings       platform.SyncSettings `json:"settings"`
	IsConnected    bool                  `json:"is_connected"`
	LastSyncAt     *time.Time            `json:"last_sync_at,omitempty"`
	TokenExpiresAt *time.Time            `json:"token_expires_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Version        int                   `json:"version"`
}

// ToConnectionResponse converts a domain connection to a response DTO
func ToConnectionResponse(c *platform.Connection) *ConnectionResponse {
	return &ConnectionResponse{
		ID:             c.ID,
		Platform:       c.Platform,
		PlatformName:   c.Platform.DisplayName(),
		ShopName:       c.ShopName,
		Settings:       c.Settings,
		IsConnected:    c.IsConnected,
		LastSyncAt:     c.LastSyncAt,
		TokenExpiresAt: c.TokenExpiresAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
}

// ConnectRequest carries a connect or reconnect attempt
type ConnectRequest struct {
	Platform    platform.Type          `json:"platform" binding:"required"`
	ShopName    string                 `json:"shop_name"`
	Credentials map[string]string      `json:"credentials" binding:"required"`
	Settings    *platform.SyncSettings `json:"settings"`
}

// UpdateSettingsRequest carries a partial settings update
type UpdateSettingsRequest struct {
	AutoSync            *bool `json:"auto_sync"`
	SyncIntervalMinutes *int  `json:"sync_interval_minutes"`
	SyncInventory       *bool `json:"sync_inventory"`
	SyncOrders          *bool `json:"sync_orders"`
	SyncPrices          *bool `json:"sync_prices"`
}

// Patch converts the request to a domain settings patch
func (r UpdateSettingsRequest) Patch() platform.SettingsPatch {
	return platform.SettingsPatch{
		AutoSync:            r.AutoSync,
		SyncIntervalMinutes: r.SyncIntervalMinutes,
		SyncInventory:       r.SyncInventory,
		SyncOrders:          r.SyncOrders,
		SyncPrices:          r.SyncPrices,
	}
}

// ConnectionListFilter represents filter options for the connection list
type ConnectionListFilter struct {
	Platform    *platform.Type `form:"platform"`
	IsConnected *bool          `form:"is_connected"`
	Page        int            `form:"page" binding:"min=0"`
	PageSize    int            `form:"page_size" binding:"min=0,max=100"`
	OrderBy     string         `form:"order_by"`
	OrderDir    string         `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
