package platform

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCredentials() Credentials {
	return Credentials{"api_key": "key", "api_secret": "secret"}
}

func createTestConnection(t *testing.T) *Connection {
	t.Helper()
	conn, err := NewConnection(uuid.New(), TypeShopee, "My Shop", testCredentials(), DefaultSyncSettings(), nil)
	require.NoError(t, err)
	conn.ClearDomainEvents()
	return conn
}

func TestType_IsValid(t *testing.T) {
	for _, pt := range AllTypes() {
		assert.True(t, pt.IsValid(), pt.String())
	}
	assert.False(t, Type("amazon").IsValid())
	assert.False(t, Type("").IsValid())
}

func TestNewConnection(t *testing.T) {
	orgID := uuid.New()

	t.Run("creates connected connection", func(t *testing.T) {
		conn, err := NewConnection(orgID, TypeMomo, "Shop", testCredentials(), DefaultSyncSettings(), nil)

		require.NoError(t, err)
		assert.True(t, conn.IsConnected)
		assert.Equal(t, orgID, conn.OrgID)
		assert.Equal(t, TypeMomo, conn.Platform)
		assert.Nil(t, conn.LastSyncAt)

		events := conn.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeConnectionEstablished, events[0].EventType())
	})

	t.Run("rejects unsupported platform", func(t *testing.T) {
		_, err := NewConnection(orgID, Type("ebay"), "Shop", testCredentials(), DefaultSyncSettings(), nil)
		require.Error(t, err)
	})

	t.Run("rejects empty credentials", func(t *testing.T) {
		_, err := NewConnection(orgID, TypeShopee, "Shop", Credentials{}, DefaultSyncSettings(), nil)
		require.Error(t, err)
	})

	t.Run("rejects interval below minimum", func(t *testing.T) {
		settings := DefaultSyncSettings()
		settings.SyncIntervalMinutes = 1

		_, err := NewConnection(orgID, TypeShopee, "Shop", testCredentials(), settings, nil)
		require.Error(t, err)
	})
}

func TestConnection_Disconnect(t *testing.T) {
	conn := createTestConnection(t)
	settings := conn.Settings

	conn.Disconnect(nil)

	assert.False(t, conn.IsConnected)
	assert.Nil(t, conn.Credentials)
	assert.Nil(t, conn.CredentialBlob)
	assert.Equal(t, settings, conn.Settings, "settings survive disconnect")

	events := conn.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeConnectionDisconnected, events[0].EventType())
}

func TestConnection_Reconnect(t *testing.T) {
	conn := createTestConnection(t)
	conn.Disconnect(nil)
	conn.ClearDomainEvents()

	err := conn.Reconnect("Renamed Shop", Credentials{"api_key": "new"}, nil)

	require.NoError(t, err)
	assert.True(t, conn.IsConnected)
	assert.Equal(t, "Renamed Shop", conn.ShopName)
	assert.Equal(t, "new", conn.Credentials["api_key"])
}

func TestConnection_UpdateSettings(t *testing.T) {
	t.Run("merges only provided fields", func(t *testing.T) {
		conn := createTestConnection(t)
		auto := true
		interval := 30

		err := conn.UpdateSettings(SettingsPatch{AutoSync: &auto, SyncIntervalMinutes: &interval}, nil)

		require.NoError(t, err)
		assert.True(t, conn.Settings.AutoSync)
		assert.Equal(t, 30, conn.Settings.SyncIntervalMinutes)
		assert.True(t, conn.Settings.SyncInventory, "untouched field keeps value")
		assert.True(t, conn.Settings.SyncOrders, "untouched field keeps value")
	})

	t.Run("rejects merged settings that violate invariants", func(t *testing.T) {
		conn := createTestConnection(t)
		interval := 2

		err := conn.UpdateSettings(SettingsPatch{SyncIntervalMinutes: &interval}, nil)

		require.Error(t, err)
		assert.Equal(t, 60, conn.Settings.SyncIntervalMinutes, "settings unchanged on failure")
	})
}

func TestConnection_RotateCredentials(t *testing.T) {
	conn := createTestConnection(t)
	expires := time.Now().Add(2 * time.Hour)

	err := conn.RotateCredentials(Credentials{"access_token": "rotated"}, &expires)

	require.NoError(t, err)
	assert.Equal(t, "rotated", conn.Credentials["access_token"])
	require.NotNil(t, conn.TokenExpiresAt)
	assert.WithinDuration(t, expires, *conn.TokenExpiresAt, time.Second)
}

func TestConnection_MarkSynced(t *testing.T) {
	conn := createTestConnection(t)
	now := time.Now()

	conn.MarkSynced(now)

	require.NotNil(t, conn.LastSyncAt)
	assert.WithinDuration(t, now, *conn.LastSyncAt, time.Second)
}

func TestConnection_SyncEligibility(t *testing.T) {
	conn := createTestConnection(t)
	assert.True(t, conn.CanSyncInventory())
	assert.True(t, conn.CanSyncOrders())

	off := false
	require.NoError(t, conn.UpdateSettings(SettingsPatch{SyncOrders: &off}, nil))
	assert.False(t, conn.CanSyncOrders())
	assert.True(t, conn.CanSyncInventory())

	conn.Disconnect(nil)
	assert.False(t, conn.CanSyncInventory())
	assert.False(t, conn.CanSyncOrders())
}

func TestDefaultOrderWindow(t *testing.T) {
	now := time.Now()
	window := DefaultOrderWindow(now)

	assert.Equal(t, now, window.Until)
	assert.WithinDuration(t, now.AddDate(0, 0, -7), window.Since, time.Second)
}
