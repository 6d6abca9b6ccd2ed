package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsync/backend/internal/domain/shared"
)

func createTestItem(t *testing.T) *InventoryItem {
	t.Helper()
	item, err := NewInventoryItem(uuid.New(), uuid.New(), "SKU-001")
	require.NoError(t, err)
	return item
}

func TestNewInventoryItem(t *testing.T) {
	orgID := uuid.New()
	productID := uuid.New()

	t.Run("creates item with defaults", func(t *testing.T) {
		item, err := NewInventoryItem(orgID, productID, "SKU-001")

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, item.ID)
		assert.Equal(t, orgID, item.OrgID)
		assert.Equal(t, productID, item.ProductID)
		assert.Equal(t, int64(0), item.TotalStock)
		assert.Equal(t, int64(0), item.ReservedStock)
		assert.Equal(t, int64(DefaultLowStockThreshold), item.LowStockThreshold)
		assert.Equal(t, 1, item.Version)
	})

	t.Run("fails with nil product ID", func(t *testing.T) {
		item, err := NewInventoryItem(orgID, uuid.Nil, "SKU-001")

		require.Error(t, err)
		assert.Nil(t, item)
	})

	t.Run("fails with empty SKU", func(t *testing.T) {
		item, err := NewInventoryItem(orgID, productID, "")

		require.Error(t, err)
		assert.Nil(t, item)
	})
}

func TestInventoryItem_Adjust(t *testing.T) {
	t.Run("positive delta increases total stock", func(t *testing.T) {
		item := createTestItem(t)

		movement, err := item.Adjust(50, ChangeTypeRestock, ManualRef(), "initial stock", nil)

		require.NoError(t, err)
		assert.Equal(t, int64(50), item.TotalStock)
		assert.Equal(t, int64(50), item.AvailableStock())
		assert.Equal(t, int64(0), movement.PreviousQuantity)
		assert.Equal(t, int64(50), movement.NewQuantity)
		assert.Equal(t, int64(50), movement.ChangeQuantity)
		assert.True(t, movement.IsIncrease())
		assert.Equal(t, 2, item.Version)
	})

	t.Run("negative delta decreases total stock", func(t *testing.T) {
		item := createTestItem(t)
		_, err := item.Adjust(50, ChangeTypeRestock, ManualRef(), "", nil)
		require.NoError(t, err)

		movement, err := item.Adjust(-20, ChangeTypeSale, OrderRef(uuid.New()), "", nil)

		require.NoError(t, err)
		assert.Equal(t, int64(30), item.TotalStock)
		assert.Equal(t, int64(50), movement.PreviousQuantity)
		assert.Equal(t, int64(30), movement.NewQuantity)
		assert.True(t, movement.IsDecrease())
	})

	t.Run("rejects adjustment that would make available negative", func(t *testing.T) {
		item := createTestItem(t)
		_, err := item.Adjust(10, ChangeTypeRestock, ManualRef(), "", nil)
		require.NoError(t, err)

		_, err = item.Adjust(-11, ChangeTypeSale, ManualRef(), "", nil)

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, int64(10), item.TotalStock)
	})

	t.Run("reserved stock counts against adjustable available", func(t *testing.T) {
		item := createTestItem(t)
		_, err := item.Adjust(10, ChangeTypeRestock, ManualRef(), "", nil)
		require.NoError(t, err)
		require.NoError(t, item.Reserve(6, nil))

		// available is 4, so a -5 would leave -1 available
		_, err = item.Adjust(-5, ChangeTypeDamage, ManualRef(), "", nil)

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("rejects zero delta", func(t *testing.T) {
		item := createTestItem(t)

		_, err := item.Adjust(0, ChangeTypeAdjustment, ManualRef(), "", nil)

		require.Error(t, err)
	})

	t.Run("rejects unknown change type", func(t *testing.T) {
		item := createTestItem(t)

		_, err := item.Adjust(5, ChangeType("teleport"), ManualRef(), "", nil)

		require.Error(t, err)
	})

	t.Run("emits stock adjusted event", func(t *testing.T) {
		item := createTestItem(t)

		_, err := item.Adjust(25, ChangeTypeRestock, ManualRef(), "", nil)

		require.NoError(t, err)
		events := item.GetDomainEvents()
		require.NotEmpty(t, events)
		assert.Equal(t, EventTypeStockAdjusted, events[0].EventType())
	})

	t.Run("emits depleted event when stock hits zero", func(t *testing.T) {
		item := createTestItem(t)
		_, err := item.Adjust(5, ChangeTypeRestock, ManualRef(), "", nil)
		require.NoError(t, err)
		item.ClearDomainEvents()

		_, err = item.Adjust(-5, ChangeTypeSale, ManualRef(), "", nil)

		require.NoError(t, err)
		events := item.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypeStockDepleted, events[1].EventType())
	})

	t.Run("emits low stock event at threshold", func(t *testing.T) {
		item := createTestItem(t)
		require.NoError(t, item.SetLowStockThreshold(5, nil))
		_, err := item.Adjust(20, ChangeTypeRestock, ManualRef(), "", nil)
		require.NoError(t, err)
		item.ClearDomainEvents()

		_, err = item.Adjust(-16, ChangeTypeSale, ManualRef(), "", nil)

		require.NoError(t, err)
		events := item.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypeStockLow, events[1].EventType())
	})
}

func TestInventoryItem_Reserve(t *testing.T) {
	t.Run("moves stock from available to reserved", func(t *testing.T) {
		item := createTestItem(t)
		_, err := item.Adjust(100, ChangeTypeRestock, ManualRef(), "", nil)
		require.NoError(t, err)

		err = item.Reserve(30, nil)

		require.NoError(t, err)
		assert.Equal(t, int64(100), item.TotalStock)
		assert.Equal(t, int64(30), item.ReservedStock)
		assert.Equal(t, int64(70), item.AvailableStock())
	})

	t.Run("fails when quantity exceeds available", func(t *testing.T) {
		item := createTestItem(t)
		_, err := item.Adjust(10, ChangeTypeRestock, ManualRef(), "", nil)
		require.NoError(t, err)

		err = item.Reserve(11, nil)

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, int64(0), item.ReservedStock)
	})

	t.Run("fails with non-positive quantity", func(t *testing.T) {
		item := createTestItem(t)

		assert.Error(t, item.Reserve(0, nil))
		assert.Error(t, item.Reserve(-5, nil))
	})
}

func TestInventoryItem_Release(t *testing.T) {
	t.Run("returns reserved stock to available", func(t *testing.T) {
		item := createTestItem(t)
		_, err := item.Adjust(100, ChangeTypeRestock, ManualRef(), "", nil)
		require.NoError(t, err)
		require.NoError(t, item.Reserve(40, nil))

		err = item.Release(25, nil)

		require.NoError(t, err)
		assert.Equal(t, int64(15), item.ReservedStock)
		assert.Equal(t, int64(85), item.AvailableStock())
	})

	t.Run("clamps release to currently reserved", func(t *testing.T) {
		item := createTestItem(t)
		_, err := item.Adjust(100, ChangeTypeRestock, ManualRef(), "", nil)
		require.NoError(t, err)
		require.NoError(t, item.Reserve(10, nil))

		err = item.Release(50, nil)

		require.NoError(t, err)
		assert.Equal(t, int64(0), item.ReservedStock)
		assert.Equal(t, int64(100), item.AvailableStock())
	})

	t.Run("release with nothing reserved is a no-op", func(t *testing.T) {
		item := createTestItem(t)
		before := item.Version

		err := item.Release(5, nil)

		require.NoError(t, err)
		assert.Equal(t, before, item.Version)
	})
}

func TestInventoryItem_StockFlags(t *testing.T) {
	item := createTestItem(t)
	require.NoError(t, item.SetLowStockThreshold(10, nil))

	assert.True(t, item.IsOutOfStock())
	assert.False(t, item.IsLowStock())

	_, err := item.Adjust(8, ChangeTypeRestock, ManualRef(), "", nil)
	require.NoError(t, err)
	assert.True(t, item.IsLowStock())
	assert.False(t, item.IsOutOfStock())

	_, err = item.Adjust(50, ChangeTypeRestock, ManualRef(), "", nil)
	require.NoError(t, err)
	assert.False(t, item.IsLowStock())
}

func TestInventoryItem_SetLowStockThreshold(t *testing.T) {
	item := createTestItem(t)

	require.NoError(t, item.SetLowStockThreshold(25, nil))
	assert.Equal(t, int64(25), item.LowStockThreshold)

	assert.Error(t, item.SetLowStockThreshold(-1, nil))
}

func TestChangeType_IsValid(t *testing.T) {
	valid := []ChangeType{
		ChangeTypeSale, ChangeTypeRestock, ChangeTypeAdjustment,
		ChangeTypeReturn, ChangeTypeDamage, ChangeTypeSync,
	}
	for _, ct := range valid {
		assert.True(t, ct.IsValid(), ct.String())
	}
	assert.False(t, ChangeType("unknown").IsValid())
}

func TestStockMovement_ActorAndReference(t *testing.T) {
	item := createTestItem(t)
	actor := uuid.New()
	orderID := uuid.New()
	_, err := item.Adjust(10, ChangeTypeRestock, ManualRef(), "", nil)
	require.NoError(t, err)

	movement, err := item.Adjust(-3, ChangeTypeSale, OrderRef(orderID), "order shipped", &actor)

	require.NoError(t, err)
	require.NotNil(t, movement.ActorID)
	assert.Equal(t, actor, *movement.ActorID)
	assert.Equal(t, ReferenceTypeOrder, movement.ReferenceType)
	require.NotNil(t, movement.ReferenceID)
	assert.Equal(t, orderID, *movement.ReferenceID)
	assert.Equal(t, "order shipped", movement.Reason)
	assert.Equal(t, item.SKU, movement.SKU)
}
