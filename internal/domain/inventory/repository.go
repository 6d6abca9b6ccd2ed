package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/shared"
)

// InventoryFilter extends the shared filter with inventory-specific criteria
type InventoryFilter struct {
	shared.Filter
	ProductID  *uuid.UUID
	SKU        string
	LowStock   bool
	OutOfStock bool
}

// MovementFilter filters the stock movement ledger
type MovementFilter struct {
	shared.Filter
	InventoryItemID *uuid.UUID
	ProductID       *uuid.UUID
	ChangeType      *ChangeType
	ReferenceType   *ReferenceType
}

// Stats summarizes an organization's stock position
type Stats struct {
	TotalItems      int64 `json:"total_items"`
	TotalStock      int64 `json:"total_stock"`
	LowStockCount   int64 `json:"low_stock_count"`
	OutOfStockCount int64 `json:"out_of_stock_count"`
}

// InventoryItemRepository persists inventory items.
//
// InventoryItem is an aggregate root: stock counters only change through
// the aggregate's methods, and writes go through SaveWithLock so concurrent
// mutations are detected via the version column.
type InventoryItemRepository interface {
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*InventoryItem, error)
	FindBySKUForOrg(ctx context.Context, orgID uuid.UUID, sku string) (*InventoryItem, error)
	FindByProductForOrg(ctx context.Context, orgID, productID uuid.UUID) ([]InventoryItem, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter InventoryFilter) ([]InventoryItem, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter InventoryFilter) (int64, error)
	StatsForOrg(ctx context.Context, orgID uuid.UUID) (*Stats, error)

	Save(ctx context.Context, item *InventoryItem) error
	// SaveWithLock updates the item only if the stored version matches the
	// version the aggregate was loaded at. Returns a concurrency conflict
	// error when another writer got there first.
	SaveWithLock(ctx context.Context, item *InventoryItem) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// StockMovementRepository persists the append-only movement ledger
type StockMovementRepository interface {
	Append(ctx context.Context, movement *StockMovement) error
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter MovementFilter) ([]StockMovement, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter MovementFilter) (int64, error)
}
