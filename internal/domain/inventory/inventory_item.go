package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/shared"
)

// DefaultLowStockThreshold is applied when a new item does not specify one.
const DefaultLowStockThreshold = 10

// InventoryItem is the aggregate root for per-SKU stock.
//
// Stock is tracked as two counters: TotalStock is everything physically on
// hand, ReservedStock is the portion held for open orders. Available stock
// is always derived (total - reserved) and must never go negative.
type InventoryItem struct {
	shared.OrgAggregateRoot

	ProductID uuid.UUID  `gorm:"type:uuid;not null;index:idx_inventory_product"`
	VariantID *uuid.UUID `gorm:"type:uuid;index"`
	SKU       string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_inventory_org_sku,where:deleted_at IS NULL"`

	// ProductName and Price feed platform listing pushes
	ProductName string          `gorm:"type:varchar(300)"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	TotalStock    int64 `gorm:"not null;default:0"`
	ReservedStock int64 `gorm:"not null;default:0"`

	LowStockThreshold int64  `gorm:"not null;default:10"`
	WarehouseLocation string `gorm:"type:varchar(200)"`
}

// TableName returns the database table name
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// NewInventoryItem creates a new inventory item for a product SKU
func NewInventoryItem(orgID, productID uuid.UUID, sku string) (*InventoryItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product ID is required")
	}
	if sku == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "SKU is required")
	}

	item := &InventoryItem{
		OrgAggregateRoot:  shared.NewOrgAggregateRoot(orgID),
		ProductID:         productID,
		SKU:               sku,
		LowStockThreshold: DefaultLowStockThreshold,
	}
	return item, nil
}

// AvailableStock returns the stock not held by reservations
func (i *InventoryItem) AvailableStock() int64 {
	return i.TotalStock - i.ReservedStock
}

// IsLowStock reports whether available stock is at or below the threshold
// but not yet exhausted
func (i *InventoryItem) IsLowStock() bool {
	available := i.AvailableStock()
	return available > 0 && available <= i.LowStockThreshold
}

// IsOutOfStock reports whether no stock is available
func (i *InventoryItem) IsOutOfStock() bool {
	return i.AvailableStock() <= 0
}

// Adjust applies a signed stock delta and returns the movement record that
// must be persisted alongside the item. The adjustment is rejected when it
// would drive available stock below zero.
func (i *InventoryItem) Adjust(delta int64, changeType ChangeType, ref MovementRef, reason string, actorID *uuid.UUID) (*StockMovement, error) {
	if delta == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Adjustment quantity must be non-zero")
	}
	if !changeType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown stock change type")
	}

	previous := i.AvailableStock()
	next := previous + delta
	if next < 0 {
		return nil, shared.ErrInsufficientStock
	}

	i.TotalStock += delta
	i.touch(actorID)

	movement := newStockMovement(i, delta, previous, next, changeType, ref, reason, actorID)
	i.AddDomainEvent(NewStockAdjustedEvent(i, delta, previous, next, changeType))
	if i.IsOutOfStock() {
		i.AddDomainEvent(NewStockDepletedEvent(i))
	} else if i.IsLowStock() {
		i.AddDomainEvent(NewStockLowEvent(i))
	}
	return movement, nil
}

// Reserve holds quantity for an open order, reducing available stock
func (i *InventoryItem) Reserve(quantity int64, actorID *uuid.UUID) error {
	if quantity <= 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Reserve quantity must be positive")
	}
	if quantity > i.AvailableStock() {
		return shared.ErrInsufficientStock
	}

	i.ReservedStock += quantity
	i.touch(actorID)
	i.AddDomainEvent(NewStockReservedEvent(i, quantity))
	return nil
}

// Release returns reserved quantity to available stock. Releasing more than
// is currently reserved clamps to the reserved amount.
func (i *InventoryItem) Release(quantity int64, actorID *uuid.UUID) error {
	if quantity <= 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Release quantity must be positive")
	}
	if quantity > i.ReservedStock {
		quantity = i.ReservedStock
	}
	if quantity == 0 {
		return nil
	}

	i.ReservedStock -= quantity
	i.touch(actorID)
	i.AddDomainEvent(NewStockReleasedEvent(i, quantity))
	return nil
}

// SetListing updates the listing fields pushed to platforms
func (i *InventoryItem) SetListing(name string, price decimal.Decimal, actorID *uuid.UUID) error {
	if price.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Price cannot be negative")
	}
	if name != "" {
		i.ProductName = name
	}
	i.Price = price
	i.touch(actorID)
	return nil
}

// SetLowStockThreshold updates the low stock alert threshold
func (i *InventoryItem) SetLowStockThreshold(threshold int64, actorID *uuid.UUID) error {
	if threshold < 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Low stock threshold cannot be negative")
	}
	i.LowStockThreshold = threshold
	i.touch(actorID)
	return nil
}

// SetWarehouseLocation updates the warehouse location label
func (i *InventoryItem) SetWarehouseLocation(location string, actorID *uuid.UUID) {
	i.WarehouseLocation = location
	i.touch(actorID)
}

func (i *InventoryItem) touch(actorID *uuid.UUID) {
	i.UpdatedAt = time.Now()
	if actorID != nil {
		i.SetUpdatedBy(*actorID)
	}
	i.IncrementVersion()
}
