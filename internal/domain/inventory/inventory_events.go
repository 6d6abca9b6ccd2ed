package inventory

import (
	"github.com/marketsync/backend/internal/domain/shared"
)

// Event types for the inventory aggregate
const (
	EventTypeStockAdjusted = "inventory.stock_adjusted"
	EventTypeStockReserved = "inventory.stock_reserved"
	EventTypeStockReleased = "inventory.stock_released"
	EventTypeStockLow      = "inventory.stock_low"
	EventTypeStockDepleted = "inventory.stock_depleted"
)

const aggregateType = "InventoryItem"

// StockAdjustedEvent is emitted when total stock changes
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	SKU               string     `json:"sku"`
	ChangeQuantity    int64      `json:"change_quantity"`
	PreviousAvailable int64      `json:"previous_available"`
	NewAvailable      int64      `json:"new_available"`
	ChangeType        ChangeType `json:"change_type"`
}

// NewStockAdjustedEvent creates a stock adjusted event
func NewStockAdjustedEvent(item *InventoryItem, delta, previous, next int64, changeType ChangeType) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeStockAdjusted, aggregateType, item.ID, item.OrgID),
		SKU:               item.SKU,
		ChangeQuantity:    delta,
		PreviousAvailable: previous,
		NewAvailable:      next,
		ChangeType:        changeType,
	}
}

// StockReservedEvent is emitted when stock is held for an order
type StockReservedEvent struct {
	shared.BaseDomainEvent
	SKU      string `json:"sku"`
	Quantity int64  `json:"quantity"`
	Reserved int64  `json:"reserved"`
}

// NewStockReservedEvent creates a stock reserved event
func NewStockReservedEvent(item *InventoryItem, quantity int64) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, aggregateType, item.ID, item.OrgID),
		SKU:             item.SKU,
		Quantity:        quantity,
		Reserved:        item.ReservedStock,
	}
}

// StockReleasedEvent is emitted when a reservation is returned to stock
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	SKU      string `json:"sku"`
	Quantity int64  `json:"quantity"`
	Reserved int64  `json:"reserved"`
}

// NewStockReleasedEvent creates a stock released event
func NewStockReleasedEvent(item *InventoryItem, quantity int64) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReleased, aggregateType, item.ID, item.OrgID),
		SKU:             item.SKU,
		Quantity:        quantity,
		Reserved:        item.ReservedStock,
	}
}

// StockLowEvent is emitted when available stock drops to the threshold
type StockLowEvent struct {
	shared.BaseDomainEvent
	SKU       string `json:"sku"`
	Available int64  `json:"available"`
	Threshold int64  `json:"threshold"`
}

// NewStockLowEvent creates a stock low event
func NewStockLowEvent(item *InventoryItem) *StockLowEvent {
	return &StockLowEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockLow, aggregateType, item.ID, item.OrgID),
		SKU:             item.SKU,
		Available:       item.AvailableStock(),
		Threshold:       item.LowStockThreshold,
	}
}

// StockDepletedEvent is emitted when available stock reaches zero
type StockDepletedEvent struct {
	shared.BaseDomainEvent
	SKU string `json:"sku"`
}

// NewStockDepletedEvent creates a stock depleted event
func NewStockDepletedEvent(item *InventoryItem) *StockDepletedEvent {
	return &StockDepletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDepleted, aggregateType, item.ID, item.OrgID),
		SKU:             item.SKU,
	}
}
