package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/inventory"
)

// ItemResponse represents an inventory item in API responses
type ItemResponse struct {
	ID                uuid.UUID  `json:"id"`
	ProductID         uuid.UUID  `json:"product_id"`
	VariantID         *uuid.UUID `json:"variant_id,omitempty"`
	SKU               string     `json:"sku"`
	ProductName       string     `json:"product_name,omitempty"`
	Price             decimal.Decimal `json:"price"`
	TotalStock        int64      `json:"total_stock"`
	ReservedStock     int64      `json:"reserved_stock"`
	AvailableStock    int64      `json:"available_stock"`
	LowStockThreshold int64      `json:"low_stock_threshold"`
	WarehouseLocation string     `json:"warehouse_location,omitempty"`
	IsLowStock        bool       `json:"is_low_stock"`
	IsOutOfStock      bool       `json:"is_out_of_stock"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Version           int        `json:"version"`
}

// ToItemResponse converts a domain item to a response DTO
func ToItemResponse(item *inventory.InventoryItem) *ItemResponse {
	return &ItemResponse{
		ID:                item.ID,
		ProductID:         item.ProductID,
		VariantID:         item.VariantID,
		SKU:               item.SKU,
		ProductName:       item.ProductName,
		Price:             item.Price,
		TotalStock:        item.TotalStock,
		ReservedStock:     item.ReservedStock,
		AvailableStock:    item.AvailableStock(),
		LowStockThreshold: item.LowStockThreshold,
		WarehouseLocation: item.WarehouseLocation,
		IsLowStock:        item.IsLowStock(),
		IsOutOfStock:      item.IsOutOfStock(),
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
		Version:           item.Version,
	}
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID               uuid.UUID  `json:"id"`
	InventoryItemID  uuid.UUID  `json:"inventory_item_id"`
	ProductID        uuid.UUID  `json:"product_id"`
	SKU              string     `json:"sku"`
	ChangeType       string     `json:"change_type"`
	ChangeQuantity   int64      `json:"change_quantity"`
	PreviousQuantity int64      `json:"previous_quantity"`
	NewQuantity      int64      `json:"new_quantity"`
	ReferenceType    string     `json:"reference_type"`
	ReferenceID      *uuid.UUID `json:"reference_id,omitempty"`
	Reason           string     `json:"reason,omitempty"`
	ActorID          *uuid.UUID `json:"actor_id,omitempty"`
	RecordedAt       time.Time  `json:"recorded_at"`
}

// ToMovementResponse converts a stock movement to a response DTO
func ToMovementResponse(m *inventory.StockMovement) *MovementResponse {
	return &MovementResponse{
		ID:               m.ID,
		InventoryItemID:  m.InventoryItemID,
		ProductID:        m.ProductID,
		SKU:              m.SKU,
		ChangeType:       m.ChangeType.String(),
		ChangeQuantity:   m.ChangeQuantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		ReferenceType:    string(m.ReferenceType),
		ReferenceID:      m.ReferenceID,
		Reason:           m.Reason,
		ActorID:          m.ActorID,
		RecordedAt:       m.RecordedAt,
	}
}

// CreateItemRequest registers stock tracking for a product SKU
type CreateItemRequest struct {
	ProductID         uuid.UUID  `json:"product_id" binding:"required"`
	VariantID         *uuid.UUID `json:"variant_id"`
	SKU               string     `json:"sku" binding:"required"`
	ProductName       string     `json:"product_name"`
	Price             *decimal.Decimal `json:"price"`
	InitialStock      int64      `json:"initial_stock" binding:"min=0"`
	LowStockThreshold *int64     `json:"low_stock_threshold"`
	WarehouseLocation string     `json:"warehouse_location"`
}

// UpdateListingRequest changes the listing fields pushed to platforms
type UpdateListingRequest struct {
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
}

// AdjustStockRequest applies a signed stock delta
type AdjustStockRequest struct {
	Delta      int64  `json:"delta" binding:"required"`
	ChangeType string `json:"change_type" binding:"required,oneof=sale restock adjustment return damage sync"`
	Reason     string `json:"reason"`
}

// ReserveStockRequest holds stock for an order
type ReserveStockRequest struct {
	Quantity int64      `json:"quantity" binding:"required,gt=0"`
	OrderID  *uuid.UUID `json:"order_id"`
}

// ReleaseStockRequest returns reserved stock
type ReleaseStockRequest struct {
	Quantity int64      `json:"quantity" binding:"required,gt=0"`
	OrderID  *uuid.UUID `json:"order_id"`
}

// UpdateThresholdRequest changes the low stock threshold
type UpdateThresholdRequest struct {
	LowStockThreshold int64 `json:"low_stock_threshold" binding:"min=0"`
}

// UpdateLocationRequest changes the warehouse location label
type UpdateLocationRequest struct {
	WarehouseLocation string `json:"warehouse_location"`
}

// ItemListFilter represents filter options for the inventory list
type ItemListFilter struct {
	Search     string     `form:"search"`
	ProductID  *uuid.UUID `form:"product_id"`
	SKU        string     `form:"sku"`
	LowStock   bool       `form:"low_stock"`
	OutOfStock bool       `form:"out_of_stock"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MovementListFilter represents filter options for the movement ledger
type MovementListFilter struct {
	InventoryItemID *uuid.UUID `form:"inventory_item_id"`
	ProductID       *uuid.UUID `form:"product_id"`
	ChangeType      string     `form:"change_type" binding:"omitempty,oneof=sale restock adjustment return damage sync"`
	ReferenceType   string     `form:"reference_type" binding:"omitempty,oneof=order manual sync"`
	Page            int        `form:"page" binding:"min=0"`
	PageSize        int        `form:"page_size" binding:"min=0,max=100"`
}
