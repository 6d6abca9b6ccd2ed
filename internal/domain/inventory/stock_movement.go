package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/shared"
)

// ChangeType classifies why stock moved
type ChangeType string

const (
	ChangeTypeSale       ChangeType = "sale"
	ChangeTypeRestock    ChangeType = "restock"
	ChangeTypeAdjustment ChangeType = "adjustment"
	ChangeTypeReturn     ChangeType = "return"
	ChangeTypeDamage     ChangeType = "damage"
	ChangeTypeSync       ChangeType = "sync"
)

// IsValid checks if the change type is valid
func (t ChangeType) IsValid() bool {
	switch t {
	case ChangeTypeSale, ChangeTypeRestock, ChangeTypeAdjustment,
		ChangeTypeReturn, ChangeTypeDamage, ChangeTypeSync:
		return true
	}
	return false
}

// String returns the string representation
func (t ChangeType) String() string {
	return string(t)
}

// ReferenceType identifies what triggered a movement
type ReferenceType string

const (
	ReferenceTypeOrder  ReferenceType = "order"
	ReferenceTypeManual ReferenceType = "manual"
	ReferenceTypeSync   ReferenceType = "sync"
)

// IsValid checks if the reference type is valid
func (t ReferenceType) IsValid() bool {
	switch t {
	case ReferenceTypeOrder, ReferenceTypeManual, ReferenceTypeSync:
		return true
	}
	return false
}

// MovementRef points a movement back at its trigger
type MovementRef struct {
	Type ReferenceType
	ID   *uuid.UUID
}

// ManualRef is the reference used for operator-initiated adjustments
func ManualRef() MovementRef {
	return MovementRef{Type: ReferenceTypeManual}
}

// OrderRef references an order that moved stock
func OrderRef(orderID uuid.UUID) MovementRef {
	return MovementRef{Type: ReferenceTypeOrder, ID: &orderID}
}

// SyncRef references a sync job that moved stock
func SyncRef(jobID uuid.UUID) MovementRef {
	return MovementRef{Type: ReferenceTypeSync, ID: &jobID}
}

// StockMovement is an immutable ledger record of a stock change.
// Rows are append-only; corrections are new movements, never edits.
type StockMovement struct {
	shared.BaseEntity

	OrgID           uuid.UUID  `gorm:"type:uuid;not null;index:idx_movement_org_item"`
	InventoryItemID uuid.UUID  `gorm:"type:uuid;not null;index:idx_movement_org_item"`
	ProductID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	SKU             string     `gorm:"type:varchar(100);not null;index"`

	ChangeType       ChangeType `gorm:"type:varchar(20);not null;index"`
	ChangeQuantity   int64      `gorm:"not null"`
	PreviousQuantity int64      `gorm:"not null"`
	NewQuantity      int64      `gorm:"not null"`

	ReferenceType ReferenceType `gorm:"type:varchar(20);not null"`
	ReferenceID   *uuid.UUID    `gorm:"type:uuid;index"`
	Reason        string        `gorm:"type:varchar(500)"`

	ActorID    *uuid.UUID `gorm:"type:uuid;index"`
	RecordedAt time.Time  `gorm:"not null;index"`
}

// TableName returns the database table name
func (StockMovement) TableName() string {
	return "stock_movements"
}

func newStockMovement(item *InventoryItem, delta, previous, next int64, changeType ChangeType, ref MovementRef, reason string, actorID *uuid.UUID) *StockMovement {
	refType := ref.Type
	if refType == "" {
		refType = ReferenceTypeManual
	}
	return &StockMovement{
		BaseEntity:       shared.NewBaseEntity(),
		OrgID:            item.OrgID,
		InventoryItemID:  item.ID,
		ProductID:        item.ProductID,
		SKU:              item.SKU,
		ChangeType:       changeType,
		ChangeQuantity:   delta,
		PreviousQuantity: previous,
		NewQuantity:      next,
		ReferenceType:    refType,
		ReferenceID:      ref.ID,
		Reason:           reason,
		ActorID:          actorID,
		RecordedAt:       time.Now(),
	}
}

// IsIncrease reports whether the movement added stock
func (m *StockMovement) IsIncrease() bool {
	return m.ChangeQuantity > 0
}

// IsDecrease reports whether the movement removed stock
func (m *StockMovement) IsDecrease() bool {
	return m.ChangeQuantity < 0
}
