package order

import (
	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/shared"
)

// Event types for the order aggregate
const (
	EventTypeOrderIngested        = "order.ingested"
	EventTypeStatusChanged        = "order.status_changed"
	EventTypePaymentStatusChanged = "order.payment_status_changed"
)

const aggregateType = "Order"

// OrderIngestedEvent is emitted when a platform order is first imported
type OrderIngestedEvent struct {
	shared.BaseDomainEvent
	Platform        platform.Type `json:"platform"`
	PlatformOrderID string        `json:"platform_order_id"`
	OrderNumber     string        `json:"order_number"`
}

// NewOrderIngestedEvent creates an order ingested event
func NewOrderIngestedEvent(o *Order) *OrderIngestedEvent {
	return &OrderIngestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderIngested, aggregateType, o.ID, o.OrgID),
		Platform:        o.Platform,
		PlatformOrderID: o.PlatformOrderID,
		OrderNumber:     o.OrderNumber,
	}
}

// StatusChangedEvent is emitted on every state machine transition
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	Platform   platform.Type `json:"platform"`
	FromStatus Status        `json:"from_status"`
	ToStatus   Status        `json:"to_status"`
}

// NewStatusChangedEvent creates a status changed event
func NewStatusChangedEvent(o *Order, from, to Status) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStatusChanged, aggregateType, o.ID, o.OrgID),
		Platform:        o.Platform,
		FromStatus:      from,
		ToStatus:        to,
	}
}

// PaymentStatusChangedEvent is emitted when the platform payment state moves
type PaymentStatusChangedEvent struct {
	shared.BaseDomainEvent
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// NewPaymentStatusChangedEvent creates a payment status changed event
func NewPaymentStatusChangedEvent(o *Order) *PaymentStatusChangedEvent {
	return &PaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentStatusChanged, aggregateType, o.ID, o.OrgID),
		PaymentStatus:   o.PaymentStatus,
	}
}
