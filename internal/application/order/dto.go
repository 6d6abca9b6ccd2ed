package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/platform"
)

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID             `json:"id"`
	Platform        platform.Type         `json:"platform"`
	PlatformOrderID string                `json:"platform_order_id"`
	OrderNumber     string                `json:"order_number"`
	CustomerName    string                `json:"customer_name"`
	CustomerEmail   string                `json:"customer_email,omitempty"`
	CustomerPhone   string                `json:"customer_phone,omitempty"`
	ShippingAddress order.ShippingAddress `json:"shipping_address"`
	Currency        string                `json:"currency"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	ShippingFee     decimal.Decimal       `json:"shipping_fee"`
	Discount        decimal.Decimal       `json:"discount"`
	Total           decimal.Decimal       `json:"total"`
	Status          order.Status          `json:"status"`
	PaymentStatus   order.PaymentStatus   `json:"payment_status"`
	Items           []ItemResponse        `json:"items"`
	Notes           []NoteResponse        `json:"notes,omitempty"`
	TrackingNumber  string                `json:"tracking_number,omitempty"`
	Carrier         string                `json:"carrier,omitempty"`
	CancelReason    string                `json:"cancel_reason,omitempty"`
	OrderedAt       time.Time             `json:"ordered_at"`
	ConfirmedAt     *time.Time            `json:"confirmed_at,omitempty"`
	ShippedAt       *time.Time            `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time            `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time            `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	Version         int                   `json:"version"`
}

// ItemResponse represents an order line in API responses
type ItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      *uuid.UUID      `json:"product_id,omitempty"`
	PlatformItemID string          `json:"platform_item_id,omitempty"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	VariantName    string          `json:"variant_name,omitempty"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// NoteResponse represents an order note in API responses
type NoteResponse struct {
	ID        uuid.UUID  `json:"id"`
	AuthorID  *uuid.UUID `json:"author_id,omitempty"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(o *order.Order) *OrderResponse {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			PlatformItemID: item.PlatformItemID,
			SKU:            item.SKU,
			Name:           item.Name,
			VariantName:    item.VariantName,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Subtotal:       item.Subtotal,
		})
	}
	notes := make([]NoteResponse, 0, len(o.Notes))
	for _, note := range o.Notes {
		notes = append(notes, NoteResponse{
			ID:        note.ID,
			AuthorID:  note.AuthorID,
			Text:      note.Text,
			CreatedAt: note.CreatedAt,
		})
	}
	return &OrderResponse{
		ID:              o.ID,
		Platform:        o.Platform,
		PlatformOrderID: o.PlatformOrderID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		Currency:        o.Currency,
		Subtotal:        o.Subtotal,
		ShippingFee:     o.ShippingFee,
		Discount:        o.Discount,
		Total:           o.Total,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		Items:           items,
		Notes:           notes,
		TrackingNumber:  o.TrackingNumber,
		Carrier:         o.Carrier,
		CancelReason:    o.CancelReason,
		OrderedAt:       o.OrderedAt,
		ConfirmedAt:     o.ConfirmedAt,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.Version,
	}
}

// UpdateStatusRequest moves an order through its state machine
type UpdateStatusRequest struct {
	Status         order.Status `json:"status" binding:"required,oneof=confirmed shipped delivered cancelled"`
	TrackingNumber string       `json:"tracking_number"`
	Carrier        string       `json:"carrier"`
	CancelReason   string       `json:"cancel_reason"`
	// PushToPlatform mirrors the change back to the source platform
	PushToPlatform bool `json:"push_to_platform"`
}

// AddNoteRequest appends a note to an order
type AddNoteRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Search        string         `form:"search"`
	Platform      *platform.Type `form:"platform"`
	Status        string         `form:"status" binding:"omitempty,oneof=pending confirmed shipped delivered cancelled"`
	PaymentStatus string         `form:"payment_status" binding:"omitempty,oneof=pending paid refunded partial_refund"`
	OrderedAfter  *time.Time     `form:"ordered_after" time_format:"2006-01-02T15:04:05Z07:00"`
	OrderedBefore *time.Time     `form:"ordered_before" time_format:"2006-01-02T15:04:05Z07:00"`
	Page          int            `form:"page" binding:"min=0"`
	PageSize      int            `form:"page_size" binding:"min=0,max=100"`
	OrderBy       string         `form:"order_by"`
	OrderDir      string         `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// IngestResult reports what an idempotent ingest did
type IngestResult struct {
	Order   *OrderResponse `json:"order"`
	Created bool           `json:"created"`
}

// StatsResponse summarizes orders for dashboards
type StatsResponse struct {
	TotalOrders int64            `json:"total_orders"`
	ByStatus    map[string]int64 `json:"by_status"`
	ByPlatform  map[string]int64 `json:"by_platform"`
	Revenue     decimal.Decimal  `json:"revenue"`
}

// ToStatsResponse converts domain stats to a response DTO
func ToStatsResponse(s *order.Stats) *StatsResponse {
	byStatus := make(map[string]int64, len(s.ByStatus))
	for status, count := range s.ByStatus {
		byStatus[status.String()] = count
	}
	byPlatform := make(map[string]int64, len(s.ByPlatform))
	for pt, count := range s.ByPlatform {
		byPlatform[pt.String()] = count
	}
	return &StatsResponse{
		TotalOrders: s.TotalOrders,
		ByStatus:    byStatus,
		ByPlatform:  byPlatform,
		Revenue:     s.Revenue,
	}
}
