package inventory

import (
	"context"

	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/inventory"
	"github.com/marketsync/backend/internal/domain/shared"
)

// LowStockHandler reacts to low and depleted stock events with alert logs.
// Storefront dashboards read the same state from the stats endpoint; the
// handler exists so operators see threshold crossings in the log stream.
type LowStockHandler struct {
	logger *zap.Logger
}

// NewLowStockHandler creates a new LowStockHandler
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockLow, inventory.EventTypeStockDepleted}
}

// Handle processes a domain event
func (h *LowStockHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.StockLowEvent:
		h.logger.Warn("stock below threshold",
			zap.String("org_id", e.OrgID().String()),
			zap.String("sku", e.SKU),
			zap.Int64("available", e.Available),
			zap.Int64("threshold", e.Threshold),
		)
	case *inventory.StockDepletedEvent:
		h.logger.Warn("stock depleted",
			zap.String("org_id", e.OrgID().String()),
			zap.String("sku", e.SKU),
		)
	}
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)
