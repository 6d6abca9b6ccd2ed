// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the sync engine.
// It tracks order ingestion, sync job activity, and inventory health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	orderIngestedTotal *Counter
	orderRevenueTotal  *Counter
	syncJobTotal       *Counter
	syncItemTotal      *Counter

	// Gauge metrics (point-in-time values)
	inventoryLowStockCount   *Gauge
	inventoryOutOfStockCount *Gauge
	inventoryReservedTotal   *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	inventoryProvider InventoryMetricsProvider
}

// InventoryMetricsProvider provides inventory data for periodic metrics
// collection. The interface lets the telemetry layer query stock state
// without depending on the inventory domain directly.
type InventoryMetricsProvider interface {
	// GetStockHealth returns low stock count, out of stock count and total
	// reserved quantity for an org
	GetStockHealth(ctx context.Context, orgID uuid.UUID) (lowStock, outOfStock, reserved int64, err error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	CollectInterval   time.Duration // Default: 5 minutes
	InventoryProvider InventoryMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:             cfg.Meter,
		logger:            logger,
		stopChan:          make(chan struct{}),
		inventoryProvider: cfg.InventoryProvider,
	}

	// Initialize counter metrics
	var err error

	// Order metrics
	bm.orderIngestedTotal, err = NewCounter(
		cfg.Meter,
		"marketsync_order_ingested_total",
		"Total number of orders ingested from platforms",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderRevenueTotal, err = NewCounter(
		cfg.Meter,
		"marketsync_order_revenue_total",
		"Total order revenue in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	// Sync metrics
	bm.syncJobTotal, err = NewCounter(
		cfg.Meter,
		"marketsync_sync_job_total",
		"Total number of finished sync jobs",
		"{jobs}",
	)
	if err != nil {
		return nil, err
	}

	bm.syncItemTotal, err = NewCounter(
		cfg.Meter,
		"marketsync_sync_item_total",
		"Total number of synced items",
		"{items}",
	)
	if err != nil {
		return nil, err
	}

	// Inventory gauge metrics
	bm.inventoryLowStockCount, err = NewGauge(
		cfg.Meter,
		"marketsync_inventory_low_stock_count",
		"Number of SKUs at or below their low stock threshold",
		"{skus}",
	)
	if err != nil {
		return nil, err
	}

	bm.inventoryOutOfStockCount, err = NewGauge(
		cfg.Meter,
		"marketsync_inventory_out_of_stock_count",
		"Number of SKUs with no available stock",
		"{skus}",
	)
	if err != nil {
		return nil, err
	}

	bm.inventoryReservedTotal, err = NewGauge(
		cfg.Meter,
		"marketsync_inventory_reserved_quantity",
		"Total quantity currently reserved for open orders",
		"{units}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Order Metrics
// =============================================================================

// RecordOrderIngested records an order import event.
func (bm *BusinessMetrics) RecordOrderIngested(ctx context.Context, orgID uuid.UUID, platform string) {
	bm.orderIngestedTotal.Inc(ctx,
		AttrOrgID.String(orgID.String()),
		AttrPlatform.String(platform),
	)
}

// RecordOrderRevenue records the order total. Amount should be in the
// smallest currency unit.
func (bm *BusinessMetrics) RecordOrderRevenue(ctx context.Context, orgID uuid.UUID, platform string, amountCents int64) {
	bm.orderRevenueTotal.Add(ctx, amountCents,
		AttrOrgID.String(orgID.String()),
		AttrPlatform.String(platform),
	)
}

// RecordOrderWithRevenue is a convenience method that records both order
// count and revenue.
func (bm *BusinessMetrics) RecordOrderWithRevenue(ctx context.Context, orgID uuid.UUID, platform string, total decimal.Decimal) {
	bm.RecordOrderIngested(ctx, orgID, platform)

	amountCents := total.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordOrderRevenue(ctx, orgID, platform, amountCents)
}

// =============================================================================
// Sync Metrics
// =============================================================================

// RecordSyncJob records a finished sync job and its item counters.
func (bm *BusinessMetrics) RecordSyncJob(ctx context.Context, orgID uuid.UUID, jobType, status string, successItems, failedItems int64) {
	bm.syncJobTotal.Inc(ctx,
		AttrOrgID.String(orgID.String()),
		AttrJobType.String(jobType),
		AttrJobStatus.String(status),
	)
	if successItems > 0 {
		bm.syncItemTotal.Add(ctx, successItems,
			AttrOrgID.String(orgID.String()),
			AttrJobType.String(jobType),
			AttrJobStatus.String("success"),
		)
	}
	if failedItems > 0 {
		bm.syncItemTotal.Add(ctx, failedItems,
			AttrOrgID.String(orgID.String()),
			AttrJobType.String(jobType),
			AttrJobStatus.String("failed"),
		)
	}
}

// =============================================================================
// Inventory Metrics
// =============================================================================

// RecordStockHealth records the current stock health gauges for an org.
// These are gauge metrics that should be updated periodically.
func (bm *BusinessMetrics) RecordStockHealth(ctx context.Context, orgID uuid.UUID, lowStock, outOfStock, reserved int64) {
	attrs := AttrOrgID.String(orgID.String())
	bm.inventoryLowStockCount.Record(ctx, lowStock, attrs)
	bm.inventoryOutOfStockCount.Record(ctx, outOfStock, attrs)
	bm.inventoryReservedTotal.Record(ctx, reserved, attrs)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// OrgProvider provides org IDs for periodic metrics collection.
type OrgProvider interface {
	GetActiveOrgIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects inventory metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, orgProvider OrgProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, orgProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, orgProvider OrgProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectInventoryMetrics(ctx, orgProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectInventoryMetrics(ctx, orgProvider)
		}
	}
}

// collectInventoryMetrics collects inventory gauge metrics for all orgs.
func (bm *BusinessMetrics) collectInventoryMetrics(ctx context.Context, orgProvider OrgProvider) {
	if bm.inventoryProvider == nil {
		bm.logger.Debug("No inventory provider configured, skipping inventory metrics collection")
		return
	}

	orgIDs, err := orgProvider.GetActiveOrgIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get org IDs for metrics collection", zap.Error(err))
		return
	}

	for _, orgID := range orgIDs {
		lowStock, outOfStock, reserved, err := bm.inventoryProvider.GetStockHealth(ctx, orgID)
		if err != nil {
			bm.logger.Warn("Failed to get stock health for org",
				zap.String("org_id", orgID.String()),
				zap.Error(err),
			)
			continue
		}
		bm.RecordStockHealth(ctx, orgID, lowStock, outOfStock, reserved)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
