// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryMetricsProvider implements InventoryMetricsProvider using GORM.
// It queries the inventory_items table directly for aggregated metrics.
type GormInventoryMetricsProvider struct {
	db *gorm.DB
}

// NewGormInventoryMetricsProvider creates a new GormInventoryMetricsProvider.
func NewGormInventoryMetricsProvider(db *gorm.DB) *GormInventoryMetricsProvider {
	return &GormInventoryMetricsProvider{db: db}
}

// GetStockHealth returns the low stock count, out of stock count and total
// reserved quantity for an org.
func (p *GormInventoryMetricsProvider) GetStockHealth(ctx context.Context, orgID uuid.UUID) (int64, int64, int64, error) {
	type result struct {
		LowStock   int64 `gorm:"column:low_stock"`
		OutOfStock int64 `gorm:"column:out_of_stock"`
		Reserved   int64 `gorm:"column:reserved"`
	}

	var r result
	err := p.db.WithContext(ctx).
		Table("inventory_items").
		Select(`
			COALESCE(SUM(CASE WHEN total_stock - reserved_stock > 0 AND total_stock - reserved_stock <= low_stock_threshold THEN 1 ELSE 0 END), 0) as low_stock,
			COALESCE(SUM(CASE WHEN total_stock - reserved_stock <= 0 THEN 1 ELSE 0 END), 0) as out_of_stock,
			COALESCE(SUM(reserved_stock), 0) as reserved`).
		Where("org_id = ? AND deleted_at IS NULL", orgID).
		Find(&r).Error
	if err != nil {
		return 0, 0, 0, err
	}

	return r.LowStock, r.OutOfStock, r.Reserved, nil
}

// GormOrgProvider implements OrgProvider using GORM.
type GormOrgProvider struct {
	db *gorm.DB
}

// NewGormOrgProvider creates a new GormOrgProvider.
func NewGormOrgProvider(db *gorm.DB) *GormOrgProvider {
	return &GormOrgProvider{db: db}
}

// GetActiveOrgIDs returns every org with tracked inventory.
func (p *GormOrgProvider) GetActiveOrgIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("inventory_items").
		Distinct("org_id").
		Where("deleted_at IS NULL").
		Find(&ids).Error

	return ids, err
}
