package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketsync/backend/internal/domain/inventory"
	"github.com/marketsync/backend/internal/domain/shared"
)

// GormInventoryItemRepository implements InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// FindByIDForOrg finds an inventory item by ID within an org
func (r *GormInventoryItemRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*inventory.InventoryItem, error) {
	var item inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindBySKUForOrg finds an inventory item by SKU within an org
func (r *GormInventoryItemRepository) FindBySKUForOrg(ctx context.Context, orgID uuid.UUID, sku string) (*inventory.InventoryItem, error) {
	var item inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND sku = ?", orgID, sku).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByProductForOrg finds all inventory items for a product
func (r *GormInventoryItemRepository) FindByProductForOrg(ctx context.Context, orgID, productID uuid.UUID) ([]inventory.InventoryItem, error) {
	var items []inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND product_id = ?", orgID, productID).
		Order("sku ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindAllForOrg finds all inventory items for an org with filtering
func (r *GormInventoryItemRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter inventory.InventoryFilter) ([]inventory.InventoryItem, error) {
	var items []inventory.InventoryItem
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.InventoryItem{}).Where("org_id = ?", orgID),
		filter,
	)
	query = applyListOptions(query, filter.Filter, InventoryItemSortFields, "created_at")

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountForOrg counts inventory items for an org
func (r *GormInventoryItemRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter inventory.InventoryFilter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.InventoryItem{}).Where("org_id = ?", orgID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// StatsForOrg aggregates the org's stock position in a single query
func (r *GormInventoryItemRepository) StatsForOrg(ctx context.Context, orgID uuid.UUID) (*inventory.Stats, error) {
	var stats inventory.Stats
	err := r.db.WithContext(ctx).
		Model(&inventory.InventoryItem{}).
		Select(`
			COUNT(*) as total_items,
			COALESCE(SUM(total_stock), 0) as total_stock,
			COALESCE(SUM(CASE WHEN total_stock - reserved_stock > 0 AND total_stock - reserved_stock <= low_stock_threshold THEN 1 ELSE 0 END), 0) as low_stock_count,
			COALESCE(SUM(CASE WHEN total_stock - reserved_stock <= 0 THEN 1 ELSE 0 END), 0) as out_of_stock_count`).
		Where("org_id = ?", orgID).
		Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Save creates or updates an inventory item
func (r *GormInventoryItemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return err
	}
	item.MarkPersisted()
	return nil
}

// SaveWithLock saves with optimistic locking against the loaded version
func (r *GormInventoryItemRepository) SaveWithLock(ctx context.Context, item *inventory.InventoryItem) error {
	result := r.db.WithContext(ctx).
		Model(item).
		Where("id = ? AND version = ?", item.ID, item.PersistedVersion()).
		Updates(map[string]interface{}{
			"product_name":        item.ProductName,
			"price":               item.Price,
			"total_stock":         item.TotalStock,
			"reserved_stock":      item.ReservedStock,
			"low_stock_threshold": item.LowStockThreshold,
			"warehouse_location":  item.WarehouseLocation,
			"updated_by":          item.UpdatedBy,
			"version":             item.Version,
			"updated_at":          item.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	item.MarkPersisted()
	return nil
}

// Delete soft-deletes an inventory item within an org
func (r *GormInventoryItemRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&inventory.InventoryItem{}, "org_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies inventory-specific filter criteria
func (r *GormInventoryItemRepository) applyFilter(query *gorm.DB, filter inventory.InventoryFilter) *gorm.DB {
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.SKU != "" {
		query = query.Where("sku = ?", filter.SKU)
	}
	if filter.LowStock {
		query = query.Where("total_stock - reserved_stock > 0 AND total_stock - reserved_stock <= low_stock_threshold")
	}
	if filter.OutOfStock {
		query = query.Where("total_stock - reserved_stock <= 0")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("sku ILIKE ? OR product_name ILIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormInventoryItemRepository implements InventoryItemRepository
var _ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)
