package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/shared"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByIDForOrg finds an order by ID within an org
func (r *GormOrderRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Notes").
		Where("org_id = ? AND id = ?", orgID, id).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByPlatformRef resolves the idempotency key (platform, platform_order_id)
func (r *GormOrderRepository) FindByPlatformRef(ctx context.Context, orgID uuid.UUID, platformType platform.Type, platformOrderID string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Notes").
		Where("org_id = ? AND platform = ? AND platform_order_id = ?", orgID, platformType, platformOrderID).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAllForOrg finds all orders for an org with filtering
func (r *GormOrderRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter order.OrderFilter) ([]order.Order, error) {
	var orders []order.Order
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&order.Order{}).Where("org_id = ?", orgID),
		filter,
	)
	query = applyListOptions(query, filter.Filter, OrderSortFields, "ordered_at")

	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// CountForOrg counts orders for an org
func (r *GormOrderRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter order.OrderFilter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&order.Order{}).Where("org_id = ?", orgID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// StatsForOrg aggregates order counts and paid revenue for an org
func (r *GormOrderRepository) StatsForOrg(ctx context.Context, orgID uuid.UUID, since *time.Time) (*order.Stats, error) {
	stats := &order.Stats{
		ByStatus:   make(map[order.Status]int64),
		ByPlatform: make(map[platform.Type]int64),
		Revenue:    decimal.Zero,
	}

	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&order.Order{}).Where("org_id = ?", orgID)
		if since != nil {
			q = q.Where("ordered_at >= ?", *since)
		}
		return q
	}

	var statusRows []struct {
		Status order.Status
		Count  int64
	}
	if err := scoped().
		Select("status, COUNT(*) as count").
		Group("status").
		Find(&statusRows).Error; err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		stats.ByStatus[row.Status] = row.Count
		stats.TotalOrders += row.Count
	}

	var platformRows []struct {
		Platform platform.Type
		Count    int64
	}
	if err := scoped().
		Select("platform, COUNT(*) as count").
		Group("platform").
		Find(&platformRows).Error; err != nil {
		return nil, err
	}
	for _, row := range platformRows {
		stats.ByPlatform[row.Platform] = row.Count
	}

	var revenue struct {
		Total decimal.Decimal
	}
	if err := scoped().
		Select("COALESCE(SUM(total), 0) as total").
		Where("payment_status = ?", order.PaymentPaid).
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	stats.Revenue = revenue.Total

	return stats, nil
}

// Save creates or updates an order with its items and notes
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Notes").Save(o).Error; err != nil {
			return err
		}
		return r.saveAssociations(tx, o)
	})
	if err != nil {
		return err
	}
	o.MarkPersisted()
	return nil
}

// SaveWithLock saves with optimistic locking against the loaded version
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(o).
			Where("id = ? AND version = ?", o.ID, o.PersistedVersion()).
			Select("customer_name", "customer_email", "customer_phone", "shipping_address",
				"currency", "subtotal", "shipping_fee", "discount", "total",
				"status", "payment_status", "tracking_number", "carrier", "cancel_reason",
				"confirmed_at", "shipped_at", "delivered_at", "cancelled_at",
				"updated_by", "version", "updated_at").
			Updates(o)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.saveAssociations(tx, o)
	})
	if err != nil {
		return err
	}
	o.MarkPersisted()
	return nil
}

// saveAssociations syncs order items and notes. Lines removed from the
// aggregate are deleted; notes are append-only.
func (r *GormOrderRepository) saveAssociations(tx *gorm.DB, o *order.Order) error {
	currentItemIDs := make([]uuid.UUID, len(o.Items))
	for i, item := range o.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", o.ID, currentItemIDs).
			Delete(&order.Item{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", o.ID).
			Delete(&order.Item{}).Error; err != nil {
			return err
		}
	}

	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if err := tx.Save(&o.Items[i]).Error; err != nil {
			return err
		}
	}

	for i := range o.Notes {
		o.Notes[i].OrderID = o.ID
		if err := tx.Save(&o.Notes[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// Delete soft-deletes an order within an org
func (r *GormOrderRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&order.Order{}, "org_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies order-specific filter criteria
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter order.OrderFilter) *gorm.DB {
	if filter.Platform != nil {
		query = query.Where("platform = ?", *filter.Platform)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.OrderedAfter != nil {
		query = query.Where("ordered_at >= ?", *filter.OrderedAfter)
	}
	if filter.OrderedBefore != nil {
		query = query.Where("ordered_at <= ?", *filter.OrderedBefore)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR platform_order_id ILIKE ? OR customer_name ILIKE ?",
			pattern, pattern, pattern)
	}
	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
