package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marketsync/backend/internal/domain/platform"
)

// GormListingRepository implements ListingRepository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindByPlatformForOrg returns all SKU mappings for one org and platform
func (r *GormListingRepository) FindByPlatformForOrg(ctx context.Context, orgID uuid.UUID, platformType platform.Type) ([]platform.Listing, error) {
	var listings []platform.Listing
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND platform = ?", orgID, platformType).
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// Upsert inserts the mapping or refreshes the platform product ID of an
// existing (org, platform, sku) row
func (r *GormListingRepository) Upsert(ctx context.Context, listing *platform.Listing) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "org_id"}, {Name: "platform"}, {Name: "sku"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"platform_product_id", "updated_at"}),
	}).Create(listing).Error
}

// Ensure GormListingRepository implements ListingRepository
var _ platform.ListingRepository = (*GormListingRepository)(nil)
