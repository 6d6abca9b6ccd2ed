package platform

import (
	"context"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/shared"
)

// Listing maps a local SKU to the product ID a platform knows it by.
// Inventory pushes need this mapping; rows are learned from pulled order
// lines and upserted, so the latest platform ID wins.
type Listing struct {
	shared.BaseEntity

	OrgID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_listing_org_platform_sku"`
	Platform          Type      `gorm:"type:varchar(20);not null;uniqueIndex:idx_listing_org_platform_sku"`
	SKU               string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_listing_org_platform_sku"`
	PlatformProductID string    `gorm:"type:varchar(100);not null"`
}

// TableName overrides the GORM table name
func (Listing) TableName() string {
	return "platform_listings"
}

// NewListing creates a SKU to platform product mapping
func NewListing(orgID uuid.UUID, platformType Type, sku, platformProductID string) (*Listing, error) {
	if !platformType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unsupported platform type")
	}
	if sku == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "SKU is required")
	}
	if platformProductID == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Platform product ID is required")
	}
	return &Listing{
		BaseEntity:        shared.NewBaseEntity(),
		OrgID:             orgID,
		Platform:          platformType,
		SKU:               sku,
		PlatformProductID: platformProductID,
	}, nil
}

// ListingRepository persists SKU to platform product mappings
type ListingRepository interface {
	FindByPlatformForOrg(ctx context.Context, orgID uuid.UUID, platformType Type) ([]Listing, error)
	// Upsert inserts the mapping or refreshes the platform product ID of an
	// existing (org, platform, sku) row.
	Upsert(ctx context.Context, listing *Listing) error
}
