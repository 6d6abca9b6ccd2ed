package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/shared"
)

// OrderFilter extends the shared filter with order criteria
type OrderFilter struct {
	shared.Filter
	Platform      *platform.Type
	Status        *Status
	PaymentStatus *PaymentStatus
	OrderedAfter  *time.Time
	OrderedBefore *time.Time
}

// Stats summarizes an organization's orders
type Stats struct {
	TotalOrders int64                   `json:"total_orders"`
	ByStatus    map[Status]int64        `json:"by_status"`
	ByPlatform  map[platform.Type]int64 `json:"by_platform"`
	// Revenue sums the total of paid orders only
	Revenue decimal.Decimal `json:"revenue"`
}

// OrderRepository persists orders with their items and notes
type OrderRepository interface {
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Order, error)
	// FindByPlatformRef resolves the idempotency key (platform, platform_order_id)
	FindByPlatformRef(ctx context.Context, orgID uuid.UUID, platformType platform.Type, platformOrderID string) (*Order, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter OrderFilter) ([]Order, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter OrderFilter) (int64, error)
	StatsForOrg(ctx context.Context, orgID uuid.UUID, since *time.Time) (*Stats, error)

	Save(ctx context.Context, o *Order) error
	SaveWithLock(ctx context.Context, o *Order) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}
