package platform

import (
	"context"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/shared"
)

// ConnectionFilter extends the shared filter with connection criteria
type ConnectionFilter struct {
	shared.Filter
	Platform    *Type
	IsConnected *bool
}

// ConnectionRepository persists platform connections
type ConnectionRepository interface {
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Connection, error)
	FindByPlatformForOrg(ctx context.Context, orgID uuid.UUID, platformType Type) (*Connection, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter ConnectionFilter) ([]Connection, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter ConnectionFilter) (int64, error)
	// FindAutoSyncDue returns connected rows across all orgs whose auto-sync
	// interval has elapsed since last_sync_at.
	FindAutoSyncDue(ctx context.Context) ([]Connection, error)

	Save(ctx context.Context, conn *Connection) error
	SaveWithLock(ctx context.Context, conn *Connection) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}
