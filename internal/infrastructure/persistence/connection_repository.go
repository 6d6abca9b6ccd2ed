package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/shared"
)

// GormConnectionRepository implements ConnectionRepository using GORM.
// Credentials are sealed through the cipher on the way in and opened on
// the way out; the clear form never reaches the database.
type GormConnectionRepository struct {
	db     *gorm.DB
	cipher platform.CredentialCipher
}

// NewGormConnectionRepository creates a new GormConnectionRepository
func NewGormConnectionRepository(db *gorm.DB, cipher platform.CredentialCipher) *GormConnectionRepository {
	return &GormConnectionRepository{db: db, cipher: cipher}
}

// FindByIDForOrg finds a connection by ID within an org
func (r *GormConnectionRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*platform.Connection, error) {
	var conn platform.Connection
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.openCredentials(&conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// FindByPlatformForOrg finds the live connection for a platform within an org
func (r *GormConnectionRepository) FindByPlatformForOrg(ctx context.Context, orgID uuid.UUID, platformType platform.Type) (*platform.Connection, error) {
	var conn platform.Connection
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND platform = ?", orgID, platformType).
		First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.openCredentials(&conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// FindAllForOrg finds all connections for an org with filtering
func (r *GormConnectionRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter platform.ConnectionFilter) ([]platform.Connection, error) {
	var conns []platform.Connection
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&platform.Connection{}).Where("org_id = ?", orgID),
		filter,
	)
	query = applyListOptions(query, filter.Filter, ConnectionSortFields, "created_at")

	if err := query.Find(&conns).Error; err != nil {
		return nil, err
	}
	for i := range conns {
		if err := r.openCredentials(&conns[i]); err != nil {
			return nil, err
		}
	}
	return conns, nil
}

// CountForOrg counts connections for an org
func (r *GormConnectionRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter platform.ConnectionFilter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&platform.Connection{}).Where("org_id = ?", orgID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindAutoSyncDue returns connected rows across all orgs whose auto-sync
// interval has elapsed since last_sync_at. Rows that never synced are due
// immediately.
func (r *GormConnectionRepository) FindAutoSyncDue(ctx context.Context) ([]platform.Connection, error) {
	var conns []platform.Connection
	if err := r.db.WithContext(ctx).
		Where("is_connected = ?", true).
		Where("settings->>'auto_sync' = 'true'").
		Where("last_sync_at IS NULL OR last_sync_at <= NOW() - ((settings->>'sync_interval_minutes')::int * INTERVAL '1 minute')").
		Find(&conns).Error; err != nil {
		return nil, err
	}
	for i := range conns {
		if err := r.openCredentials(&conns[i]); err != nil {
			return nil, err
		}
	}
	return conns, nil
}

// Save creates or updates a connection, sealing credentials first
func (r *GormConnectionRepository) Save(ctx context.Context, conn *platform.Connection) error {
	if err := r.sealCredentials(conn); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(conn).Error; err != nil {
		return err
	}
	conn.MarkPersisted()
	return nil
}

// SaveWithLock saves with optimistic locking against the loaded version
func (r *GormConnectionRepository) SaveWithLock(ctx context.Context, conn *platform.Connection) error {
	if err := r.sealCredentials(conn); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(conn).
		Where("id = ? AND version = ?", conn.ID, conn.PersistedVersion()).
		Select("shop_name", "shop_id", "credential_blob", "settings",
			"is_connected", "last_sync_at", "token_expires_at",
			"updated_by", "version", "updated_at").
		Updates(conn)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	conn.MarkPersisted()
	return nil
}

// Delete soft-deletes a connection within an org
func (r *GormConnectionRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&platform.Connection{}, "org_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// sealCredentials encrypts in-memory credentials into the stored blob.
// A disconnected row keeps its blob nil so no secret survives disconnect.
func (r *GormConnectionRepository) sealCredentials(conn *platform.Connection) error {
	if conn.Credentials.IsEmpty() {
		return nil
	}
	blob, err := r.cipher.Seal(conn.Credentials)
	if err != nil {
		return fmt.Errorf("seal credentials: %w", err)
	}
	conn.CredentialBlob = blob
	return nil
}

// openCredentials decrypts the stored blob back into memory
func (r *GormConnectionRepository) openCredentials(conn *platform.Connection) error {
	if len(conn.CredentialBlob) == 0 {
		return nil
	}
	creds, err := r.cipher.Open(conn.CredentialBlob)
	if err != nil {
		return fmt.Errorf("open credentials: %w", err)
	}
	conn.Credentials = creds
	return nil
}

// applyFilter applies connection-specific filter criteria
func (r *GormConnectionRepository) applyFilter(query *gorm.DB, filter platform.ConnectionFilter) *gorm.DB {
	if filter.Platform != nil {
		query = query.Where("platform = ?", *filter.Platform)
	}
	if filter.IsConnected != nil {
		query = query.Where("is_connected = ?", *filter.IsConnected)
	}
	if filter.Search != "" {
		query = query.Where("shop_name ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormConnectionRepository implements ConnectionRepository
var _ platform.ConnectionRepository = (*GormConnectionRepository)(nil)
