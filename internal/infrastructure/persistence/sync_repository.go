package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketsync/backend/internal/domain/shared"
	"github.com/marketsync/backend/internal/domain/sync"
)

// GormSyncJobRepository implements JobRepository using GORM
type GormSyncJobRepository struct {
	db *gorm.DB
}

// NewGormSyncJobRepository creates a new GormSyncJobRepository
func NewGormSyncJobRepository(db *gorm.DB) *GormSyncJobRepository {
	return &GormSyncJobRepository{db: db}
}

// FindByID loads a job without org scoping
func (r *GormSyncJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*sync.Job, error) {
	var job sync.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// FindByIDForOrg finds a job by ID within an org
func (r *GormSyncJobRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*sync.Job, error) {
	var job sync.Job
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// FindAllForOrg finds all jobs for an org with filtering
func (r *GormSyncJobRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter sync.JobFilter) ([]sync.Job, error) {
	var jobs []sync.Job
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sync.Job{}).Where("org_id = ?", orgID),
		filter,
	)
	query = applyListOptions(query, filter.Filter, SyncJobSortFields, "created_at")

	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// CountForOrg counts jobs for an org
func (r *GormSyncJobRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter sync.JobFilter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sync.Job{}).Where("org_id = ?", orgID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a job
func (r *GormSyncJobRepository) Save(ctx context.Context, job *sync.Job) error {
	if err := r.db.WithContext(ctx).Save(job).Error; err != nil {
		return err
	}
	job.MarkPersisted()
	return nil
}

// SaveWithLock saves with optimistic locking against the loaded version
func (r *GormSyncJobRepository) SaveWithLock(ctx context.Context, job *sync.Job) error {
	result := r.db.WithContext(ctx).
		Model(job).
		Where("id = ? AND version = ?", job.ID, job.PersistedVersion()).
		Select("status", "total_items", "processed_items", "success_items", "failed_items",
			"error_log", "retry_count", "started_at", "completed_at",
			"version", "updated_at").
		Updates(job)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	job.MarkPersisted()
	return nil
}

// applyFilter applies job-specific filter criteria
func (r *GormSyncJobRepository) applyFilter(query *gorm.DB, filter sync.JobFilter) *gorm.DB {
	if filter.JobType != nil {
		query = query.Where("job_type = ?", *filter.JobType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Platform != nil {
		query = query.Where("platform = ?", *filter.Platform)
	}
	return query
}

// GormSyncLogRepository implements LogRepository using GORM.
// The audit log is append-only.
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// logInsertBatchSize bounds the rows per INSERT when flushing a batch
const logInsertBatchSize = 100

// Append writes one audit log entry
func (r *GormSyncLogRepository) Append(ctx context.Context, entry *sync.Log) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// AppendBatch writes a batch of audit log entries
func (r *GormSyncLogRepository) AppendBatch(ctx context.Context, entries []sync.Log) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(entries, logInsertBatchSize).Error
}

// FindAllForOrg finds audit log entries for an org with filtering
func (r *GormSyncLogRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter sync.LogFilter) ([]sync.Log, error) {
	var logs []sync.Log
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sync.Log{}).Where("org_id = ?", orgID),
		filter,
	)
	query = applyListOptions(query, filter.Filter, SyncLogSortFields, "recorded_at")

	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// CountForOrg counts audit log entries for an org
func (r *GormSyncLogRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter sync.LogFilter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sync.Log{}).Where("org_id = ?", orgID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies log-specific filter criteria
func (r *GormSyncLogRepository) applyFilter(query *gorm.DB, filter sync.LogFilter) *gorm.DB {
	if filter.JobID != nil {
		query = query.Where("job_id = ?", *filter.JobID)
	}
	if filter.Platform != nil {
		query = query.Where("platform = ?", *filter.Platform)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	if filter.Success != nil {
		query = query.Where("success = ?", *filter.Success)
	}
	if filter.Search != "" {
		query = query.Where("entity_ref ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// Ensure repositories implement their domain interfaces
var (
	_ sync.JobRepository = (*GormSyncJobRepository)(nil)
	_ sync.LogRepository = (*GormSyncLogRepository)(nil)
)
