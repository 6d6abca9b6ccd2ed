package sync

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/shared"
	"github.com/marketsync/backend/internal/domain/sync"
)

// ErrQueueFull is returned when the sync worker pool cannot accept more jobs
var ErrQueueFull = errors.New("sync: job queue is full")

// JobSubmitter hands a persisted job to the async worker pool. Submission
// must not block; a saturated pool returns ErrQueueFull.
type JobSubmitter interface {
	Submit(jobID uuid.UUID) error
}

// Service triggers and inspects sync jobs. Triggering is fire and forget:
// the job row is persisted as pending, handed to the worker pool and its ID
// returned immediately.
type Service struct {
	jobRepo        sync.JobRepository
	logRepo        sync.LogRepository
	connectionRepo platform.ConnectionRepository
	submitter      JobSubmitter
	logger         *zap.Logger
}

// NewService creates a new sync Service
func NewService(
	jobRepo sync.JobRepository,
	logRepo sync.LogRepository,
	connectionRepo platform.ConnectionRepository,
	submitter JobSubmitter,
	logger *zap.Logger,
) *Service {
	return &Service{
		jobRepo:        jobRepo,
		logRepo:        logRepo,
		connectionRepo: connectionRepo,
		submitter:      submitter,
		logger:         logger,
	}
}

// TriggerInventoryPush starts an async inventory push
func (s *Service) TriggerInventoryPush(ctx context.Context, orgID uuid.UUID, req TriggerSyncRequest, actorID *uuid.UUID) (*TriggerSyncResponse, error) {
	return s.trigger(ctx, orgID, sync.JobTypeInventoryPush, req, actorID)
}

// TriggerOrderPull starts an async order pull
func (s *Service) TriggerOrderPull(ctx context.Context, orgID uuid.UUID, req TriggerSyncRequest, actorID *uuid.UUID) (*TriggerSyncResponse, error) {
	return s.trigger(ctx, orgID, sync.JobTypeOrderPull, req, actorID)
}

// TriggerProductPush starts an async product listing push
func (s *Service) TriggerProductPush(ctx context.Context, orgID uuid.UUID, req TriggerSyncRequest, actorID *uuid.UUID) (*TriggerSyncResponse, error) {
	return s.trigger(ctx, orgID, sync.JobTypeProductPush, req, actorID)
}

// TriggerFullSync starts an async inventory push followed by an order pull
func (s *Service) TriggerFullSync(ctx context.Context, orgID uuid.UUID, req TriggerSyncRequest, actorID *uuid.UUID) (*TriggerSyncResponse, error) {
	return s.trigger(ctx, orgID, sync.JobTypeFullSync, req, actorID)
}

func (s *Service) trigger(ctx context.Context, orgID uuid.UUID, jobType sync.JobType, req TriggerSyncRequest, actorID *uuid.UUID) (*TriggerSyncResponse, error) {
	platformScope, err := s.resolveScope(ctx, orgID, req.Platform)
	if err != nil {
		return nil, err
	}

	job, err := sync.NewJob(orgID, jobType, platformScope, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, err
	}

	if err := s.submitter.Submit(job.ID); err != nil {
		job.Fail("job queue is full")
		if saveErr := s.jobRepo.SaveWithLock(ctx, job); saveErr != nil {
			s.logger.Error("failed to mark unsubmittable job",
				zap.String("job_id", job.ID.String()), zap.Error(saveErr))
		}
		return nil, ErrQueueFull
	}

	s.logger.Info("sync job accepted",
		zap.String("org_id", orgID.String()),
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", jobType.String()))
	return &TriggerSyncResponse{JobID: job.ID, JobType: job.JobType, Status: job.Status}, nil
}

// RetryJob re-queues a failed job as a fresh pending run. The failed row
// is left untouched so its counters and error log stay auditable; only
// jobs in the failed state can be retried.
func (s *Service) RetryJob(ctx context.Context, orgID, jobID uuid.UUID, actorID *uuid.UUID) (*TriggerSyncResponse, error) {
	failed, err := s.jobRepo.FindByIDForOrg(ctx, orgID, jobID)
	if err != nil {
		return nil, err
	}

	retry, err := sync.NewRetryJob(failed, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, retry); err != nil {
		return nil, err
	}

	if err := s.submitter.Submit(retry.ID); err != nil {
		retry.Fail("job queue is full")
		if saveErr := s.jobRepo.SaveWithLock(ctx, retry); saveErr != nil {
			s.logger.Error("failed to mark unsubmittable job",
				zap.String("job_id", retry.ID.String()), zap.Error(saveErr))
		}
		return nil, ErrQueueFull
	}

	s.logger.Info("sync job re-queued",
		zap.String("org_id", orgID.String()),
		zap.String("job_id", retry.ID.String()),
		zap.String("failed_job_id", failed.ID.String()),
		zap.Int("retry_count", retry.RetryCount))
	return &TriggerSyncResponse{JobID: retry.ID, JobType: retry.JobType, Status: retry.Status}, nil
}

// resolveScope validates the requested platform scope against the org's
// connections. A named platform must be connected; an unscoped run needs at
// least one live connection.
func (s *Service) resolveScope(ctx context.Context, orgID uuid.UUID, platformName string) (*platform.Type, error) {
	if platformName != "" {
		pt := platform.Type(platformName)
		conn, err := s.connectionRepo.FindByPlatformForOrg(ctx, orgID, pt)
		if err != nil {
			return nil, err
		}
		if !conn.IsConnected {
			return nil, shared.NewDomainError("PLATFORM_SYNC_FAILED", "Platform is not connected")
		}
		return &pt, nil
	}

	conns, err := s.connectionRepo.FindAllForOrg(ctx, orgID, platform.ConnectionFilter{Filter: shared.DefaultFilter()})
	if err != nil {
		return nil, err
	}
	for i := range conns {
		if conns[i].IsConnected {
			return nil, nil
		}
	}
	return nil, shared.NewDomainError("PLATFORM_SYNC_FAILED", "No connected platforms to sync")
}

// GetJob returns one sync job with its progress counters
func (s *Service) GetJob(ctx context.Context, orgID, jobID uuid.UUID) (*JobResponse, error) {
	job, err := s.jobRepo.FindByIDForOrg(ctx, orgID, jobID)
	if err != nil {
		return nil, err
	}
	return ToJobResponse(job), nil
}

// ListJobs returns the org's sync job history
func (s *Service) ListJobs(ctx context.Context, orgID uuid.UUID, filter JobListFilter) (*shared.Paginated[JobResponse], error) {
	domainFilter := sync.JobFilter{Filter: shared.DefaultFilter()}
	if filter.JobType != "" {
		jt := sync.JobType(filter.JobType)
		domainFilter.JobType = &jt
	}
	if filter.Status != "" {
		st := sync.JobStatus(filter.Status)
		domainFilter.Status = &st
	}
	if filter.Platform != "" {
		pt := platform.Type(filter.Platform)
		domainFilter.Platform = &pt
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.OrderBy = "created_at"
	domainFilter.OrderDir = "desc"

	jobs, err := s.jobRepo.FindAllForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.jobRepo.CountForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, *ToJobResponse(&jobs[i]))
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// ListLogs returns the sync audit log
func (s *Service) ListLogs(ctx context.Context, orgID uuid.UUID, filter LogListFilter) (*shared.Paginated[LogResponse], error) {
	domainFilter := sync.LogFilter{
		Filter:  shared.DefaultFilter(),
		JobID:   filter.JobID,
		Success: filter.Success,
	}
	if filter.Platform != "" {
		pt := platform.Type(filter.Platform)
		domainFilter.Platform = &pt
	}
	if filter.Action != "" {
		action := sync.Action(filter.Action)
		domainFilter.Action = &action
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.OrderBy = "recorded_at"
	domainFilter.OrderDir = "desc"

	logs, err := s.logRepo.FindAllForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.logRepo.CountForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]LogResponse, 0, len(logs))
	for i := range logs {
		responses = append(responses, *ToLogResponse(&logs[i]))
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}
