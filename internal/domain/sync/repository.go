package sync

import (
	"context"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/shared"
)

// JobFilter extends the shared filter with job criteria
type JobFilter struct {
	shared.Filter
	JobType  *JobType
	Status   *JobStatus
	Platform *platform.Type
}

// LogFilter extends the shared filter with audit log criteria
type LogFilter struct {
	shared.Filter
	JobID    *uuid.UUID
	Platform *platform.Type
	Action   *Action
	Success  *bool
}

// JobRepository persists sync jobs
type JobRepository interface {
	// FindByID loads a job without org scoping; the executor only has the
	// job ID when a queued job is picked up.
	FindByID(ctx context.Context, id uuid.UUID) (*Job, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Job, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter JobFilter) ([]Job, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter JobFilter) (int64, error)

	Save(ctx context.Context, job *Job) error
	SaveWithLock(ctx context.Context, job *Job) error
}

// LogRepository persists the append-only sync audit log
type LogRepository interface {
	Append(ctx context.Context, entry *Log) error
	AppendBatch(ctx context.Context, entries []Log) error
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter LogFilter) ([]Log, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter LogFilter) (int64, error)
}
