package sync

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/shared"
)

// JobType identifies what a sync job does
type JobType string

const (
	JobTypeInventoryPush JobType = "inventory_push"
	JobTypeOrderPull     JobType = "order_pull"
	JobTypeProductPush   JobType = "product_push"
	JobTypeFullSync      JobType = "full_sync"
)

// IsValid checks if the job type is valid
func (t JobType) IsValid() bool {
	switch t {
	case JobTypeInventoryPush, JobTypeOrderPull, JobTypeProductPush, JobTypeFullSync:
		return true
	}
	return false
}

// String returns the string representation
func (t JobType) String() string {
	return string(t)
}

// JobStatus tracks a job through its lifecycle
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsValid checks if the job status is valid
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// maxErrorLogEntries bounds the persisted error log per job
const maxErrorLogEntries = 200

// Job is the aggregate root for one sync run. A job fans out over the
// org's eligible connections; per-item failures accumulate in ErrorLog
// while the job keeps going. A job only ends up failed when nothing at
// all succeeded.
type Job struct {
	shared.OrgAggregateRoot

	JobType JobType   `gorm:"type:varchar(30);not null;index"`
	Status  JobStatus `gorm:"type:varchar(20);not null;default:'pending';index"`

	// Platform restricts the job to one platform when set
	Platform *platform.Type `gorm:"type:varchar(20);index"`

	TotalItems     int `gorm:"not null;default:0"`
	ProcessedItems int `gorm:"not null;default:0"`
	SuccessItems   int `gorm:"not null;default:0"`
	FailedItems    int `gorm:"not null;default:0"`

	ErrorLog []string `gorm:"serializer:json"`

	TriggeredBy *uuid.UUID `gorm:"type:uuid"`
	RetryCount  int        `gorm:"not null;default:0"`

	StartedAt   *time.Time
	CompletedAt *time.Time
}

// TableName returns the database table name
func (Job) TableName() string {
	return "sync_jobs"
}

// NewJob creates a pending sync job
func NewJob(orgID uuid.UUID, jobType JobType, platformType *platform.Type, triggeredBy *uuid.UUID) (*Job, error) {
	if !jobType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown sync job type")
	}
	if platformType != nil && !platformType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unsupported platform type")
	}
	return &Job{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		JobType:          jobType,
		Status:           JobStatusPending,
		Platform:         platformType,
		TriggeredBy:      triggeredBy,
	}, nil
}

// Start marks the job running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.touch()
}

// AddPhase folds one platform phase's counters into the job
func (j *Job) AddPhase(total, success, failed int) {
	j.TotalItems += total
	j.ProcessedItems += success + failed
	j.SuccessItems += success
	j.FailedItems += failed
	j.touch()
}

// AddError appends a per-item failure description. The log is capped so a
// pathological run cannot grow the row without bound.
func (j *Job) AddError(msg string) {
	if len(j.ErrorLog) >= maxErrorLogEntries {
		return
	}
	j.ErrorLog = append(j.ErrorLog, msg)
	j.touch()
}

// Complete finishes the job. Partial failures still count as completed;
// only a run where every item failed (or nothing ran and errors occurred)
// is marked failed.
func (j *Job) Complete() {
	now := time.Now()
	j.CompletedAt = &now
	if j.SuccessItems == 0 && (j.FailedItems > 0 || len(j.ErrorLog) > 0) {
		j.Status = JobStatusFailed
	} else {
		j.Status = JobStatusCompleted
	}
	j.touch()
}

// Fail marks the whole job failed with a terminal reason
func (j *Job) Fail(reason string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.AddError(reason)
}

// IsFinished reports whether the job reached a terminal status
func (j *Job) IsFinished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// NewRetryJob creates a fresh pending run of a failed job. Finished jobs
// are never mutated: the failed row keeps its counters and error log, and
// the retry gets its own row with the attempt count carried forward.
func NewRetryJob(failed *Job, triggeredBy *uuid.UUID) (*Job, error) {
	if failed.Status != JobStatusFailed {
		return nil, shared.NewDomainError("INVALID_TRANSITION", "Only failed sync jobs can be retried")
	}
	retry, err := NewJob(failed.OrgID, failed.JobType, failed.Platform, triggeredBy)
	if err != nil {
		return nil, err
	}
	retry.RetryCount = failed.RetryCount + 1
	return retry, nil
}

func (j *Job) touch() {
	j.UpdatedAt = time.Now()
	j.IncrementVersion()
}
