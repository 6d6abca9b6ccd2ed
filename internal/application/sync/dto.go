package sync

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/sync"
)

// JobResponse represents a sync job in API responses
type JobResponse struct {
	ID             uuid.UUID      `json:"id"`
	JobType        sync.JobType   `json:"job_type"`
	Status         sync.JobStatus `json:"status"`
	Platform       *platform.Type `json:"platform,omitempty"`
	TotalItems     int            `json:"total_items"`
	ProcessedItems int            `json:"processed_items"`
	SuccessItems   int            `json:"success_items"`
	FailedItems    int            `json:"failed_items"`
	ErrorLog       []string       `json:"error_log,omitempty"`
	TriggeredBy    *uuid.UUID     `json:"triggered_by,omitempty"`
	RetryCount     int            `json:"retry_count"`
	StartedAt      *time.Time     `json:"started_at,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ToJobResponse converts a domain job to a response DTO
func ToJobResponse(j *sync.Job) *JobResponse {
	return &JobResponse{
		ID:             j.ID,
		JobType:        j.JobType,
		Status:         j.Status,
		Platform:       j.Platform,
		TotalItems:     j.TotalItems,
		ProcessedItems: j.ProcessedItems,
		SuccessItems:   j.SuccessItems,
		FailedItems:    j.FailedItems,
		ErrorLog:       j.ErrorLog,
		TriggeredBy:    j.TriggeredBy,
		RetryCount:     j.RetryCount,
		StartedAt:      j.StartedAt,
		CompletedAt:    j.CompletedAt,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

// LogResponse represents one sync audit record in API responses
type LogResponse struct {
	ID         uuid.UUID     `json:"id"`
	JobID      *uuid.UUID    `json:"job_id,omitempty"`
	Platform   platform.Type `json:"platform"`
	Action     sync.Action   `json:"action"`
	EntityRef  string        `json:"entity_ref,omitempty"`
	Success    bool          `json:"success"`
	Detail     string        `json:"detail,omitempty"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// ToLogResponse converts a domain log entry to a response DTO
func ToLogResponse(l *sync.Log) *LogResponse {
	return &LogResponse{
		ID:         l.ID,
		JobID:      l.JobID,
		Platform:   l.Platform,
		Action:     l.Action,
		EntityRef:  l.EntityRef,
		Success:    l.Success,
		Detail:     l.Detail,
		RecordedAt: l.RecordedAt,
	}
}

// TriggerSyncRequest starts an async sync job
type TriggerSyncRequest struct {
	// Platform limits the run to one platform; empty means all connected
	Platform string `json:"platform" binding:"omitempty,oneof=shopee momo shopline ruten pchome yahoo"`
}

// TriggerSyncResponse acknowledges an accepted sync job
type TriggerSyncResponse struct {
	JobID   uuid.UUID      `json:"job_id"`
	JobType sync.JobType   `json:"job_type"`
	Status  sync.JobStatus `json:"status"`
}

// JobListFilter represents filter options for the job list
type JobListFilter struct {
	JobType  string `form:"job_type" binding:"omitempty,oneof=inventory_push order_pull product_push full_sync"`
	Status   string `form:"status" binding:"omitempty,oneof=pending running completed failed"`
	Platform string `form:"platform" binding:"omitempty,oneof=shopee momo shopline ruten pchome yahoo"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// LogListFilter represents filter options for the sync audit log
type LogListFilter struct {
	JobID    *uuid.UUID `form:"job_id"`
	Platform string     `form:"platform" binding:"omitempty,oneof=shopee momo shopline ruten pchome yahoo"`
	Action   string     `form:"action" binding:"omitempty,oneof=push_inventory pull_order push_product test_connection refresh_token"`
	Success  *bool      `form:"success"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
}
