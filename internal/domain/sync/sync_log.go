package sync

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/shared"
)

// Action identifies one unit of sync work in the audit log
type Action string

const (
	ActionPushInventory  Action = "push_inventory"
	ActionPullOrder      Action = "pull_order"
	ActionPushProduct    Action = "push_product"
	ActionTestConnection Action = "test_connection"
	ActionRefreshToken   Action = "refresh_token"
)

// Log is an append-only audit record of one sync action against one
// platform entity. Rows are written by the sync executor as it works.
type Log struct {
	shared.BaseEntity

	OrgID    uuid.UUID     `gorm:"type:uuid;not null;index:idx_sync_log_org_job"`
	JobID    *uuid.UUID    `gorm:"type:uuid;index:idx_sync_log_org_job"`
	Platform platform.Type `gorm:"type:varchar(20);not null;index"`
	Action   Action        `gorm:"type:varchar(30);not null"`

	// EntityRef identifies the synced entity (a SKU or platform order ID)
	EntityRef string `gorm:"type:varchar(150);index"`

	Success bool   `gorm:"not null"`
	Detail  string `gorm:"type:varchar(1000)"`

	RecordedAt time.Time `gorm:"not null;index"`
}

// TableName returns the database table name
func (Log) TableName() string {
	return "sync_logs"
}

// NewLog creates an audit log entry
func NewLog(orgID uuid.UUID, jobID *uuid.UUID, platformType platform.Type, action Action, entityRef string, success bool, detail string) *Log {
	return &Log{
		BaseEntity: shared.NewBaseEntity(),
		OrgID:      orgID,
		JobID:      jobID,
		Platform:   platformType,
		Action:     action,
		EntityRef:  entityRef,
		Success:    success,
		Detail:     detail,
		RecordedAt: time.Now(),
	}
}
