package sync

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsync/backend/internal/domain/platform"
)

func createTestJob(t *testing.T, jobType JobType) *Job {
	t.Helper()
	job, err := NewJob(uuid.New(), jobType, nil, nil)
	require.NoError(t, err)
	return job
}

func TestNewJob(t *testing.T) {
	orgID := uuid.New()
	actor := uuid.New()

	t.Run("creates pending job", func(t *testing.T) {
		job, err := NewJob(orgID, JobTypeFullSync, nil, &actor)

		require.NoError(t, err)
		assert.Equal(t, JobStatusPending, job.Status)
		assert.Equal(t, orgID, job.OrgID)
		require.NotNil(t, job.TriggeredBy)
		assert.Equal(t, actor, *job.TriggeredBy)
		assert.Nil(t, job.StartedAt)
	})

	t.Run("accepts platform scope", func(t *testing.T) {
		pt := platform.TypeShopee
		job, err := NewJob(orgID, JobTypeInventoryPush, &pt, nil)

		require.NoError(t, err)
		require.NotNil(t, job.Platform)
		assert.Equal(t, platform.TypeShopee, *job.Platform)
	})

	t.Run("rejects unknown job type", func(t *testing.T) {
		_, err := NewJob(orgID, JobType("dance"), nil, nil)
		require.Error(t, err)
	})

	t.Run("rejects unsupported platform scope", func(t *testing.T) {
		pt := platform.Type("ebay")
		_, err := NewJob(orgID, JobTypeOrderPull, &pt, nil)
		require.Error(t, err)
	})
}

func TestJob_Lifecycle(t *testing.T) {
	t.Run("completes when everything succeeded", func(t *testing.T) {
		job := createTestJob(t, JobTypeInventoryPush)
		job.Start()
		assert.Equal(t, JobStatusRunning, job.Status)
		assert.NotNil(t, job.StartedAt)

		job.AddPhase(10, 10, 0)
		job.Complete()

		assert.Equal(t, JobStatusCompleted, job.Status)
		assert.NotNil(t, job.CompletedAt)
		assert.True(t, job.IsFinished())
	})

	t.Run("partial failure still completes", func(t *testing.T) {
		job := createTestJob(t, JobTypeInventoryPush)
		job.Start()
		job.AddPhase(10, 7, 3)
		job.AddError("shopee/SKU-1: listing not found")
		job.Complete()

		assert.Equal(t, JobStatusCompleted, job.Status)
		assert.Equal(t, 3, job.FailedItems)
		assert.Len(t, job.ErrorLog, 1)
	})

	t.Run("fails when nothing succeeded", func(t *testing.T) {
		job := createTestJob(t, JobTypeOrderPull)
		job.Start()
		job.AddPhase(5, 0, 5)
		job.Complete()

		assert.Equal(t, JobStatusFailed, job.Status)
	})

	t.Run("fails when no items ran but errors were logged", func(t *testing.T) {
		job := createTestJob(t, JobTypeOrderPull)
		job.Start()
		job.AddError("shopee: token expired")
		job.Complete()

		assert.Equal(t, JobStatusFailed, job.Status)
	})

	t.Run("empty run completes", func(t *testing.T) {
		job := createTestJob(t, JobTypeInventoryPush)
		job.Start()
		job.Complete()

		assert.Equal(t, JobStatusCompleted, job.Status)
	})

	t.Run("fail is terminal with reason", func(t *testing.T) {
		job := createTestJob(t, JobTypeFullSync)
		job.Start()
		job.Fail("org has no connected platforms")

		assert.Equal(t, JobStatusFailed, job.Status)
		require.Len(t, job.ErrorLog, 1)
		assert.Contains(t, job.ErrorLog[0], "no connected platforms")
	})
}

func TestJob_AddPhase_Accumulates(t *testing.T) {
	job := createTestJob(t, JobTypeFullSync)
	job.Start()

	job.AddPhase(10, 8, 2)
	job.AddPhase(5, 5, 0)

	assert.Equal(t, 15, job.TotalItems)
	assert.Equal(t, 15, job.ProcessedItems)
	assert.Equal(t, 13, job.SuccessItems)
	assert.Equal(t, 2, job.FailedItems)
}

func TestJob_ErrorLogCap(t *testing.T) {
	job := createTestJob(t, JobTypeInventoryPush)
	for i := 0; i < maxErrorLogEntries+50; i++ {
		job.AddError("boom")
	}
	assert.Len(t, job.ErrorLog, maxErrorLogEntries)
}

func TestNewRetryJob(t *testing.T) {
	actor := uuid.New()

	t.Run("failed job yields a fresh pending run", func(t *testing.T) {
		pt := platform.TypeShopee
		failed, err := NewJob(uuid.New(), JobTypeOrderPull, &pt, nil)
		require.NoError(t, err)
		failed.Start()
		failed.AddPhase(3, 0, 3)
		failed.AddError("shopee: token expired")
		failed.Complete()
		require.Equal(t, JobStatusFailed, failed.Status)

		retry, err := NewRetryJob(failed, &actor)

		require.NoError(t, err)
		assert.NotEqual(t, failed.ID, retry.ID)
		assert.Equal(t, JobStatusPending, retry.Status)
		assert.Equal(t, failed.OrgID, retry.OrgID)
		assert.Equal(t, failed.JobType, retry.JobType)
		require.NotNil(t, retry.Platform)
		assert.Equal(t, platform.TypeShopee, *retry.Platform)
		assert.Equal(t, 1, retry.RetryCount)
		require.NotNil(t, retry.TriggeredBy)
		assert.Equal(t, actor, *retry.TriggeredBy)

		// the failed row keeps its counters and error log
		assert.Equal(t, JobStatusFailed, failed.Status)
		assert.Equal(t, 3, failed.FailedItems)
		assert.Len(t, failed.ErrorLog, 1)
	})

	t.Run("attempt count carries forward", func(t *testing.T) {
		failed := createTestJob(t, JobTypeOrderPull)
		failed.RetryCount = 2
		failed.Start()
		failed.Fail("still unreachable")

		retry, err := NewRetryJob(failed, nil)

		require.NoError(t, err)
		assert.Equal(t, 3, retry.RetryCount)
	})

	t.Run("completed jobs cannot be retried", func(t *testing.T) {
		done := createTestJob(t, JobTypeOrderPull)
		done.Start()
		done.AddPhase(1, 1, 0)
		done.Complete()

		_, err := NewRetryJob(done, nil)
		require.Error(t, err)
	})

	t.Run("pending and running jobs cannot be retried", func(t *testing.T) {
		pending := createTestJob(t, JobTypeInventoryPush)
		_, err := NewRetryJob(pending, nil)
		require.Error(t, err)

		pending.Start()
		_, err = NewRetryJob(pending, nil)
		require.Error(t, err)
	})
}

func TestNewLog(t *testing.T) {
	orgID := uuid.New()
	jobID := uuid.New()

	entry := NewLog(orgID, &jobID, platform.TypeShopee, ActionPushInventory, "SKU-9", false, "listing not found")

	assert.Equal(t, orgID, entry.OrgID)
	require.NotNil(t, entry.JobID)
	assert.Equal(t, jobID, *entry.JobID)
	assert.False(t, entry.Success)
	assert.Equal(t, "SKU-9", entry.EntityRef)
	assert.False(t, entry.RecordedAt.IsZero())
}
