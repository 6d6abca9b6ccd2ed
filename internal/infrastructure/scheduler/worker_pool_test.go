package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncapp "github.com/marketsync/backend/internal/application/sync"
	"github.com/marketsync/backend/internal/domain/platform"
	syncdomain "github.com/marketsync/backend/internal/domain/sync"
)

// stubExecutor records executed job IDs and returns scripted jobs
type stubExecutor struct {
	mu       sync.Mutex
	executed []uuid.UUID
	jobs     map[uuid.UUID]*syncdomain.Job
	err      error
	done     chan uuid.UUID
}

func newStubExecutor() *stubExecutor {
	return &stubExecutor{
		jobs: make(map[uuid.UUID]*syncdomain.Job),
		done: make(chan uuid.UUID, 16),
	}
}

func (e *stubExecutor) Execute(ctx context.Context, jobID uuid.UUID) (*syncdomain.Job, error) {
	e.mu.Lock()
	e.executed = append(e.executed, jobID)
	job := e.jobs[jobID]
	err := e.err
	e.mu.Unlock()

	defer func() { e.done <- jobID }()
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (e *stubExecutor) executedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.executed)
}

func newTestPool(t *testing.T, executor JobExecutor) *WorkerPool {
	cfg := DefaultWorkerPoolConfig()
	cfg.Workers = 2
	cfg.QueueSize = 4
	pool, err := NewWorkerPool(cfg, executor, zap.NewNop())
	require.NoError(t, err)
	return pool
}

func pendingJob(t *testing.T) *syncdomain.Job {
	job, err := syncdomain.NewJob(uuid.New(), syncdomain.JobTypeInventoryPush, nil, nil)
	require.NoError(t, err)
	return job
}

func TestWorkerPoolConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultWorkerPoolConfig().Validate())

	bad := DefaultWorkerPoolConfig()
	bad.Workers = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = DefaultWorkerPoolConfig()
	bad.QueueSize = -1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = DefaultWorkerPoolConfig()
	bad.JobTimeout = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}

func TestWorkerPool_ExecutesSubmittedJobs(t *testing.T) {
	executor := newStubExecutor()
	pool := newTestPool(t, executor)

	job := pendingJob(t)
	job.Start()
	job.Complete()
	executor.jobs[job.ID] = job

	require.NoError(t, pool.Start(context.Background()))
	defer pool.Stop(context.Background())

	require.NoError(t, pool.Submit(job.ID))

	select {
	case executed := <-executor.done:
		assert.Equal(t, job.ID, executed)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}
}

func TestWorkerPool_SubmitWhenStopped(t *testing.T) {
	pool := newTestPool(t, newStubExecutor())
	err := pool.Submit(uuid.New())
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestWorkerPool_QueueFull(t *testing.T) {
	executor := newStubExecutor()
	cfg := DefaultWorkerPoolConfig()
	cfg.Workers = 1
	cfg.QueueSize = 1
	pool, err := NewWorkerPool(cfg, executor, zap.NewNop())
	require.NoError(t, err)

	// Pool not started: nothing drains the queue, so the second submit
	// must overflow. Mark running without launching workers.
	pool.mu.Lock()
	pool.isRunning = true
	pool.mu.Unlock()

	require.NoError(t, pool.Submit(uuid.New()))
	err = pool.Submit(uuid.New())
	assert.ErrorIs(t, err, syncapp.ErrQueueFull)
}

func TestWorkerPool_FailedJobIsNotRequeued(t *testing.T) {
	executor := newStubExecutor()
	pool := newTestPool(t, executor)

	job := pendingJob(t)
	job.Start()
	job.Fail("platform unreachable")
	executor.jobs[job.ID] = job

	require.NoError(t, pool.Start(context.Background()))
	defer pool.Stop(context.Background())

	require.NoError(t, pool.Submit(job.ID))

	select {
	case <-executor.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}

	// Failed runs are terminal. Give any stray resubmission time to land.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, executor.executedCount())
	assert.Equal(t, syncdomain.JobStatusFailed, job.Status)
}

func TestWorkerPool_ExecutorErrorOnlyRunsOnce(t *testing.T) {
	executor := newStubExecutor()
	executor.err = errors.New("job row not found")
	pool := newTestPool(t, executor)

	require.NoError(t, pool.Start(context.Background()))
	defer pool.Stop(context.Background())

	require.NoError(t, pool.Submit(uuid.New()))

	select {
	case <-executor.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, executor.executedCount())
}

func TestWorkerPool_StopDrainsQueue(t *testing.T) {
	executor := newStubExecutor()
	pool := newTestPool(t, executor)

	jobs := make([]*syncdomain.Job, 3)
	for i := range jobs {
		jobs[i] = pendingJob(t)
		jobs[i].Start()
		jobs[i].Complete()
		executor.jobs[jobs[i].ID] = jobs[i]
	}

	require.NoError(t, pool.Start(context.Background()))
	for _, job := range jobs {
		require.NoError(t, pool.Submit(job.ID))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))

	assert.Equal(t, len(jobs), executor.executedCount())
}

// Ensure the pool satisfies the submitter port used by the sync service
func TestWorkerPool_ImplementsJobSubmitter(t *testing.T) {
	var _ syncapp.JobSubmitter = (*WorkerPool)(nil)
}

// stubTrigger records full sync triggers
type stubTrigger struct {
	mu       sync.Mutex
	triggers []string
	err      error
}

func (s *stubTrigger) TriggerFullSync(ctx context.Context, orgID uuid.UUID, req syncapp.TriggerSyncRequest, actorID *uuid.UUID) (*syncapp.TriggerSyncResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggers = append(s.triggers, orgID.String()+"/"+req.Platform)
	if s.err != nil {
		return nil, s.err
	}
	return &syncapp.TriggerSyncResponse{JobID: uuid.New()}, nil
}

// MockConnectionRepository is a mock implementation of platform.ConnectionRepository
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*platform.Connection, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.Connection), args.Error(1)
}

func (m *MockConnectionRepository) FindByPlatformForOrg(ctx context.Context, orgID uuid.UUID, platformType platform.Type) (*platform.Connection, error) {
	args := m.Called(ctx, orgID, platformType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.Connection), args.Error(1)
}

func (m *MockConnectionRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter platform.ConnectionFilter) ([]platform.Connection, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]platform.Connection), args.Error(1)
}

func (m *MockConnectionRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter platform.ConnectionFilter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConnectionRepository) FindAutoSyncDue(ctx context.Context) ([]platform.Connection, error) {
	args := m.Called(ctx)
	return args.Get(0).([]platform.Connection), args.Error(1)
}

func (m *MockConnectionRepository) Save(ctx context.Context, conn *platform.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *MockConnectionRepository) SaveWithLock(ctx context.Context, conn *platform.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *MockConnectionRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func TestAutoSyncConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultAutoSyncConfig().Validate())

	bad := DefaultAutoSyncConfig()
	bad.CheckInterval = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}

func TestAutoSyncScheduler_TriggersDueConnections(t *testing.T) {
	orgID := uuid.New()
	conn, err := platform.NewConnection(orgID, platform.TypeShopee, "shop",
		platform.Credentials{"partner_id": "1", "partner_key": "k", "shop_id": "2", "access_token": "t"},
		platform.DefaultSyncSettings(), nil)
	require.NoError(t, err)

	connRepo := new(MockConnectionRepository)
	connRepo.On("FindAutoSyncDue", mock.Anything).Return([]platform.Connection{*conn}, nil)

	trigger := &stubTrigger{}
	cfg := AutoSyncConfig{CheckInterval: 20 * time.Millisecond, LockTTL: time.Second}
	sched, err := NewAutoSyncScheduler(cfg, connRepo, trigger, nil, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop(context.Background())

	assert.Eventually(t, func() bool {
		trigger.mu.Lock()
		defer trigger.mu.Unlock()
		return len(trigger.triggers) > 0
	}, 2*time.Second, 10*time.Millisecond)

	trigger.mu.Lock()
	first := trigger.triggers[0]
	trigger.mu.Unlock()
	assert.Equal(t, orgID.String()+"/shopee", first)
}

func TestAutoSyncScheduler_TriggerFailureDoesNotStopScan(t *testing.T) {
	org1, org2 := uuid.New(), uuid.New()
	creds := platform.Credentials{"api_key": "k", "secret_key": "s"}
	conn1, err := platform.NewConnection(org1, platform.TypeRuten, "shop1", creds, platform.DefaultSyncSettings(), nil)
	require.NoError(t, err)
	conn2, err := platform.NewConnection(org2, platform.TypeRuten, "shop2", creds, platform.DefaultSyncSettings(), nil)
	require.NoError(t, err)

	connRepo := new(MockConnectionRepository)
	connRepo.On("FindAutoSyncDue", mock.Anything).Return([]platform.Connection{*conn1, *conn2}, nil)

	trigger := &stubTrigger{err: errors.New("queue full")}
	cfg := AutoSyncConfig{CheckInterval: 20 * time.Millisecond, LockTTL: time.Second}
	sched, err := NewAutoSyncScheduler(cfg, connRepo, trigger, nil, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop(context.Background())

	assert.Eventually(t, func() bool {
		trigger.mu.Lock()
		defer trigger.mu.Unlock()
		return len(trigger.triggers) >= 2
	}, 2*time.Second, 10*time.Millisecond)
}
