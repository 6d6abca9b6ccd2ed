package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	syncapp "github.com/marketsync/backend/internal/application/sync"
	syncdomain "github.com/marketsync/backend/internal/domain/sync"
)

// JobExecutor runs one persisted sync job to completion
type JobExecutor interface {
	Execute(ctx context.Context, jobID uuid.UUID) (*syncdomain.Job, error)
}

// WorkerPoolConfig tunes the sync worker pool
type WorkerPoolConfig struct {
	// Workers is the number of concurrent job runners
	Workers int
	// QueueSize is the buffered job queue capacity
	QueueSize int
	// JobTimeout is the maximum time a single job may run
	JobTimeout time.Duration
}

// DefaultWorkerPoolConfig returns the pool defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		Workers:    4,
		QueueSize:  100,
		JobTimeout: 15 * time.Minute,
	}
}

// Validate validates the configuration
func (c WorkerPoolConfig) Validate() error {
	if c.Workers <= 0 || c.QueueSize <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// WorkerPool runs sync jobs asynchronously. Job rows are persisted before
// submission; the queue only carries IDs, so a crashed instance loses no job
// data beyond the pending status. Terminal jobs stay terminal: the pool
// never re-queues a failed run on its own, retries come in as new jobs
// through the retry endpoint.
type WorkerPool struct {
	cfg      WorkerPoolConfig
	executor JobExecutor
	logger   *zap.Logger

	jobs      chan uuid.UUID
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewWorkerPool creates a new sync worker pool
func NewWorkerPool(cfg WorkerPoolConfig, executor JobExecutor, logger *zap.Logger) (*WorkerPool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &WorkerPool{
		cfg:      cfg,
		executor: executor,
		logger:   logger,
		jobs:     make(chan uuid.UUID, cfg.QueueSize),
	}, nil
}

// Start launches the workers
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = true
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	p.logger.Info("sync worker pool started",
		zap.Int("workers", p.cfg.Workers),
		zap.Int("queue_size", p.cfg.QueueSize),
		zap.Duration("job_timeout", p.cfg.JobTimeout))
	return nil
}

// Stop drains the pool. Queued jobs still run; the call returns when all
// workers have finished or the context expires.
func (p *WorkerPool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	p.mu.Unlock()

	close(p.jobs)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if p.cancel != nil {
			p.cancel()
		}
		p.logger.Info("sync worker pool stopped")
		return nil
	case <-ctx.Done():
		if p.cancel != nil {
			p.cancel()
		}
		p.logger.Warn("sync worker pool stop timed out")
		return ctx.Err()
	}
}

// Submit hands a persisted job to the pool without blocking
func (p *WorkerPool) Submit(jobID uuid.UUID) error {
	p.mu.Lock()
	running := p.isRunning
	p.mu.Unlock()
	if !running {
		return ErrSchedulerNotRunning
	}

	select {
	case p.jobs <- jobID:
		return nil
	default:
		return syncapp.ErrQueueFull
	}
}

func (p *WorkerPool) worker(ctx context.Context, workerID int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case jobID, ok := <-p.jobs:
			if !ok {
				return
			}
			p.runJob(ctx, jobID, workerID)
		}
	}
}

func (p *WorkerPool) runJob(ctx context.Context, jobID uuid.UUID, workerID int) {
	jobCtx, cancel := context.WithTimeout(ctx, p.cfg.JobTimeout)
	defer cancel()

	job, err := p.executor.Execute(jobCtx, jobID)
	if err != nil {
		p.logger.Error("sync job execution failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", jobID.String()),
			zap.Error(err))
		return
	}

	p.logger.Info("sync job finished",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", job.JobType.String()),
		zap.String("status", string(job.Status)),
		zap.Int("total_items", job.TotalItems),
		zap.Int("success_items", job.SuccessItems),
		zap.Int("failed_items", job.FailedItems))
}

// Ensure WorkerPool implements the submitter port
var _ syncapp.JobSubmitter = (*WorkerPool)(nil)
