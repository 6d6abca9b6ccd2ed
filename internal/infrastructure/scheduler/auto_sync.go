package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	syncapp "github.com/marketsync/backend/internal/application/sync"
	"github.com/marketsync/backend/internal/domain/platform"
)

// autoSyncLockKey serializes the due-connection scan across instances
const autoSyncLockKey = "marketsync:auto_sync:leader"

// FullSyncTrigger starts a full sync for one org and platform
type FullSyncTrigger interface {
	TriggerFullSync(ctx context.Context, orgID uuid.UUID, req syncapp.TriggerSyncRequest, actorID *uuid.UUID) (*syncapp.TriggerSyncResponse, error)
}

// AutoSyncConfig tunes the auto-sync ticker
type AutoSyncConfig struct {
	// CheckInterval is how often due connections are scanned
	CheckInterval time.Duration
	// LockTTL is the distributed leader lock TTL; must exceed one scan
	LockTTL time.Duration
}

// DefaultAutoSyncConfig returns the ticker defaults
func DefaultAutoSyncConfig() AutoSyncConfig {
	return AutoSyncConfig{
		CheckInterval: time.Minute,
		LockTTL:       50 * time.Second,
	}
}

// Validate validates the configuration
func (c AutoSyncConfig) Validate() error {
	if c.CheckInterval <= 0 || c.LockTTL <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// AutoSyncScheduler periodically scans for connections whose auto-sync
// interval has elapsed and triggers a full sync for each. A Redis lock
// elects a single scanning instance per tick; without a locker the
// scheduler assumes a single-instance deployment.
type AutoSyncScheduler struct {
	cfg            AutoSyncConfig
	connectionRepo platform.ConnectionRepository
	trigger        FullSyncTrigger
	locker         *redislock.Client
	logger         *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewAutoSyncScheduler creates a new auto-sync scheduler. The locker may be
// nil for single-instance deployments.
func NewAutoSyncScheduler(
	cfg AutoSyncConfig,
	connectionRepo platform.ConnectionRepository,
	trigger FullSyncTrigger,
	locker *redislock.Client,
	logger *zap.Logger,
) (*AutoSyncScheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &AutoSyncScheduler{
		cfg:            cfg,
		connectionRepo: connectionRepo,
		trigger:        trigger,
		locker:         locker,
		logger:         logger,
	}, nil
}

// Start launches the ticker loop
func (s *AutoSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("auto-sync scheduler started",
		zap.Duration("check_interval", s.cfg.CheckInterval),
		zap.Bool("distributed_lock", s.locker != nil))
	return nil
}

// Stop halts the ticker loop
func (s *AutoSyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("auto-sync scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AutoSyncScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick scans once, guarded by the leader lock when one is configured
func (s *AutoSyncScheduler) tick(ctx context.Context) {
	if s.locker != nil {
		lock, err := s.locker.Obtain(ctx, autoSyncLockKey, s.cfg.LockTTL, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			return
		}
		if err != nil {
			s.logger.Error("failed to obtain auto-sync lock", zap.Error(err))
			return
		}
		defer func() {
			if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				s.logger.Warn("failed to release auto-sync lock", zap.Error(err))
			}
		}()
	}

	s.runDueSyncs(ctx)
}

// runDueSyncs triggers a full sync for every connection past its interval
func (s *AutoSyncScheduler) runDueSyncs(ctx context.Context) {
	conns, err := s.connectionRepo.FindAutoSyncDue(ctx)
	if err != nil {
		s.logger.Error("failed to scan auto-sync connections", zap.Error(err))
		return
	}
	if len(conns) == 0 {
		return
	}

	s.logger.Info("auto-sync connections due", zap.Int("count", len(conns)))
	for i := range conns {
		conn := &conns[i]
		req := syncapp.TriggerSyncRequest{Platform: string(conn.Platform)}
		if _, err := s.trigger.TriggerFullSync(ctx, conn.OrgID, req, nil); err != nil {
			// One org's failure must not starve the rest of the scan
			s.logger.Warn("auto-sync trigger failed",
				zap.String("org_id", conn.OrgID.String()),
				zap.String("platform", string(conn.Platform)),
				zap.Error(err))
		}
	}
}
