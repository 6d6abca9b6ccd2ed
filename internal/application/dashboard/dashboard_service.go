package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/inventory"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/shared"
	"github.com/marketsync/backend/internal/domain/sync"
)

const (
	// summaryTTL bounds how stale a cached dashboard may be
	summaryTTL = time.Minute

	orderStatsWindow = 30 * 24 * time.Hour
	recentJobCount   = 5
)

// SummaryCache stores rendered dashboard summaries keyed by org
type SummaryCache interface {
	Get(ctx context.Context, orgID uuid.UUID) (*Summary, bool)
	Set(ctx context.Context, orgID uuid.UUID, summary *Summary, ttl time.Duration)
	Invalidate(ctx context.Context, orgID uuid.UUID)
}

// Service aggregates the org-wide dashboard from the other modules
type Service struct {
	itemRepo       inventory.InventoryItemRepository
	orderRepo      order.OrderRepository
	connectionRepo platform.ConnectionRepository
	jobRepo        sync.JobRepository
	cache          SummaryCache
	logger         *zap.Logger
}

// NewService creates a new dashboard Service. The cache is optional.
func NewService(
	itemRepo inventory.InventoryItemRepository,
	orderRepo order.OrderRepository,
	connectionRepo platform.ConnectionRepository,
	jobRepo sync.JobRepository,
	cache SummaryCache,
	logger *zap.Logger,
) *Service {
	return &Service{
		itemRepo:       itemRepo,
		orderRepo:      orderRepo,
		connectionRepo: connectionRepo,
		jobRepo:        jobRepo,
		cache:          cache,
		logger:         logger,
	}
}

// Summarize builds the dashboard summary, serving from cache when fresh
func (s *Service) Summarize(ctx context.Context, orgID uuid.UUID) (*Summary, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, orgID); ok {
			return cached, nil
		}
	}

	invStats, err := s.itemRepo.StatsForOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}

	since := time.Now().Add(-orderStatsWindow)
	orderStats, err := s.orderRepo.StatsForOrg(ctx, orgID, &since)
	if err != nil {
		return nil, err
	}

	conns, err := s.connectionRepo.FindAllForOrg(ctx, orgID, connectionFilter())
	if err != nil {
		return nil, err
	}

	jobs, err := s.jobRepo.FindAllForOrg(ctx, orgID, recentJobFilter())
	if err != nil {
		return nil, err
	}

	summary := buildSummary(invStats, orderStats, conns, jobs)
	if s.cache != nil {
		s.cache.Set(ctx, orgID, summary, summaryTTL)
	}
	return summary, nil
}

// Invalidate drops the cached summary, typically after a sync run finishes
func (s *Service) Invalidate(ctx context.Context, orgID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, orgID)
	}
}

func connectionFilter() platform.ConnectionFilter {
	filter := platform.ConnectionFilter{Filter: shared.DefaultFilter()}
	filter.PageSize = len(platform.AllTypes())
	return filter
}

func recentJobFilter() sync.JobFilter {
	filter := sync.JobFilter{Filter: shared.DefaultFilter()}
	filter.PageSize = recentJobCount
	filter.OrderBy = "created_at"
	filter.OrderDir = "desc"
	return filter
}
