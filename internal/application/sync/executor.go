package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	orderapp "github.com/marketsync/backend/internal/application/order"
	"github.com/marketsync/backend/internal/domain/inventory"
	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/shared"
	"github.com/marketsync/backend/internal/domain/sync"
)

const (
	// pushBatchPage pages inventory reads so a large catalog does not load at once
	pushBatchPage = 500

	// pullOverlap is re-read behind last_sync_at so edge orders are not missed
	pullOverlap = time.Hour
)

// ExecutorConfig tunes a sync run
type ExecutorConfig struct {
	// PlatformTimeout bounds all calls against a single platform in one phase
	PlatformTimeout time.Duration
	// OrderWindow is the pull range used when a connection has never synced
	OrderWindow time.Duration
}

// DefaultExecutorConfig returns the executor defaults
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		PlatformTimeout: 2 * time.Minute,
		OrderWindow:     7 * 24 * time.Hour,
	}
}

// OrderIngester imports one remote order idempotently
type OrderIngester interface {
	Ingest(ctx context.Context, orgID uuid.UUID, platformType platform.Type, remote platform.RemoteOrder, jobID *uuid.UUID) (*orderapp.IngestResult, error)
}

// Executor runs one sync job to completion. Platforms are isolated from each
// other: a failing platform records its errors on the job and the run moves
// on to the next connection.
type Executor struct {
	jobRepo        sync.JobRepository
	logRepo        sync.LogRepository
	connectionRepo platform.ConnectionRepository
	itemRepo       inventory.InventoryItemRepository
	listingRepo    platform.ListingRepository
	orders         OrderIngester
	clients        platform.ClientRegistry
	cfg            ExecutorConfig
	logger         *zap.Logger
}

// NewExecutor creates a new sync Executor
func NewExecutor(
	jobRepo sync.JobRepository,
	logRepo sync.LogRepository,
	connectionRepo platform.ConnectionRepository,
	itemRepo inventory.InventoryItemRepository,
	listingRepo platform.ListingRepository,
	orders OrderIngester,
	clients platform.ClientRegistry,
	cfg ExecutorConfig,
	logger *zap.Logger,
) *Executor {
	if cfg.PlatformTimeout <= 0 {
		cfg.PlatformTimeout = DefaultExecutorConfig().PlatformTimeout
	}
	if cfg.OrderWindow <= 0 {
		cfg.OrderWindow = DefaultExecutorConfig().OrderWindow
	}
	return &Executor{
		jobRepo:        jobRepo,
		logRepo:        logRepo,
		connectionRepo: connectionRepo,
		itemRepo:       itemRepo,
		listingRepo:    listingRepo,
		orders:         orders,
		clients:        clients,
		cfg:            cfg,
		logger:         logger,
	}
}

// Execute runs a queued job and returns its terminal state. The caller owns
// retry policy; Execute itself never re-runs a failed job.
func (e *Executor) Execute(ctx context.Context, jobID uuid.UUID) (*sync.Job, error) {
	job, err := e.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.IsFinished() {
		return job, nil
	}

	job.Start()
	if err := e.jobRepo.SaveWithLock(ctx, job); err != nil {
		return nil, err
	}

	conns, err := e.eligibleConnections(ctx, job)
	if err != nil {
		job.Fail(fmt.Sprintf("loading connections: %v", err))
		return job, e.jobRepo.SaveWithLock(ctx, job)
	}

	switch job.JobType {
	case sync.JobTypeInventoryPush:
		e.runPhase(ctx, job, conns, e.pushInventoryPhase)
	case sync.JobTypeOrderPull:
		e.runPhase(ctx, job, conns, e.pullOrdersPhase)
	case sync.JobTypeProductPush:
		e.runPhase(ctx, job, conns, e.pushProductsPhase)
	case sync.JobTypeFullSync:
		e.runPhase(ctx, job, conns, e.pushInventoryPhase)
		e.runPhase(ctx, job, conns, e.pullOrdersPhase)
	}

	job.Complete()
	if err := e.jobRepo.SaveWithLock(ctx, job); err != nil {
		return nil, err
	}
	e.logger.Info("sync job finished",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", job.JobType.String()),
		zap.String("status", string(job.Status)),
		zap.Int("success_items", job.SuccessItems),
		zap.Int("failed_items", job.FailedItems))
	return job, nil
}

type phaseFunc func(ctx context.Context, job *sync.Job, conn *platform.Connection)

// runPhase fans one phase out over the job's connections, each under its own
// timeout so a stalled platform cannot eat the whole run.
func (e *Executor) runPhase(ctx context.Context, job *sync.Job, conns []platform.Connection, phase phaseFunc) {
	for i := range conns {
		conn := &conns[i]
		pctx, cancel := context.WithTimeout(ctx, e.cfg.PlatformTimeout)
		phase(pctx, job, conn)
		cancel()
	}
}

func (e *Executor) eligibleConnections(ctx context.Context, job *sync.Job) ([]platform.Connection, error) {
	connected := true
	filter := platform.ConnectionFilter{
		Filter:      shared.DefaultFilter(),
		Platform:    job.Platform,
		IsConnected: &connected,
	}
	filter.PageSize = len(platform.AllTypes())
	return e.connectionRepo.FindAllForOrg(ctx, job.OrgID, filter)
}

// pushInventoryPhase sends current available stock for every tracked SKU to
// one platform. Updates are addressed by the platform's own product ID,
// learned from pulled orders; SKUs without a mapping go out unaddressed and
// fail per item.
func (e *Executor) pushInventoryPhase(ctx context.Context, job *sync.Job, conn *platform.Connection) {
	if !conn.CanSyncInventory() {
		return
	}
	client, err := e.clients.Get(conn.Platform)
	if err != nil {
		job.AddError(fmt.Sprintf("%s: %v", conn.Platform, err))
		return
	}

	items, err := e.loadAllItems(ctx, job.OrgID)
	if err != nil {
		job.AddError(fmt.Sprintf("%s: loading inventory: %v", conn.Platform, err))
		return
	}
	if len(items) == 0 {
		return
	}

	productIDs, err := e.loadListingMap(ctx, job.OrgID, conn.Platform)
	if err != nil {
		job.AddError(fmt.Sprintf("%s: loading listings: %v", conn.Platform, err))
		return
	}

	updates := make([]platform.InventoryUpdate, 0, len(items))
	for i := range items {
		updates = append(updates, platform.InventoryUpdate{
			SKU:               items[i].SKU,
			PlatformProductID: productIDs[items[i].SKU],
			Quantity:          items[i].AvailableStock(),
		})
	}

	result, err := client.PushInventory(ctx, conn.Credentials, updates)
	if err != nil {
		job.AddPhase(len(updates), 0, len(updates))
		job.AddError(fmt.Sprintf("%s: inventory push: %v", conn.Platform, err))
		e.appendLog(ctx, sync.NewLog(job.OrgID, &job.ID, conn.Platform, sync.ActionPushInventory, "", false, err.Error()))
		return
	}

	job.AddPhase(result.TotalCount, result.SuccessCount, result.FailedCount)
	entries := make([]sync.Log, 0, len(result.Failures)+1)
	for _, failure := range result.Failures {
		job.AddError(fmt.Sprintf("%s/%s: %s", conn.Platform, failure.SKU, failure.Reason))
		entries = append(entries, *sync.NewLog(job.OrgID, &job.ID, conn.Platform, sync.ActionPushInventory, failure.SKU, false, failure.Reason))
	}
	entries = append(entries, *sync.NewLog(job.OrgID, &job.ID, conn.Platform, sync.ActionPushInventory, "",
		result.FailedCount == 0, fmt.Sprintf("pushed %d of %d SKUs", result.SuccessCount, result.TotalCount)))
	e.appendLogs(ctx, entries)

	if result.FailedCount == 0 {
		e.markSynced(ctx, conn)
	}
}

// pullOrdersPhase imports new and updated orders from one platform. Each
// order is ingested on its own so one bad payload cannot sink the batch.
func (e *Executor) pullOrdersPhase(ctx context.Context, job *sync.Job, conn *platform.Connection) {
	if !conn.CanSyncOrders() {
		return
	}
	client, err := e.clients.Get(conn.Platform)
	if err != nil {
		job.AddError(fmt.Sprintf("%s: %v", conn.Platform, err))
		return
	}

	window := e.pullWindow(conn)
	remoteOrders, err := client.PullOrders(ctx, conn.Credentials, window)
	if err != nil {
		job.AddPhase(0, 0, 1)
		job.AddError(fmt.Sprintf("%s: order pull: %v", conn.Platform, err))
		e.appendLog(ctx, sync.NewLog(job.OrgID, &job.ID, conn.Platform, sync.ActionPullOrder, "", false, err.Error()))
		return
	}

	success, failed := 0, 0
	entries := make([]sync.Log, 0, len(remoteOrders))
	for i := range remoteOrders {
		remote := remoteOrders[i]
		result, err := e.orders.Ingest(ctx, job.OrgID, conn.Platform, remote, &job.ID)
		if err != nil {
			failed++
			job.AddError(fmt.Sprintf("%s/%s: %v", conn.Platform, remote.PlatformOrderID, err))
			entries = append(entries, *sync.NewLog(job.OrgID, &job.ID, conn.Platform, sync.ActionPullOrder, remote.PlatformOrderID, false, err.Error()))
			continue
		}
		success++
		detail := "refreshed"
		if result.Created {
			detail = "imported"
		}
		entries = append(entries, *sync.NewLog(job.OrgID, &job.ID, conn.Platform, sync.ActionPullOrder, remote.PlatformOrderID, true, detail))
	}
	job.AddPhase(len(remoteOrders), success, failed)
	e.appendLogs(ctx, entries)

	if failed == 0 {
		e.markSynced(ctx, conn)
	}
}

// pushProductsPhase publishes listings for items that carry listing data
func (e *Executor) pushProductsPhase(ctx context.Context, job *sync.Job, conn *platform.Connection) {
	if !conn.CanSyncInventory() {
		return
	}
	client, err := e.clients.Get(conn.Platform)
	if err != nil {
		job.AddError(fmt.Sprintf("%s: %v", conn.Platform, err))
		return
	}

	items, err := e.loadAllItems(ctx, job.OrgID)
	if err != nil {
		job.AddError(fmt.Sprintf("%s: loading inventory: %v", conn.Platform, err))
		return
	}

	success, failed, total := 0, 0, 0
	entries := make([]sync.Log, 0, len(items))
	for i := range items {
		item := &items[i]
		if item.ProductName == "" {
			continue
		}
		total++
		push := platform.ProductPush{
			SKU:   item.SKU,
			Name:  item.ProductName,
			Price: item.Price,
			Stock: item.AvailableStock(),
		}
		if err := client.PushProduct(ctx, conn.Credentials, push); err != nil {
			failed++
			job.AddError(fmt.Sprintf("%s/%s: %v", conn.Platform, item.SKU, err))
			entries = append(entries, *sync.NewLog(job.OrgID, &job.ID, conn.Platform, sync.ActionPushProduct, item.SKU, false, err.Error()))
			continue
		}
		success++
		entries = append(entries, *sync.NewLog(job.OrgID, &job.ID, conn.Platform, sync.ActionPushProduct, item.SKU, true, ""))
	}
	job.AddPhase(total, success, failed)
	e.appendLogs(ctx, entries)

	if total > 0 && failed == 0 {
		e.markSynced(ctx, conn)
	}
}

// pullWindow picks the order pull range: from the last successful sync with
// a small overlap, or the configured default for first-time pulls.
func (e *Executor) pullWindow(conn *platform.Connection) platform.OrderWindow {
	now := time.Now()
	if conn.LastSyncAt != nil {
		since := conn.LastSyncAt.Add(-pullOverlap)
		floor := now.Add(-e.cfg.OrderWindow)
		if since.Before(floor) {
			since = floor
		}
		return platform.OrderWindow{Since: since, Until: now}
	}
	return platform.OrderWindow{Since: now.Add(-e.cfg.OrderWindow), Until: now}
}

// markSynced stamps last_sync_at after a fully successful phase
func (e *Executor) markSynced(ctx context.Context, conn *platform.Connection) {
	conn.MarkSynced(time.Now())
	if err := e.connectionRepo.SaveWithLock(ctx, conn); err != nil {
		e.logger.Warn("failed to stamp last sync time",
			zap.String("org_id", conn.OrgID.String()),
			zap.String("platform", conn.Platform.String()),
			zap.Error(err))
	}
}

// loadListingMap indexes the org's SKU to platform product mappings
func (e *Executor) loadListingMap(ctx context.Context, orgID uuid.UUID, platformType platform.Type) (map[string]string, error) {
	listings, err := e.listingRepo.FindByPlatformForOrg(ctx, orgID, platformType)
	if err != nil {
		return nil, err
	}
	productIDs := make(map[string]string, len(listings))
	for i := range listings {
		productIDs[listings[i].SKU] = listings[i].PlatformProductID
	}
	return productIDs, nil
}

// loadAllItems pages through the org's full inventory
func (e *Executor) loadAllItems(ctx context.Context, orgID uuid.UUID) ([]inventory.InventoryItem, error) {
	var all []inventory.InventoryItem
	filter := inventory.InventoryFilter{Filter: shared.DefaultFilter()}
	filter.PageSize = pushBatchPage
	for page := 1; ; page++ {
		filter.Page = page
		items, err := e.itemRepo.FindAllForOrg(ctx, orgID, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < pushBatchPage {
			return all, nil
		}
	}
}

func (e *Executor) appendLog(ctx context.Context, entry *sync.Log) {
	if err := e.logRepo.Append(ctx, entry); err != nil {
		e.logger.Warn("failed to append sync log", zap.Error(err))
	}
}

func (e *Executor) appendLogs(ctx context.Context, entries []sync.Log) {
	if len(entries) == 0 {
		return
	}
	if err := e.logRepo.AppendBatch(ctx, entries); err != nil {
		e.logger.Warn("failed to append sync logs", zap.Int("count", len(entries)), zap.Error(err))
	}
}
