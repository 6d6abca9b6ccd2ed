package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/inventory"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/sync"
)

// Summary is the org-wide dashboard payload
type Summary struct {
	Inventory   InventorySummary    `json:"inventory"`
	Orders      OrderSummary        `json:"orders"`
	Connections []ConnectionSummary `json:"connections"`
	RecentJobs  []JobSummary        `json:"recent_jobs"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// InventorySummary is the stock position block of the dashboard
type InventorySummary struct {
	TotalItems      int64 `json:"total_items"`
	TotalStock      int64 `json:"total_stock"`
	LowStockCount   int64 `json:"low_stock_count"`
	OutOfStockCount int64 `json:"out_of_stock_count"`
}

// OrderSummary is the recent order block of the dashboard
type OrderSummary struct {
	TotalOrders int64            `json:"total_orders"`
	ByStatus    map[string]int64 `json:"by_status"`
	ByPlatform  map[string]int64 `json:"by_platform"`
	Revenue     decimal.Decimal  `json:"revenue"`
}

// ConnectionSummary is one platform row on the dashboard
type ConnectionSummary struct {
	Platform    platform.Type `json:"platform"`
	ShopName    string        `json:"shop_name,omitempty"`
	IsConnected bool          `json:"is_connected"`
	AutoSync    bool          `json:"auto_sync"`
	LastSyncAt  *time.Time    `json:"last_sync_at,omitempty"`
}

// JobSummary is one recent sync job row on the dashboard
type JobSummary struct {
	ID           string         `json:"id"`
	JobType      sync.JobType   `json:"job_type"`
	Status       sync.JobStatus `json:"status"`
	SuccessItems int            `json:"success_items"`
	FailedItems  int            `json:"failed_items"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

func buildSummary(invStats *inventory.Stats, orderStats *order.Stats, conns []platform.Connection, jobs []sync.Job) *Summary {
	byStatus := make(map[string]int64, len(orderStats.ByStatus))
	for status, count := range orderStats.ByStatus {
		byStatus[status.String()] = count
	}
	byPlatform := make(map[string]int64, len(orderStats.ByPlatform))
	for pt, count := range orderStats.ByPlatform {
		byPlatform[pt.String()] = count
	}

	connections := make([]ConnectionSummary, 0, len(conns))
	for i := range conns {
		conn := &conns[i]
		connections = append(connections, ConnectionSummary{
			Platform:    conn.Platform,
			ShopName:    conn.ShopName,
			IsConnected: conn.IsConnected,
			AutoSync:    conn.Settings.AutoSync,
			LastSyncAt:  conn.LastSyncAt,
		})
	}

	recentJobs := make([]JobSummary, 0, len(jobs))
	for i := range jobs {
		job := &jobs[i]
		recentJobs = append(recentJobs, JobSummary{
			ID:           job.ID.String(),
			JobType:      job.JobType,
			Status:       job.Status,
			SuccessItems: job.SuccessItems,
			FailedItems:  job.FailedItems,
			CompletedAt:  job.CompletedAt,
		})
	}

	return &Summary{
		Inventory: InventorySummary{
			TotalItems:      invStats.TotalItems,
			TotalStock:      invStats.TotalStock,
			LowStockCount:   invStats.LowStockCount,
			OutOfStockCount: invStats.OutOfStockCount,
		},
		Orders: OrderSummary{
			TotalOrders: orderStats.TotalOrders,
			ByStatus:    byStatus,
			ByPlatform:  byPlatform,
			Revenue:     orderStats.Revenue,
		},
		Connections: connections,
		RecentJobs:  recentJobs,
		GeneratedAt: time.Now(),
	}
}
