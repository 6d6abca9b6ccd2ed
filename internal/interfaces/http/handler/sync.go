package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	syncapp "github.com/marketsync/backend/internal/application/sync"
	"github.com/marketsync/backend/internal/interfaces/http/dto"
)

// triggerFunc is the shared shape of the sync trigger service methods
type triggerFunc func(ctx context.Context, orgID uuid.UUID, req syncapp.TriggerSyncRequest, actorID *uuid.UUID) (*syncapp.TriggerSyncResponse, error)

// SyncHandler handles sync orchestration API endpoints
type SyncHandler struct {
	BaseHandler
	syncService *syncapp.Service
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *syncapp.Service) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
	}
}

// trigger binds the request, runs the trigger and responds 202 Accepted
func (h *SyncHandler) trigger(c *gin.Context, fn triggerFunc) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req syncapp.TriggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := fn(c.Request.Context(), orgID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(result))
}

// PushInventory godoc
// @ID           triggerInventoryPush
// @Summary      Trigger inventory push
// @Description  Queue an async job that pushes current stock levels to connected platforms. Returns immediately with the job ID.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        request body syncapp.TriggerSyncRequest true "Sync trigger request"
// @Success      202 {object} APIResponse[syncapp.TriggerSyncResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      503 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /sync/inventory/push [post]
func (h *SyncHandler) PushInventory(c *gin.Context) {
	h.trigger(c, h.syncService.TriggerInventoryPush)
}

// PullOrders godoc
// @ID           triggerOrderPull
// @Summary      Trigger order pull
// @Description  Queue an async job that fetches new and updated orders from connected platforms
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        request body syncapp.TriggerSyncRequest true "Sync trigger request"
// @Success      202 {object} APIResponse[syncapp.TriggerSyncResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      503 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /sync/orders/pull [post]
func (h *SyncHandler) PullOrders(c *gin.Context) {
	h.trigger(c, h.syncService.TriggerOrderPull)
}

// PushProducts godoc
// @ID           triggerProductPush
// @Summary      Trigger product push
// @Description  Queue an async job that pushes listing details (name, price) to connected platforms
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        request body syncapp.TriggerSyncRequest true "Sync trigger request"
// @Success      202 {object} APIResponse[syncapp.TriggerSyncResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      503 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /sync/products/push [post]
func (h *SyncHandler) PushProducts(c *gin.Context) {
	h.trigger(c, h.syncService.TriggerProductPush)
}

// FullSync godoc
// @ID           triggerFullSync
// @Summary      Trigger full sync
// @Description  Queue an async job that pulls orders first and then pushes inventory for connected platforms
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        request body syncapp.TriggerSyncRequest true "Sync trigger request"
// @Success      202 {object} APIResponse[syncapp.TriggerSyncResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      503 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /sync/full [post]
func (h *SyncHandler) FullSync(c *gin.Context) {
	h.trigger(c, h.syncService.TriggerFullSync)
}

// RetryJob godoc
// @ID           retrySyncJob
// @Summary      Retry a failed sync job
// @Description  Queue a fresh run of a failed sync job. The failed job keeps its counters and error log; the new run gets its own job ID.
// @Tags         sync
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Job ID" format(uuid)
// @Success      202 {object} APIResponse[syncapp.TriggerSyncResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      503 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /sync/jobs/{id}/retry [post]
func (h *SyncHandler) RetryJob(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid job ID format")
		return
	}

	result, err := h.syncService.RetryJob(c.Request.Context(), orgID, jobID, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(result))
}

// GetJob godoc
// @ID           getSyncJobById
// @Summary      Get sync job by ID
// @Description  Retrieve a sync job with its progress counters and error log
// @Tags         sync
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} APIResponse[syncapp.JobResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /sync/jobs/{id} [get]
func (h *SyncHandler) GetJob(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid job ID format")
		return
	}

	job, err := h.syncService.GetJob(c.Request.Context(), orgID, jobID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, job)
}

// ListJobs godoc
// @ID           listSyncJobs
// @Summary      List sync jobs
// @Description  Retrieve a paginated list of sync jobs, most recent first
// @Tags         sync
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        job_type query string false "Filter by job type" Enums(inventory_push, order_pull, product_push, full_sync)
// @Param        status query string false "Filter by status" Enums(pending, running, completed, failed)
// @Param        platform query string false "Filter by platform" Enums(shopee, momo, shopline, ruten, pchome, yahoo)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]syncapp.JobResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /sync/jobs [get]
func (h *SyncHandler) ListJobs(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var filter syncapp.JobListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	result, err := h.syncService.ListJobs(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListLogs godoc
// @ID           listSyncLogs
// @Summary      List sync audit logs
// @Description  Retrieve a paginated list of per-entity sync audit records
// @Tags         sync
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        job_id query string false "Filter by job ID" format(uuid)
// @Param        platform query string false "Filter by platform" Enums(shopee, momo, shopline, ruten, pchome, yahoo)
// @Param        action query string false "Filter by action" Enums(push_inventory, pull_order, push_product, test_connection, refresh_token)
// @Param        success query boolean false "Filter by outcome"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]syncapp.LogResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /sync/logs [get]
func (h *SyncHandler) ListLogs(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var filter syncapp.LogListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	result, err := h.syncService.ListLogs(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
