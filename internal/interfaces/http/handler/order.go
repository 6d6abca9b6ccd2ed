package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orderapp "github.com/marketsync/backend/internal/application/order"
)

// OrderHandler handles order-related API endpoints
type OrderHandler struct {
	BaseHandler
	orderService  *orderapp.Service
	exportService *orderapp.ExportService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.Service, exportService *orderapp.ExportService) *OrderHandler {
	return &OrderHandler{
		orderService:  orderService,
		exportService: exportService,
	}
}

// List godoc
// @ID           listOrders
// @Summary      List orders
// @Description  Retrieve a paginated list of orders with optional filtering
// @Tags         orders
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        search query string false "Search by order number, customer name or platform order ID"
// @Param        platform query string false "Filter by source platform" Enums(shopee, momo, shopline, ruten, pchome, yahoo)
// @Param        status query string false "Filter by status" Enums(pending, confirmed, shipped, delivered, cancelled)
// @Param        payment_status query string false "Filter by payment status" Enums(pending, paid, refunded, partial_refund)
// @Param        ordered_after query string false "Orders placed at or after this time" format(date-time)
// @Param        ordered_before query string false "Orders placed at or before this time" format(date-time)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(ordered_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]orderapp.OrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var filter orderapp.OrderListFilter
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

	result, err := h.orderService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID godoc
// @ID           getOrderById
// @Summary      Get order by ID
// @Description  Retrieve an order with its line items and notes
// @Tags         orders
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[orderapp.OrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	result, err := h.orderService.GetByID(c.Request.Context(), orgID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// UpdateStatus godoc
// @ID           updateOrderStatus
// @Summary      Update order status
// @Description  Move an order through its state machine. Cancelling a pending or confirmed order releases its reserved stock.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.UpdateStatusRequest true "Status update request"
// @Success      200 {object} APIResponse[orderapp.OrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req orderapp.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.orderService.UpdateStatus(c.Request.Context(), orgID, orderID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// AddNote godoc
// @ID           addOrderNote
// @Summary      Add order note
// @Description  Append an internal note to an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.AddNoteRequest true "Note request"
// @Success      200 {object} APIResponse[orderapp.OrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/notes [post]
func (h *OrderHandler) AddNote(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req orderapp.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.orderService.AddNote(c.Request.Context(), orgID, orderID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Stats godoc
// @ID           getOrderStats
// @Summary      Get order statistics
// @Description  Retrieve order counts by status and platform plus total revenue
// @Tags         orders
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        since query string false "Only count orders placed at or after this time" format(date-time)
// @Success      200 {object} APIResponse[orderapp.StatsResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /orders/stats [get]
func (h *OrderHandler) Stats(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var since *time.Time
	if sinceStr := c.Query("since"); sinceStr != "" {
		t, err := parseDateTime(sinceStr)
		if err != nil {
			h.BadRequest(c, "Invalid since format")
			return
		}
		since = &t
	}

	stats, err := h.orderService.Stats(c.Request.Context(), orgID, since)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}

// Export godoc
// @ID           exportOrders
// @Summary      Export orders
// @Description  Export filtered orders as an xlsx workbook. When object storage is configured, responds with a download URL instead of the file body.
// @Tags         orders
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        platform query string false "Filter by source platform" Enums(shopee, momo, shopline, ruten, pchome, yahoo)
// @Param        status query string false "Filter by status" Enums(pending, confirmed, shipped, delivered, cancelled)
// @Param        ordered_after query string false "Orders placed at or after this time" format(date-time)
// @Param        ordered_before query string false "Orders placed at or before this time" format(date-time)
// @Success      200 {file} binary "xlsx file"
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /orders/export [get]
func (h *OrderHandler) Export(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var filter orderapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.exportService.Export(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if result.DownloadURL != "" {
		h.Success(c, result)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(200, result.ContentType, result.Data)
}
