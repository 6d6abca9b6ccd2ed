package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/marketsync/backend/internal/application/inventory"
)

// parseDateTime parses a datetime string in various formats
func parseDateTime(s string) (time.Time, error) {
	// Try RFC3339 first
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	// Try ISO date format
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	// Try datetime without timezone
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	// Default to RFC3339 parsing error
	return time.Parse(time.RFC3339, s)
}

// InventoryHandler handles inventory-related API endpoints
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.Service
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.Service) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// List godoc
// @ID           listInventoryItems
// @Summary      List inventory items
// @Description  Retrieve a paginated list of inventory items with optional filtering
// @Tags         inventory
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        search query string false "Search by SKU or product name"
// @Param        product_id query string false "Filter by product ID" format(uuid)
// @Param        sku query string false "Filter by exact SKU"
// @Param        low_stock query boolean false "Only items at or below their low stock threshold"
// @Param        out_of_stock query boolean false "Only items with zero available stock"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(updated_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]inventoryapp.ItemResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/items [get]
func (h *InventoryHandler) List(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var filter inventoryapp.ItemListFilter
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

	result, err := h.inventoryService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID godoc
// @ID           getInventoryItemById
// @Summary      Get inventory item by ID
// @Description  Retrieve an inventory item by its ID
// @Tags         inventory
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Inventory Item ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/items/{id} [get]
func (h *InventoryHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid inventory item ID format")
		return
	}

	item, err := h.inventoryService.GetByID(c.Request.Context(), orgID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// ListByProduct godoc
// @ID           listInventoryByProduct
// @Summary      List inventory items by product
// @Description  Retrieve all inventory items (variants) tracked for a product
// @Tags         inventory
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[[]inventoryapp.ItemResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/products/{product_id}/items [get]
func (h *InventoryHandler) ListByProduct(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	items, err := h.inventoryService.GetByProduct(c.Request.Context(), orgID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, items)
}

// Create godoc
// @ID           createInventoryItem
// @Summary      Create inventory item
// @Description  Register stock tracking for a product SKU with an optional initial quantity
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        request body inventoryapp.CreateItemRequest true "Inventory item creation request"
// @Success      201 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/items [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req inventoryapp.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.inventoryService.Create(c.Request.Context(), orgID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, item)
}

// Adjust godoc
// @ID           adjustInventoryStock
// @Summary      Adjust stock
// @Description  Apply a signed stock delta to an inventory item and record the movement
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Inventory Item ID" format(uuid)
// @Param        request body inventoryapp.AdjustStockRequest true "Stock adjustment request"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/items/{id}/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid inventory item ID format")
		return
	}

	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.inventoryService.Adjust(c.Request.Context(), orgID, itemID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// Reserve godoc
// @ID           reserveInventoryStock
// @Summary      Reserve stock
// @Description  Hold available stock for a pending order
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Inventory Item ID" format(uuid)
// @Param        request body inventoryapp.ReserveStockRequest true "Stock reservation request"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/items/{id}/reserve [post]
func (h *InventoryHandler) Reserve(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid inventory item ID format")
		return
	}

	var req inventoryapp.ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.inventoryService.Reserve(c.Request.Context(), orgID, itemID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// Release godoc
// @ID           releaseInventoryStock
// @Summary      Release reserved stock
// @Description  Return previously reserved stock to available (e.g. order cancelled)
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Inventory Item ID" format(uuid)
// @Param        request body inventoryapp.ReleaseStockRequest true "Stock release request"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/items/{id}/release [post]
func (h *InventoryHandler) Release(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid inventory item ID format")
		return
	}

	var req inventoryapp.ReleaseStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.inventoryService.Release(c.Request.Context(), orgID, itemID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// UpdateListing godoc
// @ID           updateInventoryListing
// @Summary      Update listing fields
// @Description  Change the product name and price pushed to connected platforms
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Inventory Item ID" format(uuid)
// @Param        request body inventoryapp.UpdateListingRequest true "Listing update request"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/items/{id}/listing [put]
func (h *InventoryHandler) UpdateListing(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid inventory item ID format")
		return
	}

	var req inventoryapp.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.inventoryService.UpdateListing(c.Request.Context(), orgID, itemID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// UpdateThreshold godoc
// @ID           updateInventoryThreshold
// @Summary      Update low stock threshold
// @Description  Change the threshold below which the item counts as low stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Inventory Item ID" format(uuid)
// @Param        request body inventoryapp.UpdateThresholdRequest true "Threshold update request"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/items/{id}/threshold [put]
func (h *InventoryHandler) UpdateThreshold(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid inventory item ID format")
		return
	}

	var req inventoryapp.UpdateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.inventoryService.UpdateThreshold(c.Request.Context(), orgID, itemID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// UpdateLocation godoc
// @ID           updateInventoryLocation
// @Summary      Update warehouse location
// @Description  Change the warehouse location label of an inventory item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Inventory Item ID" format(uuid)
// @Param        request body inventoryapp.UpdateLocationRequest true "Location update request"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/items/{id}/location [put]
func (h *InventoryHandler) UpdateLocation(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid inventory item ID format")
		return
	}

	var req inventoryapp.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.inventoryService.UpdateLocation(c.Request.Context(), orgID, itemID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// ListMovements godoc
// @ID           listStockMovements
// @Summary      List stock movements
// @Description  Retrieve the append-only stock movement ledger with optional filtering
// @Tags         inventory
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        inventory_item_id query string false "Filter by inventory item ID" format(uuid)
// @Param        product_id query string false "Filter by product ID" format(uuid)
// @Param        change_type query string false "Filter by change type" Enums(sale, restock, adjustment, return, damage, sync)
// @Param        reference_type query string false "Filter by reference type" Enums(order, manual, sync)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]inventoryapp.MovementResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var filter inventoryapp.MovementListFilter
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

	result, err := h.inventoryService.Movements(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Stats godoc
// @ID           getInventoryStats
// @Summary      Get inventory statistics
// @Description  Retrieve aggregate stock counts including low and out of stock totals
// @Tags         inventory
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Success      200 {object} APIResponse[inventory.Stats]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/stats [get]
func (h *InventoryHandler) Stats(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	stats, err := h.inventoryService.Stats(c.Request.Context(), orgID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}
