package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	platformapp "github.com/marketsync/backend/internal/application/platform"
)

// PlatformHandler handles platform connection API endpoints
type PlatformHandler struct {
	BaseHandler
	connectionService *platformapp.ConnectionService
}

// NewPlatformHandler creates a new PlatformHandler
func NewPlatformHandler(connectionService *platformapp.ConnectionService) *PlatformHandler {
	return &PlatformHandler{
		connectionService: connectionService,
	}
}

// List godoc
// @ID           listPlatformConnections
// @Summary      List platform connections
// @Description  Retrieve a paginated list of marketplace connections. Credentials are never returned.
// @Tags         platforms
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        platform query string false "Filter by platform" Enums(shopee, momo, shopline, ruten, pchome, yahoo)
// @Param        is_connected query boolean false "Filter by connection state"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]platformapp.ConnectionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /platforms/connections [get]
func (h *PlatformHandler) List(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var filter platformapp.ConnectionListFilter
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

	result, err := h.connectionService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID godoc
// @ID           getPlatformConnectionById
// @Summary      Get platform connection by ID
// @Description  Retrieve a single marketplace connection
// @Tags         platforms
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Connection ID" format(uuid)
// @Success      200 {object} APIResponse[platformapp.ConnectionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /platforms/connections/{id} [get]
func (h *PlatformHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	connID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid connection ID format")
		return
	}

	conn, err := h.connectionService.GetByID(c.Request.Context(), orgID, connID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, conn)
}

// Connect godoc
// @ID           connectPlatform
// @Summary      Connect a platform
// @Description  Validate credentials against the platform and store the connection. Reconnecting an existing platform replaces its credentials.
// @Tags         platforms
// @Accept       json
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        request body platformapp.ConnectRequest true "Connect request"
// @Success      201 {object} APIResponse[platformapp.ConnectionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /platforms/connections [post]
func (h *PlatformHandler) Connect(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req platformapp.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	conn, err := h.connectionService.Connect(c.Request.Context(), orgID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, conn)
}

// UpdateSettings godoc
// @ID           updatePlatformSettings
// @Summary      Update sync settings
// @Description  Merge the provided fields into the connection's sync settings. Omitted fields keep their current values.
// @Tags         platforms
// @Accept       json
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Connection ID" format(uuid)
// @Param        request body platformapp.UpdateSettingsRequest true "Settings patch"
// @Success      200 {object} APIResponse[platformapp.ConnectionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /platforms/connections/{id}/settings [put]
func (h *PlatformHandler) UpdateSettings(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	connID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid connection ID format")
		return
	}

	var req platformapp.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	conn, err := h.connectionService.UpdateSettings(c.Request.Context(), orgID, connID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, conn)
}

// Disconnect godoc
// @ID           disconnectPlatform
// @Summary      Disconnect a platform
// @Description  Clear stored credentials and mark the connection as disconnected. Settings and sync history are kept.
// @Tags         platforms
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Connection ID" format(uuid)
// @Success      200 {object} APIResponse[platformapp.ConnectionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /platforms/connections/{id}/disconnect [post]
func (h *PlatformHandler) Disconnect(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	connID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid connection ID format")
		return
	}

	conn, err := h.connectionService.Disconnect(c.Request.Context(), orgID, connID, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, conn)
}

// Remove godoc
// @ID           removePlatformConnection
// @Summary      Remove a platform connection
// @Description  Soft-delete a connection and its settings
// @Tags         platforms
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Connection ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /platforms/connections/{id} [delete]
func (h *PlatformHandler) Remove(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	connID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid connection ID format")
		return
	}

	if err := h.connectionService.Remove(c.Request.Context(), orgID, connID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// RefreshToken godoc
// @ID           refreshPlatformToken
// @Summary      Refresh platform token
// @Description  Exchange the stored credentials for a fresh access token on platforms that expire them
// @Tags         platforms
// @Produce      json
// @Param        X-Org-ID header string false "Org ID (optional for dev)"
// @Param        id path string true "Connection ID" format(uuid)
// @Success      200 {object} APIResponse[platformapp.ConnectionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /platforms/connections/{id}/refresh-token [post]
func (h *PlatformHandler) RefreshToken(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	connID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid connection ID format")
		return
	}

	conn, err := h.connectionService.RefreshToken(c.Request.Context(), orgID, connID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, conn)
}
