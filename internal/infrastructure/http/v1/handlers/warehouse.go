package handlers

import (
	"github.com/gin-gonic/gin"

	"bizledger/internal/domain/catalogs/warehouse"
	"bizledger/internal/infrastructure/http/v1/dto"
)

// WarehouseHandler handles warehouse catalog requests.
type WarehouseHandler struct {
	*BaseHandler
	service *warehouse.Service
}

// NewWarehouseHandler creates a new warehouse handler.
func NewWarehouseHandler(base *BaseHandler, service *warehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/warehouses.
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, w)
}

// Update handles PUT /catalog/warehouses/:id.
func (h *WarehouseHandler) Update(c *gin.Context) {
	warehouseID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.UpdateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w, err := h.service.Update(c.Request.Context(), warehouseID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, w)
}

// Get handles GET /catalog/warehouses/:id.
func (h *WarehouseHandler) Get(c *gin.Context) {
	warehouseID, ok := h.ParamID(c)
	if !ok {
		return
	}

	w, err := h.service.GetByID(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, w)
}

// List handles GET /catalog/warehouses.
func (h *WarehouseHandler) List(c *gin.Context) {
	activeOnly := c.Query("activeOnly") == "true"

	warehouses, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OKList(c, warehouses, len(warehouses), 0, 0)
}

// RegisterRoutes registers warehouse routes.
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
}
