package handlers

import (
	"github.com/gin-gonic/gin"

	"bizledger/internal/domain/documents/sale"
	"bizledger/internal/domain/posting"
	"bizledger/internal/infrastructure/http/v1/dto"
)

// SaleHandler handles sale document requests.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
	engine  *posting.Engine
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service, engine *posting.Engine) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service, engine: engine}
}

// Create handles POST /documents/sales - creates a draft.
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, doc)
}

// Finalize handles POST /documents/sales/:id/finalize - issues the stock
// and posts the revenue and cost legs in one transaction.
func (h *SaleHandler) Finalize(c *gin.Context) {
	saleID, ok := h.ParamID(c)
	if !ok {
		return
	}

	doc, err := h.engine.FinalizeSale(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Get handles GET /documents/sales/:id.
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.ParamID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// List handles GET /documents/sales.
func (h *SaleHandler) List(c *gin.Context) {
	from, ok := h.QueryTime(c, "from")
	if !ok {
		return
	}
	to, ok := h.QueryTime(c, "to")
	if !ok {
		return
	}

	filter := sale.ListFilter{
		Posted:   h.QueryBool(c, "posted"),
		FromDate: from,
		ToDate:   to,
		Limit:    h.ParseIntQuery(c, "limit", 50),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}

	docs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OKList(c, docs, len(docs), filter.Limit, filter.Offset)
}

// RegisterRoutes registers sale routes.
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/finalize", h.Finalize)
}
