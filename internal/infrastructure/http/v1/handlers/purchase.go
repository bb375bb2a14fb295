package handlers

import (
	"github.com/gin-gonic/gin"

	"bizledger/internal/domain/documents/purchase"
	"bizledger/internal/domain/posting"
	"bizledger/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler handles purchase document requests.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
	engine  *posting.Engine
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service, engine *posting.Engine) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service, engine: engine}
}

// Create handles POST /documents/purchases - creates a draft.
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
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

// Receive handles POST /documents/purchases/:id/receive - books the lots
// and posts the inventory legs in one transaction.
func (h *PurchaseHandler) Receive(c *gin.Context) {
	purchaseID, ok := h.ParamID(c)
	if !ok {
		return
	}

	doc, err := h.engine.ReceivePurchase(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Get handles GET /documents/purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	purchaseID, ok := h.ParamID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// List handles GET /documents/purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	from, ok := h.QueryTime(c, "from")
	if !ok {
		return
	}
	to, ok := h.QueryTime(c, "to")
	if !ok {
		return
	}

	filter := purchase.ListFilter{
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

// RegisterRoutes registers purchase routes.
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/receive", h.Receive)
}
