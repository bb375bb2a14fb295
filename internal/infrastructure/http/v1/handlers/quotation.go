package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"bizledger/internal/core/id"
	"bizledger/internal/domain/documents/quotation"
	"bizledger/internal/infrastructure/http/v1/dto"
)

// QuotationHandler handles quotation workflow requests.
type QuotationHandler struct {
	*BaseHandler
	service *quotation.Service
}

// NewQuotationHandler creates a new quotation handler.
func NewQuotationHandler(base *BaseHandler, service *quotation.Service) *QuotationHandler {
	return &QuotationHandler{BaseHandler: base, service: service}
}

// Create handles POST /documents/quotations - creates a draft.
func (h *QuotationHandler) Create(c *gin.Context) {
	var req dto.CreateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	q, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, q)
}

// Send handles POST /documents/quotations/:id/send.
func (h *QuotationHandler) Send(c *gin.Context) {
	h.transition(c, h.service.Send)
}

// Approve handles POST /documents/quotations/:id/approve.
func (h *QuotationHandler) Approve(c *gin.Context) {
	h.transition(c, h.service.Approve)
}

// Reject handles POST /documents/quotations/:id/reject.
func (h *QuotationHandler) Reject(c *gin.Context) {
	h.transition(c, h.service.Reject)
}

// Convert handles POST /documents/quotations/:id/convert - the one-shot
// conversion of an approved quotation into a finalized sale.
func (h *QuotationHandler) Convert(c *gin.Context) {
	quotationID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.ConvertQuotationRequest
	if c.Request.ContentLength > 0 {
		if !h.BindJSON(c, &req) {
			return
		}
	}

	doc, err := h.service.ConvertToSale(c.Request.Context(), quotationID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, doc)
}

// Get handles GET /documents/quotations/:id.
func (h *QuotationHandler) Get(c *gin.Context) {
	quotationID, ok := h.ParamID(c)
	if !ok {
		return
	}

	q, err := h.service.GetByID(c.Request.Context(), quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, q)
}

// List handles GET /documents/quotations.
func (h *QuotationHandler) List(c *gin.Context) {
	from, ok := h.QueryTime(c, "from")
	if !ok {
		return
	}
	to, ok := h.QueryTime(c, "to")
	if !ok {
		return
	}

	filter := quotation.ListFilter{
		FromDate: from,
		ToDate:   to,
		Limit:    h.ParseIntQuery(c, "limit", 50),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}
	if status := c.Query("status"); status != "" {
		s := quotation.Status(status)
		filter.Status = &s
	}

	quotations, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OKList(c, quotations, len(quotations), filter.Limit, filter.Offset)
}

func (h *QuotationHandler) transition(c *gin.Context, fn func(ctx context.Context, quotationID id.ID) (*quotation.Quotation, error)) {
	quotationID, ok := h.ParamID(c)
	if !ok {
		return
	}

	q, err := fn(c.Request.Context(), quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, q)
}

// RegisterRoutes registers quotation routes.
func (h *QuotationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/send", h.Send)
	rg.POST("/:id/approve", h.Approve)
	rg.POST("/:id/reject", h.Reject)
	rg.POST("/:id/convert", h.Convert)
}
