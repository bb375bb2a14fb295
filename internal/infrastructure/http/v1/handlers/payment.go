package handlers

import (
	"github.com/gin-gonic/gin"

	"bizledger/internal/domain/documents/payment"
	"bizledger/internal/domain/posting"
	"bizledger/internal/infrastructure/http/v1/dto"
)

// PaymentHandler handles payment document requests.
type PaymentHandler struct {
	*BaseHandler
	service *payment.Service
	engine  *posting.Engine
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(base *BaseHandler, service *payment.Service, engine *posting.Engine) *PaymentHandler {
	return &PaymentHandler{BaseHandler: base, service: service, engine: engine}
}

// Create handles POST /documents/payments - creates a draft.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
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

// Record handles POST /documents/payments/:id/record - posts the cash legs.
func (h *PaymentHandler) Record(c *gin.Context) {
	paymentID, ok := h.ParamID(c)
	if !ok {
		return
	}

	doc, err := h.engine.RecordPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Get handles GET /documents/payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	paymentID, ok := h.ParamID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// List handles GET /documents/payments.
func (h *PaymentHandler) List(c *gin.Context) {
	from, ok := h.QueryTime(c, "from")
	if !ok {
		return
	}
	to, ok := h.QueryTime(c, "to")
	if !ok {
		return
	}

	filter := payment.ListFilter{
		Posted:   h.QueryBool(c, "posted"),
		FromDate: from,
		ToDate:   to,
		Limit:    h.ParseIntQuery(c, "limit", 50),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}
	if direction := c.Query("direction"); direction != "" {
		d := payment.Direction(direction)
		filter.Direction = &d
	}

	docs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OKList(c, docs, len(docs), filter.Limit, filter.Offset)
}

// RegisterRoutes registers payment routes.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/record", h.Record)
}
