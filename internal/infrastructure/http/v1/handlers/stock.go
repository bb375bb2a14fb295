package handlers

import (
	"github.com/gin-gonic/gin"

	"bizledger/internal/domain/inventory"
	"bizledger/internal/infrastructure/http/v1/dto"
)

// StockHandler handles stock engine and stock query requests.
type StockHandler struct {
	*BaseHandler
	engine *inventory.Engine
	reader *inventory.StockLedger
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, engine *inventory.Engine, reader *inventory.StockLedger) *StockHandler {
	return &StockHandler{BaseHandler: base, engine: engine, reader: reader}
}

// Receive handles POST /stock/receive.
func (h *StockHandler) Receive(c *gin.Context) {
	var req dto.ReceiveStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	lot, err := h.engine.Receive(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, lot)
}

// Issue handles POST /stock/issue.
func (h *StockHandler) Issue(c *gin.Context) {
	var req dto.IssueStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	lot, err := h.engine.Issue(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, lot)
}

// Adjust handles POST /stock/adjust.
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	lot, err := h.engine.Adjust(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, lot)
}

// Transfer handles POST /stock/transfer.
func (h *StockHandler) Transfer(c *gin.Context) {
	var req dto.TransferStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.engine.Transfer(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// OnHand handles GET /stock/on-hand/:id with optional warehouseId and
// batch query parameters narrowing the scope.
func (h *StockHandler) OnHand(c *gin.Context) {
	productID, ok := h.ParamID(c)
	if !ok {
		return
	}
	warehouseID, ok := h.QueryID(c, "warehouseId")
	if !ok {
		return
	}

	scope := inventory.OnHandScope{WarehouseID: warehouseID}
	if batch := c.Query("batch"); batch != "" {
		scope.Batch = &batch
	}

	qty, err := h.reader.QuantityOnHand(c.Request.Context(), productID, scope)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.OnHandResponse{ProductID: productID.String(), Quantity: qty}
	if warehouseID != nil {
		s := warehouseID.String()
		resp.WarehouseID = &s
	}
	resp.Batch = scope.Batch
	h.OK(c, resp)
}

// Lots handles GET /stock/lots.
func (h *StockHandler) Lots(c *gin.Context) {
	productID, ok := h.QueryID(c, "productId")
	if !ok {
		return
	}
	warehouseID, ok := h.QueryID(c, "warehouseId")
	if !ok {
		return
	}

	filter := inventory.LotFilter{
		ProductID:   productID,
		WarehouseID: warehouseID,
		ExcludeZero: c.Query("excludeZero") == "true",
	}

	lots, err := h.reader.Lots(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OKList(c, lots, len(lots), 0, 0)
}

// LowStock handles GET /stock/low-stock.
func (h *StockHandler) LowStock(c *gin.Context) {
	warehouseID, ok := h.QueryID(c, "warehouseId")
	if !ok {
		return
	}

	rows, err := h.reader.LowStock(c.Request.Context(), inventory.LowStockScope{WarehouseID: warehouseID})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OKList(c, rows, len(rows), 0, 0)
}

// Expiring handles GET /stock/expiring?days=N.
func (h *StockHandler) Expiring(c *gin.Context) {
	days := h.ParseIntQuery(c, "days", 30)

	lots, err := h.reader.ExpiringWithin(c.Request.Context(), days)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OKList(c, lots, len(lots), 0, 0)
}

// Movements handles GET /stock/movements - the audit trail, newest first.
func (h *StockHandler) Movements(c *gin.Context) {
	productID, ok := h.QueryID(c, "productId")
	if !ok {
		return
	}
	warehouseID, ok := h.QueryID(c, "warehouseId")
	if !ok {
		return
	}
	from, ok := h.QueryTime(c, "from")
	if !ok {
		return
	}
	to, ok := h.QueryTime(c, "to")
	if !ok {
		return
	}

	filter := inventory.MovementFilter{
		ProductID:   productID,
		WarehouseID: warehouseID,
		FromDate:    from,
		ToDate:      to,
		Limit:       h.ParseIntQuery(c, "limit", 100),
		Offset:      h.ParseIntQuery(c, "offset", 0),
	}
	if source := c.Query("source"); source != "" {
		s := inventory.MovementSource(source)
		filter.Source = &s
	}

	movements, err := h.reader.Movements(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OKList(c, movements, len(movements), filter.Limit, filter.Offset)
}

// RegisterRoutes registers stock routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/receive", h.Receive)
	rg.POST("/issue", h.Issue)
	rg.POST("/adjust", h.Adjust)
	rg.POST("/transfer", h.Transfer)
	rg.GET("/on-hand/:id", h.OnHand)
	rg.GET("/lots", h.Lots)
	rg.GET("/low-stock", h.LowStock)
	rg.GET("/expiring", h.Expiring)
	rg.GET("/movements", h.Movements)
}
