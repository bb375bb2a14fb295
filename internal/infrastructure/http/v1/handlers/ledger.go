package handlers

import (
	"github.com/gin-gonic/gin"

	"bizledger/internal/domain/ledger"
	"bizledger/internal/infrastructure/http/v1/dto"
)

// LedgerHandler handles posting and ledger read requests.
type LedgerHandler struct {
	*BaseHandler
	poster *ledger.Poster
	reader *ledger.Reader
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, poster *ledger.Poster, reader *ledger.Reader) *LedgerHandler {
	return &LedgerHandler{BaseHandler: base, poster: poster, reader: reader}
}

// PostSet handles POST /ledger/sets - posts one balanced transaction set.
func (h *LedgerHandler) PostSet(c *gin.Context) {
	var req dto.PostSetRequest
	if !h.BindJSON(c, &req) {
		return
	}

	drafts, err := req.ToDrafts()
	if err != nil {
		h.Error(c, err)
		return
	}

	setID, err := h.poster.Post(c.Request.Context(), req.Date, drafts)
	if err != nil {
		h.Error(c, err)
		return
	}

	legs, err := h.reader.GetSet(c.Request.Context(), setID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.PostSetResponse{SetID: setID.String(), Legs: legs})
}

// GetSet handles GET /ledger/sets/:id.
func (h *LedgerHandler) GetSet(c *gin.Context) {
	setID, ok := h.ParamID(c)
	if !ok {
		return
	}

	legs, err := h.reader.GetSet(c.Request.Context(), setID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.PostSetResponse{SetID: setID.String(), Legs: legs})
}

// Balance handles GET /ledger/accounts/:id/balance?asOf=...
func (h *LedgerHandler) Balance(c *gin.Context) {
	accountID, ok := h.ParamID(c)
	if !ok {
		return
	}
	asOf, ok := h.QueryTime(c, "asOf")
	if !ok {
		return
	}

	balance, err := h.reader.Balance(c.Request.Context(), accountID, asOf)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.BalanceResponse{
		AccountID: accountID.String(),
		AsOf:      asOf,
		Balance:   balance,
	})
}

// Ledger handles GET /ledger/accounts/:id/ledger - one chronological page
// with a running balance.
func (h *LedgerHandler) Ledger(c *gin.Context) {
	accountID, ok := h.ParamID(c)
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

	q := ledger.Query{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if from != nil {
		q.From = *from
	}
	if to != nil {
		q.To = *to
	}

	page, err := h.reader.Ledger(c.Request.Context(), accountID, q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, page)
}

// TrialBalance handles GET /ledger/trial-balance?asOf=...
func (h *LedgerHandler) TrialBalance(c *gin.Context) {
	asOf, ok := h.QueryTime(c, "asOf")
	if !ok {
		return
	}

	report, err := h.reader.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// RegisterRoutes registers ledger routes.
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sets", h.PostSet)
	rg.GET("/sets/:id", h.GetSet)
	rg.GET("/accounts/:id/balance", h.Balance)
	rg.GET("/accounts/:id/ledger", h.Ledger)
	rg.GET("/trial-balance", h.TrialBalance)
}
