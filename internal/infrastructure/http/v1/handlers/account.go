package handlers

import (
	"github.com/gin-gonic/gin"

	"bizledger/internal/domain/accounts"
	"bizledger/internal/infrastructure/http/v1/dto"
)

// AccountHandler handles chart-of-accounts requests.
type AccountHandler struct {
	*BaseHandler
	registry *accounts.Registry
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(base *BaseHandler, registry *accounts.Registry) *AccountHandler {
	return &AccountHandler{BaseHandler: base, registry: registry}
}

// Create handles POST /accounts.
func (h *AccountHandler) Create(c *gin.Context) {
	var req dto.CreateAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account, err := h.registry.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, account)
}

// Get handles GET /accounts/:id.
func (h *AccountHandler) Get(c *gin.Context) {
	accountID, ok := h.ParamID(c)
	if !ok {
		return
	}

	account, err := h.registry.GetByID(c.Request.Context(), accountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, account)
}

// Tree handles GET /accounts/tree - the hierarchical chart view.
func (h *AccountHandler) Tree(c *gin.Context) {
	tree, err := h.registry.ListTree(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OKList(c, tree, len(tree), 0, 0)
}

// Deactivate handles POST /accounts/:id/deactivate.
// Deactivated accounts keep their history but reject new postings.
func (h *AccountHandler) Deactivate(c *gin.Context) {
	accountID, ok := h.ParamID(c)
	if !ok {
		return
	}

	account, err := h.registry.Deactivate(c.Request.Context(), accountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, account)
}

// Activate handles POST /accounts/:id/activate.
func (h *AccountHandler) Activate(c *gin.Context) {
	accountID, ok := h.ParamID(c)
	if !ok {
		return
	}

	account, err := h.registry.Activate(c.Request.Context(), accountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, account)
}

// CorrectOpeningBalance handles PUT /accounts/:id/opening-balance.
func (h *AccountHandler) CorrectOpeningBalance(c *gin.Context) {
	accountID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.CorrectOpeningBalanceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account, err := h.registry.CorrectOpeningBalance(c.Request.Context(), accountID, req.OpeningBalance)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, account)
}

// RegisterRoutes registers account routes.
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/tree", h.Tree)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/activate", h.Activate)
	rg.POST("/:id/deactivate", h.Deactivate)
	rg.PUT("/:id/opening-balance", h.CorrectOpeningBalance)
}
