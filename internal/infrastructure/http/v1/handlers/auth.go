package handlers

import (
	"github.com/gin-gonic/gin"

	"bizledger/internal/core/apperror"
	"bizledger/internal/domain/auth"
	"bizledger/internal/infrastructure/http/v1/dto"
)

// AuthHandler exchanges service API keys for short-lived access tokens.
type AuthHandler struct {
	*BaseHandler
	tokens *auth.JWTService
	keys   *auth.APIKeySet
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, tokens *auth.JWTService, keys *auth.APIKeySet) *AuthHandler {
	return &AuthHandler{BaseHandler: base, tokens: tokens, keys: keys}
}

// Token handles POST /auth/token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.keys.Verify(req.APIKey)
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("invalid api key"))
		return
	}

	token, expiresAt, err := h.tokens.GenerateAccessToken(user.UserID, user.Email, user.IsService)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	h.OK(c, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/token", h.Token)
}
