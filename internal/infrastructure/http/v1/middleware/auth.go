package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"bizledger/internal/core/apperror"
	appctx "bizledger/internal/core/context"
)

const HeaderAPIKey = "X-API-Key"

// TokenValidator interface for access token validation.
type TokenValidator interface {
	ValidateToken(tokenString string) (*appctx.UserContext, error)
}

// APIKeyVerifier interface for service API key verification.
type APIKeyVerifier interface {
	Verify(secret string) (*appctx.UserContext, error)
}

// Auth middleware authenticates the request and populates user context.
// Accepts either a Bearer JWT or a service API key; the resolved identity
// is what document posting records as created_by.
func Auth(tokens TokenValidator, keys APIKeyVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey := c.GetHeader(HeaderAPIKey); apiKey != "" && keys != nil {
			user, err := keys.Verify(apiKey)
			if err != nil {
				abortUnauthorized(c, "invalid api key")
				return
			}
			attachUser(c, user)
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		user, err := tokens.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		attachUser(c, user)
	}
}

func attachUser(c *gin.Context, user *appctx.UserContext) {
	ctx := appctx.WithUser(c.Request.Context(), user)
	c.Request = c.Request.WithContext(ctx)

	// Store in gin context for easy access
	c.Set("user_id", user.UserID)

	c.Next()
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
