package dto

import "time"

// TokenRequest exchanges a service API key for a short-lived access token.
type TokenRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// TokenResponse carries the issued access token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
