package models

import "time"

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	ProfileID    string    `json:"profile_id"`
	CompanyID    string    `json:"company_id"`
	Role         Role      `json:"role"`
	IssuedAt     time.Time `json:"issued_at"`
}
