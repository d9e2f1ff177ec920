package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the JWT payload for access tokens. The subject is the
// caller principal.
type JWTClaims struct {
	DisplayName string `json:"display_name,omitempty"`
	jwt.RegisteredClaims
}

// Principal returns the caller identity carried by the token.
func (c *JWTClaims) Principal() Principal {
	if c == nil {
		return ""
	}
	return Principal(c.Subject)
}

// DevTokenRequest asks for a locally signed token for a principal.
type DevTokenRequest struct {
	Principal   string `json:"principal" validate:"required,max=128"`
	DisplayName string `json:"display_name" validate:"omitempty,max=128"`
}

// DevTokenResponse returns the issued token.
type DevTokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
}
