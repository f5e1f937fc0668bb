package auth

import (
	"github.com/devhaven/marketplace-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims is the payload carried by marketplace access tokens.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"uid"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// SessionID returns the token identifier used to track live sessions.
func (c AccessTokenClaims) SessionID() string {
	return c.ID
}
