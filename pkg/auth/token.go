package auth

import (
	"fmt"
	"time"

	"github.com/devhaven/marketplace-backend/pkg/config"
	"github.com/devhaven/marketplace-backend/pkg/enums"
	apperrors "github.com/devhaven/marketplace-backend/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer mints and parses signed access tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(cfg config.JWTConfig) (*TokenIssuer, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &TokenIssuer{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.AccessTokenTTL(),
		now:    time.Now,
	}, nil
}

// MintAccessToken returns a signed token for the user plus its session id.
func (ti *TokenIssuer) MintAccessToken(userID uuid.UUID, role enums.UserRole) (string, string, error) {
	now := ti.now().UTC()
	sessionID := uuid.NewString()

	claims := AccessTokenClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    ti.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, sessionID, nil
}

// ParseAccessToken validates the signature and registered claims of a token.
func (ti *TokenIssuer) ParseAccessToken(raw string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return ti.secret, nil
		},
		jwt.WithIssuer(ti.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return ti.now() }),
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnauthorized, err, "invalid access token")
	}
	if !token.Valid {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid access token")
	}
	if claims.UserID == uuid.Nil || !claims.Role.IsValid() {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid access token")
	}
	return claims, nil
}

// TTL exposes the configured access token lifetime.
func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}
