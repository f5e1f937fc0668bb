package auth

import (
	"testing"
	"time"

	"github.com/devhaven/marketplace-backend/pkg/config"
	"github.com/devhaven/marketplace-backend/pkg/enums"
	apperrors "github.com/devhaven/marketplace-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	ti, err := NewTokenIssuer(config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "marketplace",
		ExpirationMinutes: 15,
	})
	require.NoError(t, err)
	return ti
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenIssuer(config.JWTConfig{Issuer: "marketplace"})
	assert.Error(t, err)
}

func TestTokenIssuer_MintAndParse(t *testing.T) {
	t.Parallel()

	ti := testIssuer(t)
	userID := uuid.New()

	raw, sessionID, err := ti.MintAccessToken(userID, enums.UserRoleSeller)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.NotEmpty(t, sessionID)

	claims, err := ti.ParseAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, enums.UserRoleSeller, claims.Role)
	assert.Equal(t, sessionID, claims.SessionID())
	assert.Equal(t, "marketplace", claims.Issuer)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	t.Parallel()

	ti := testIssuer(t)
	raw, _, err := ti.MintAccessToken(uuid.New(), enums.UserRoleBuyer)
	require.NoError(t, err)

	ti.now = func() time.Time { return time.Now().Add(16 * time.Minute) }

	_, err = ti.ParseAccessToken(raw)
	require.Error(t, err)
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code())
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	ti := testIssuer(t)
	raw, _, err := ti.MintAccessToken(uuid.New(), enums.UserRoleBuyer)
	require.NoError(t, err)

	other, err := NewTokenIssuer(config.JWTConfig{
		Secret:            "another-secret",
		Issuer:            "marketplace",
		ExpirationMinutes: 15,
	})
	require.NoError(t, err)

	_, err = other.ParseAccessToken(raw)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	other, err := NewTokenIssuer(config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "someone-else",
		ExpirationMinutes: 15,
	})
	require.NoError(t, err)

	raw, _, err := other.MintAccessToken(uuid.New(), enums.UserRoleBuyer)
	require.NoError(t, err)

	_, err = testIssuer(t).ParseAccessToken(raw)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := testIssuer(t).ParseAccessToken("not.a.token")
	assert.Error(t, err)
}
