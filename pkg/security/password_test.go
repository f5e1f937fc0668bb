package security

import (
	"strings"
	"testing"

	"github.com/devhaven/marketplace-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashPassword_Format(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple", testPasswordConfig())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
	assert.Len(t, strings.Split(hash, "$"), 6)
}

func TestHashPassword_EmptyRejected(t *testing.T) {
	t.Parallel()

	_, err := HashPassword("", testPasswordConfig())
	assert.Error(t, err)
}

func TestVerifyPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := testPasswordConfig()
	hash, err := HashPassword("s3cret!", cfg)
	require.NoError(t, err)

	ok, err := VerifyPassword("s3cret!", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_UniqueSalts(t *testing.T) {
	t.Parallel()

	cfg := testPasswordConfig()
	first, err := HashPassword("same-password", cfg)
	require.NoError(t, err)
	second, err := HashPassword("same-password", cfg)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=8,t=1,p=1$abc$def",
		"$argon2id$v=19$m=8,t=1$abc$def",
		"$argon2id$v=19$m=8,t=1,p=1$!!!$def",
	}
	for _, encoded := range cases {
		_, err := VerifyPassword("pw", encoded)
		assert.ErrorIs(t, err, ErrInvalidHash, encoded)
	}
}
