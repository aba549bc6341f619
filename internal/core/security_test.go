// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	valid, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("same input")
	require.NoError(t, err)
	second, err := HashPassword("same input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("anything", "not-an-encoded-hash")
	assert.Error(t, err)

	_, err = VerifyPassword("anything", "$bcrypt$v=19$m=1,t=1,p=1$a$b")
	assert.Error(t, err)
}

func TestVerifyPasswordWithRehashCurrentParams(t *testing.T) {
	hash, err := HashPassword("password")
	require.NoError(t, err)

	// current params produce no rehash
	valid, newHash, err := VerifyPasswordWithRehash("password", hash)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Empty(t, newHash)

	valid, newHash, err = VerifyPasswordWithRehash("wrong", hash)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Empty(t, newHash)
}

func TestVerifyPasswordTimingSafeNilHash(t *testing.T) {
	valid, newHash, err := VerifyPasswordTimingSafe("anything", nil)

	require.NoError(t, err)
	assert.False(t, valid)
	assert.Empty(t, newHash)
}

func TestVerifyPasswordTimingSafeRealHash(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)

	valid, _, err := VerifyPasswordTimingSafe("secret", &hash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, _, err = VerifyPasswordTimingSafe("nope", &hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestGenerateResetTokenShape(t *testing.T) {
	token, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	other, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestHashTokenIsStableHex(t *testing.T) {
	hash := HashToken("some-token")

	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashToken("some-token"))
	assert.NotEqual(t, hash, HashToken("another-token"))
}

func TestCompareTokenHash(t *testing.T) {
	hash := HashToken("some-token")

	assert.True(t, CompareTokenHash("some-token", hash))
	assert.False(t, CompareTokenHash("another-token", hash))
}
