package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPassword      = "SecurePassword123!"
	testWrongPassword = "WrongPassword456!"
)

func TestHashPassword_Success(t *testing.T) {
	hash, err := HashPassword(testPassword)

	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, testPassword, hash)
	assert.Contains(t, hash, "$argon2id$", "hash should carry the Argon2id identifier")
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	first, err := HashPassword(testPassword)
	require.NoError(t, err)
	second, err := HashPassword(testPassword)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same password should hash differently (random salt)")
}

func TestVerifyPassword_Correct(t *testing.T) {
	hash, err := HashPassword(testPassword)
	require.NoError(t, err)

	match, err := VerifyPassword(testPassword, hash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestVerifyPassword_Incorrect(t *testing.T) {
	hash, err := HashPassword(testPassword)
	require.NoError(t, err)

	match, err := VerifyPassword(testWrongPassword, hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	_, err := VerifyPassword(testPassword, "not-an-encoded-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestVerifyPassword_WrongAlgorithm(t *testing.T) {
	_, err := VerifyPassword(testPassword, "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
