package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	assert.NoError(t, ComparePassword(hash, "secret"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrPasswordMismatch)
}

func TestHashPassword_UsesConfiguredCost(t *testing.T) {
	hash, err := HashPassword("secret", 5)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}

func TestHashPassword_OutOfRangeCostFallsBack(t *testing.T) {
	hash, err := HashPassword("secret", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestComparePassword_MalformedHash(t *testing.T) {
	err := ComparePassword("not-a-hash", "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestHashPassword_AcceptsPasswordsPastBcryptLimit(t *testing.T) {
	long := strings.Repeat("p", 80)

	hash, err := HashPassword(long, bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, long))
	// differs only after byte 72, which bcrypt alone would ignore
	assert.ErrorIs(t, ComparePassword(hash, strings.Repeat("p", 79)+"q"), ErrPasswordMismatch)
	assert.ErrorIs(t, ComparePassword(hash, strings.Repeat("p", 72)), ErrPasswordMismatch)
}

func TestHashPassword_MultibyteAtLimit(t *testing.T) {
	// 25 runes, 75 bytes
	pw := strings.Repeat("€", 25)

	hash, err := HashPassword(pw, bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, pw))
}
