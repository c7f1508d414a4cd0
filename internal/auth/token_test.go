package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/parking-service/internal/domain"
)

var testIdentity = domain.Identity{UserID: "user-123", Email: "a@x.com", Role: domain.RoleOwner}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestGenerateAndParse_Success(t *testing.T) {
	tm := NewTokenManager("super-secret", 24*time.Hour)

	issued, err := tm.GenerateToken(testIdentity)
	require.NoError(t, err)

	claims, err := tm.ParseToken(issued.Value)
	require.NoError(t, err)
	assert.Equal(t, testIdentity, claims.Identity())
	assert.Equal(t, testIdentity.UserID, claims.Subject)
}

func TestParseToken_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Unix(1_700_000_000, 0)
	c := &clock{t: issuedAt}
	tm := NewTokenManager("secret", 24*time.Hour).WithClock(c.now)

	issued, err := tm.GenerateToken(testIdentity)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(24*time.Hour), issued.ExpiresAt)

	for _, offset := range []time.Duration{0, time.Hour, 24*time.Hour - time.Second} {
		c.t = issuedAt.Add(offset)
		_, err := tm.ParseToken(issued.Value)
		assert.NoError(t, err, "offset %s should be valid", offset)
	}

	for _, offset := range []time.Duration{24 * time.Hour, 25 * time.Hour} {
		c.t = issuedAt.Add(offset)
		_, err := tm.ParseToken(issued.Value)
		assert.ErrorIs(t, err, ErrInvalidToken, "offset %s should be expired", offset)
	}
}

func TestGenerateToken_SubSecondIssueRoundsExpiryUp(t *testing.T) {
	issuedAt := time.Unix(1_700_000_020, 900_000_000)
	c := &clock{t: issuedAt}
	tm := NewTokenManager("secret", 24*time.Hour).WithClock(c.now)

	issued, err := tm.GenerateToken(testIdentity)
	require.NoError(t, err)
	assert.True(t, issued.ExpiresAt.Equal(time.Unix(1_700_086_421, 0)), "got %s", issued.ExpiresAt)

	c.t = issuedAt.Add(24*time.Hour - 500*time.Millisecond)
	_, err = tm.ParseToken(issued.Value)
	assert.NoError(t, err)

	c.t = issued.ExpiresAt
	_, err = tm.ParseToken(issued.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_WrongSecret(t *testing.T) {
	issued, err := NewTokenManager("right-secret", time.Hour).GenerateToken(testIdentity)
	require.NoError(t, err)

	_, err = NewTokenManager("wrong-secret", time.Hour).ParseToken(issued.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Tampered(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	issued, err := tm.GenerateToken(testIdentity)
	require.NoError(t, err)

	parts := strings.Split(issued.Value, ".")
	require.Len(t, parts, 3)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "someone-else"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	_, err = tm.ParseToken(parts[0] + "." + forgedParts[1] + "." + parts[2])
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RejectsMissingExpiry(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "u"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{UserID: "u", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := NewTokenManager("secret", time.Hour).ParseToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
