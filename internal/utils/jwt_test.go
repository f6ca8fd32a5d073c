package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = Identity{UserID: "6f1c0b8e-8f0e-4c5e-9a57-3f3d6f0d2b11", Username: "alice"}

func newCodec(t *testing.T) *TokenCodec {
	t.Helper()
	c, err := NewTokenCodec("access-secret", "refresh-secret")
	require.NoError(t, err)
	return c
}

func TestNewTokenCodec_RequiresDistinctSecrets(t *testing.T) {
	_, err := NewTokenCodec("", "refresh")
	assert.Error(t, err)
	_, err = NewTokenCodec("same", "same")
	assert.Error(t, err)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	c := newCodec(t)

	issued, err := c.Issue(AccessKind, alice, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.Exp, 2*time.Second)

	claims, err := c.Verify(AccessKind, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, alice, claims.Identity())
	assert.Equal(t, AccessKind, claims.Kind)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.ExpiresAt.Time.Equal(issued.Exp))
}

func TestIssue_TokensAreUnique(t *testing.T) {
	c := newCodec(t)
	a, err := c.Issue(RefreshKind, alice, time.Hour)
	require.NoError(t, err)
	b, err := c.Issue(RefreshKind, alice, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestVerify_KindIsolation(t *testing.T) {
	c := newCodec(t)

	refresh, err := c.Issue(RefreshKind, alice, time.Hour)
	require.NoError(t, err)
	_, err = c.Verify(AccessKind, refresh.Token)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	access, err := c.Issue(AccessKind, alice, time.Hour)
	require.NoError(t, err)
	_, err = c.Verify(RefreshKind, access.Token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_KindClaimChecked(t *testing.T) {
	// Correct secret but the kind claim says refresh.
	claims := Claims{
		Username: alice.Username,
		Kind:     RefreshKind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   alice.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = newCodec(t).Verify(AccessKind, raw)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_Expired(t *testing.T) {
	c := newCodec(t)
	issued, err := c.Issue(AccessKind, alice, time.Minute)
	require.NoError(t, err)

	later := c.WithClock(func() time.Time { return time.Now().Add(2 * time.Minute) })
	_, err = later.Verify(AccessKind, issued.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_Tampered(t *testing.T) {
	c := newCodec(t)
	issued, err := c.Issue(AccessKind, alice, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(issued.Token, ".")
	require.Len(t, parts, 3)
	other, err := c.Issue(AccessKind, Identity{UserID: "someone-else", Username: "mallory"}, time.Hour)
	require.NoError(t, err)
	forged := parts[0] + "." + strings.Split(other.Token, ".")[1] + "." + parts[2]

	_, err = c.Verify(AccessKind, forged)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	_, err = c.Verify(AccessKind, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		Username: alice.Username,
		Kind:     AccessKind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   alice.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = newCodec(t).Verify(AccessKind, raw)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_MissingIdentity(t *testing.T) {
	c := newCodec(t)
	issued, err := c.Issue(AccessKind, Identity{UserID: alice.UserID}, time.Hour)
	require.NoError(t, err)

	_, err = c.Verify(AccessKind, issued.Token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHashRefreshRaw(t *testing.T) {
	h := HashRefreshRaw("token")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashRefreshRaw("token"))
	assert.NotEqual(t, h, HashRefreshRaw("token2"))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret1", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "secret1"))
	assert.False(t, VerifyPassword(hash, "secret2"))
	assert.False(t, VerifyPassword("", "secret1"))
}
