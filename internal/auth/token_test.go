package auth

import (
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
)

const testSecret = "this-is-a-test-secret-with-32-bytes!"

func newTestTokens(t *testing.T) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(testSecret, 8*time.Hour)
	require.NoError(t, err)
	return tm
}

func TestNewTokenManager_ShortSecret(t *testing.T) {
	_, err := NewTokenManager("short", time.Hour)
	require.Error(t, err)
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	tm, err := NewTokenManager(testSecret, 0)
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, tm.TTL())
}

func TestGenerateAndParse(t *testing.T) {
	tm := newTestTokens(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return now }

	token, exp, err := tm.GenerateToken(&domain.User{ID: 42, Role: domain.RoleSoporte})
	require.NoError(t, err)
	assert.Equal(t, now.Add(8*time.Hour), exp)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{UserID: 42, Role: domain.RoleSoporte}, claims.Identity())
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestParseToken_Expired(t *testing.T) {
	tm := newTestTokens(t)
	issued := time.Now().Add(-9 * time.Hour)
	tm.now = func() time.Time { return issued }
	token, _, err := tm.GenerateToken(&domain.User{ID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseToken(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParseToken_WrongSecret(t *testing.T) {
	tm := newTestTokens(t)
	token, _, err := tm.GenerateToken(&domain.User{ID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)

	other, err := NewTokenManager("another-secret-that-is-32-bytes-long", time.Hour)
	require.NoError(t, err)
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Tampered(t *testing.T) {
	tm := newTestTokens(t)
	token, _, err := tm.GenerateToken(&domain.User{ID: 1, Role: domain.RoleUsuario})
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = tm.ParseToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	tm := newTestTokens(t)
	claims := &Claims{
		UserID: 1,
		Role:   domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.ParseToken(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RequiresExpiry(t *testing.T) {
	tm := newTestTokens(t)
	claims := &Claims{UserID: 1, Role: domain.RoleAdmin}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RequiresIdentity(t *testing.T) {
	tm := newTestTokens(t)
	claims := &Claims{
		Role: domain.Role("Root"),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}
