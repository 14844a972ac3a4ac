package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderCode_Format(t *testing.T) {
	now := time.UnixMilli(1_700_000_123_456)
	code := OrderCode(now)

	assert.Regexp(t, regexp.MustCompile(`^CR123456\d{3}$`), code)
}

func TestOrderCode_PadsShortSuffix(t *testing.T) {
	code := OrderCode(time.UnixMilli(5_000_000_042))
	assert.Regexp(t, regexp.MustCompile(`^CR000042\d{3}$`), code)
}

func TestParseToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", "a@b.com", true, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.True(t, claims.Admin)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", "", false, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "other")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken("user-1", "", false, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_MissingUserID(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_NoSecretConfigured(t *testing.T) {
	_, err := ParseToken("whatever", "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
