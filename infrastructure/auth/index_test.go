package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndDecodeAuthToken(t *testing.T) {
	now := time.Now()
	token, err := GenerateAuthToken(ClaimsData{
		Issuer:    "ekyc",
		Subject:   "ops",
		TokenType: "admin",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Minute).Unix(),
	}, "secret")
	require.NoError(t, err)

	decoded, err := DecodeAuthToken(*token, "secret")
	require.NoError(t, err)
	claims := decoded.Claims.(jwt.MapClaims)
	assert.Equal(t, "ekyc", claims["iss"])
	assert.Equal(t, "ops", claims["sub"])
	assert.Equal(t, "admin", claims["tokenType"])

	_, err = DecodeAuthToken(*token, "other-secret")
	assert.EqualError(t, err, "invalid token signature used")
}

func TestDecodeAuthTokenRejects(t *testing.T) {
	expired, err := GenerateAuthToken(ClaimsData{Issuer: "ekyc", ExpiresAt: time.Now().Add(-time.Minute).Unix()}, "secret")
	require.NoError(t, err)
	_, err = DecodeAuthToken(*expired, "secret")
	assert.Error(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"iss": "ekyc"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = DecodeAuthToken(none, "secret")
	assert.Error(t, err)

	_, err = GenerateAuthToken(ClaimsData{}, "")
	assert.ErrorIs(t, err, ErrMissingSigningKey)
	_, err = DecodeAuthToken("a.b.c", "")
	assert.ErrorIs(t, err, ErrMissingSigningKey)
}
