package auth

import (
	"errors"
	"fmt"

	"ekyc.io/infrastructure/logger"
	"github.com/golang-jwt/jwt/v4"
)

var ErrMissingSigningKey = errors.New("jwt signing key is not configured")

func GenerateAuthToken(claimsData ClaimsData, signingKey string) (*string, error) {
	if signingKey == "" {
		return nil, ErrMissingSigningKey
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":       claimsData.Issuer,
		"sub":       claimsData.Subject,
		"exp":       claimsData.ExpiresAt,
		"iat":       claimsData.IssuedAt,
		"tokenType": claimsData.TokenType,
	}).SignedString([]byte(signingKey))
	if err != nil {
		return nil, err
	}
	return &tokenString, nil
}

// DecodeAuthToken verifies an HS256 token. Any other signing method is rejected.
func DecodeAuthToken(tokenString string, signingKey string) (*jwt.Token, error) {
	if signingKey == "" {
		return nil, ErrMissingSigningKey
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(signingKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, errors.New("invalid token signature used")
		}
		logger.Error("error decoding jwt", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	if !token.Valid {
		err := errors.New("invalid token used")
		logger.Error(err.Error())
		return nil, err
	}
	return token, nil
}
