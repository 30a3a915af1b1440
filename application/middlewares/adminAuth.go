package middlewares

import (
	"strings"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/constants"
	"ekyc.io/application/interfaces"
	"ekyc.io/infrastructure/auth"
	"ekyc.io/infrastructure/logger"
	"github.com/golang-jwt/jwt/v4"
)

// AdminAuthenticationMiddleware admits bearer tokens signed with signingKey,
// issued by issuer and typed as admin tokens.
func AdminAuthenticationMiddleware(ctx *interfaces.ApplicationContext[any], signingKey string, issuer string) (*interfaces.ApplicationContext[any], bool) {
	header := ctx.GetHeader("Authorization")
	if header == nil || !strings.HasPrefix(*header, "Bearer ") {
		apperrors.AuthenticationError(ctx.Ctx, "provide an admin token to access this route")
		return nil, false
	}
	token, err := auth.DecodeAuthToken(strings.TrimPrefix(*header, "Bearer "), signingKey)
	if err != nil {
		apperrors.AuthenticationError(ctx.Ctx, "this session has expired")
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		apperrors.AuthenticationError(ctx.Ctx, "unauthorised access")
		return nil, false
	}
	if claims["iss"] != issuer {
		logger.Warning("attempt to access admin route with tampered jwt", logger.LoggerOptions{
			Key:  "request_id",
			Data: ctx.RequestID,
		})
		apperrors.AuthenticationError(ctx.Ctx, "unauthorised access")
		return nil, false
	}
	if claims["tokenType"] != constants.ADMIN_TOKEN_TYPE {
		apperrors.AuthenticationError(ctx.Ctx, "unauthorised access")
		return nil, false
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		apperrors.AuthenticationError(ctx.Ctx, "unauthorised access")
		return nil, false
	}
	ctx.Subject = &subject
	return ctx, true
}
