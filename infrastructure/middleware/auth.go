package middlewares

import (
	"ekyc.io/application/interfaces"
	"ekyc.io/application/middlewares"
	"ekyc.io/infrastructure/env"
	"github.com/gin-gonic/gin"
)

func AdminAuthenticationMiddleware(cfg env.ServerConfig) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		raw, _ := ctx.Get("AppContext")
		appContext, ok := raw.(*interfaces.ApplicationContext[any])
		if !ok {
			appContext = &interfaces.ApplicationContext[any]{Ctx: ctx, Context: ctx.Request.Context(), Header: ctx.Request.Header}
		}
		appContext, next := middlewares.AdminAuthenticationMiddleware(appContext, cfg.JWTSecret, cfg.JWTIssuer)
		if next {
			ctx.Set("AppContext", appContext)
			ctx.Next()
		}
	}
}
