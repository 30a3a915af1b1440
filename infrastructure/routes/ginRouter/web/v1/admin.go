package routev1

import (
	"ekyc.io/application/controller"
	"ekyc.io/application/controller/dto"
	"ekyc.io/infrastructure/env"
	middlewares "ekyc.io/infrastructure/middleware"
	"github.com/gin-gonic/gin"
)

func AdminRouter(router *gin.RouterGroup, cfg env.ServerConfig) {
	adminRouter := router.Group("/admin")
	adminRouter.Use(middlewares.AdminAuthenticationMiddleware(cfg))
	{
		adminRouter.GET("/verification-config", func(ctx *gin.Context) {
			controller.FetchVerificationConfig(withParams(ctx))
		})

		adminRouter.PUT("/verification-config", func(ctx *gin.Context) {
			appContext, ok := withBody[dto.UpdateVerificationConfigDTO](ctx)
			if !ok {
				return
			}
			controller.UpdateVerificationConfig(appContext)
		})
	}
}
