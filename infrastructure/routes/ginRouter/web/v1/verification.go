package routev1

import (
	"ekyc.io/application/controller"
	"ekyc.io/application/controller/dto"
	"github.com/gin-gonic/gin"
)

func VerificationRouter(router *gin.RouterGroup) {
	verificationRouter := router.Group("/verifications")
	{
		verificationRouter.POST("", func(ctx *gin.Context) {
			appContext, ok := withBody[dto.VerificationDTO](ctx)
			if !ok {
				return
			}
			controller.Verify(appContext)
		})

		verificationRouter.GET("/stats", func(ctx *gin.Context) {
			controller.VerificationStats(withParams(ctx))
		})

		verificationRouter.GET("/:id", func(ctx *gin.Context) {
			controller.FetchVerification(withParams(ctx))
		})
	}
}
