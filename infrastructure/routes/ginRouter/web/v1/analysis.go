package routev1

import (
	"ekyc.io/application/controller"
	"ekyc.io/application/controller/dto"
	"github.com/gin-gonic/gin"
)

func AnalysisRouter(router *gin.RouterGroup) {
	router.POST("/liveness", func(ctx *gin.Context) {
		appContext, ok := withBody[dto.LivenessDTO](ctx)
		if !ok {
			return
		}
		controller.CheckLiveness(appContext)
	})

	router.POST("/documents/evaluate", func(ctx *gin.Context) {
		appContext, ok := withBody[dto.DocumentEvaluationDTO](ctx)
		if !ok {
			return
		}
		controller.EvaluateDocument(appContext)
	})

	router.POST("/fields/compare", func(ctx *gin.Context) {
		appContext, ok := withBody[dto.FieldComparisonDTO](ctx)
		if !ok {
			return
		}
		controller.CompareFields(appContext)
	})
}
