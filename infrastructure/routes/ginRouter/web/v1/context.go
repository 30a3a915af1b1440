package routev1

import (
	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/interfaces"
	"github.com/gin-gonic/gin"
)

func appContext(ctx *gin.Context) *interfaces.ApplicationContext[any] {
	raw, _ := ctx.Get("AppContext")
	if appCtx, ok := raw.(*interfaces.ApplicationContext[any]); ok {
		return appCtx
	}
	return &interfaces.ApplicationContext[any]{Ctx: ctx, Context: ctx.Request.Context(), Header: ctx.Request.Header}
}

// withBody binds the JSON body and carries the request's context over.
func withBody[T any](ctx *gin.Context) (*interfaces.ApplicationContext[T], bool) {
	var body T
	if err := ctx.ShouldBindJSON(&body); err != nil {
		apperrors.ErrorProcessingPayload(ctx)
		return nil, false
	}
	parent := appContext(ctx)
	return &interfaces.ApplicationContext[T]{
		Ctx:       ctx,
		Context:   ctx.Request.Context(),
		Body:      &body,
		Header:    ctx.Request.Header,
		RequestID: parent.RequestID,
		ClientIP:  ctx.ClientIP(),
		Subject:   parent.Subject,
	}, true
}

func withParams(ctx *gin.Context) *interfaces.ApplicationContext[any] {
	appCtx := appContext(ctx)
	appCtx.Ctx = ctx
	appCtx.Param = map[string]any{}
	for _, p := range ctx.Params {
		appCtx.Param[p.Key] = p.Value
	}
	return appCtx
}
