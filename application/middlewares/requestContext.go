package middlewares

import (
	"ekyc.io/application/interfaces"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// RequestContextMiddleware tags the request with the caller's request id, or a
// fresh one when none was sent.
func RequestContextMiddleware(ctx *interfaces.ApplicationContext[any]) (*interfaces.ApplicationContext[any], bool) {
	if id := ctx.GetHeader(RequestIDHeader); id != nil && len(*id) <= 128 {
		ctx.RequestID = *id
	} else {
		ctx.RequestID = uuid.NewString()
	}
	return ctx, true
}
