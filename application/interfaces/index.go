package interfaces

import (
	"context"
	"net/http"
)

// ApplicationContext carries one request through the application layer,
// independent of the transport that received it.
type ApplicationContext[T any] struct {
	Ctx       interface{}
	Context   context.Context
	Body      *T
	Keys      map[string]any
	Header    http.Header
	Param     map[string]any
	RequestID string
	ClientIP  string
	// Subject is the admin identity taken from a verified token.
	Subject *string
}

func (ac *ApplicationContext[T]) GetHeader(key string) *string {
	value := ac.Header.Get(key)
	if value == "" {
		return nil
	}
	return &value
}

// GetContext returns the request context, falling back to Background.
func (ac *ApplicationContext[T]) GetContext() context.Context {
	if ac.Context == nil {
		return context.Background()
	}
	return ac.Context
}

func (ac *ApplicationContext[T]) GetParam(key string) *string {
	raw, ok := ac.Param[key]
	if !ok {
		return nil
	}
	value, ok := raw.(string)
	if !ok || value == "" {
		return nil
	}
	return &value
}
