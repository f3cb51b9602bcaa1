package handler

import (
	"context"
	"net/http"
)

// Context defines the contract for request contexts in the application.
// The router provides the default implementation; features that need extra
// request-scoped state can supply their own via a context factory.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	SetValue(key, val any)
}
