// Package handler defines the core contracts shared by the router, the
// middleware stack, and route handlers: the request Context interface, the
// Response render function, and the generic Middleware type.
//
// A Response is a deferred render: handlers return a function that writes the
// response instead of writing it directly, which lets middleware decorate
// headers and cookies on any exit path before anything hits the wire.
package handler
