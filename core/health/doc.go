// Package health provides HTTP handlers for service health monitoring.
//
// Liveness reports that the process is running without touching dependencies.
// Readiness runs every registered dependency check and reports 503 when any
// fails. NoContent answers 204 for minimal-overhead probes.
//
// Dependency checks follow the func(context.Context) error signature:
//
//	r.Get("/health/live", health.Liveness[*app.Context])
//	r.Get("/health/ready", health.Readiness[*app.Context](log, db.Ping, cache.Ping))
package health
