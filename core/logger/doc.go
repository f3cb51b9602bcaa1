// Package logger provides structured logging utilities built on Go's standard
// slog package, with environment presets and attribute helpers for common
// logging scenarios.
//
// Basic usage:
//
//	log := logger.New(logger.WithDevelopment("inkpress"))
//	log.Info("server starting",
//		logger.Component("server"),
//		logger.Event("startup"),
//	)
//
// Production deployments typically use JSON output:
//
//	log := logger.New(logger.WithProduction("inkpress"))
//
// Attribute helpers return empty attrs for nil/zero input, so call sites
// never need explicit nil checks:
//
//	log.Error("query failed", logger.Error(err), logger.Component("posts"))
package logger
