// Package server wraps http.Server with graceful shutdown, production-ready
// default timeouts, optional TLS, and errgroup-compatible lifecycle
// management.
//
// Basic usage:
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, router))
//	return g.Wait()
//
// Start blocks until the context is canceled or the listener fails; Stop
// drains in-flight requests within the configured shutdown timeout.
package server
