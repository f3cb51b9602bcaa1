package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 30 * time.Second

	// Request headers above this size are rejected by net/http.
	maxHeaderBytes = 1 << 20
)

// Server owns the HTTP listener for the application: it serves the router
// (admission pipeline included) and drains in-flight requests on shutdown.
// Safe for concurrent use.
type Server struct {
	mu       sync.Mutex
	log      *slog.Logger
	shutdown time.Duration
	srv      *http.Server
	running  bool
}

// New creates a Server bound to addr. Timeouts start at the package
// defaults; options adjust them before the listener opens.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		shutdown: defaultShutdownTimeout,
		srv: &http.Server{
			Addr:           addr,
			ReadTimeout:    defaultReadTimeout,
			WriteTimeout:   defaultWriteTimeout,
			IdleTimeout:    defaultIdleTimeout,
			MaxHeaderBytes: maxHeaderBytes,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start serves h and blocks until the context is canceled or the listener
// fails. Returns ctx.Err() on cancellation; pair with Stop to drain.
func (s *Server) Start(ctx context.Context, h http.Handler) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrServerAlreadyRunning
	}
	s.running = true
	s.srv.Handler = h
	useTLS := s.srv.TLSConfig != nil
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "http server listening", "addr", s.srv.Addr)

		var err error
		if useTLS {
			err = s.srv.ListenAndServeTLS("", "")
		} else {
			err = s.srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains in-flight requests within the shutdown timeout.
// A no-op when the server is not running.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.log.Info("draining http server", "timeout", s.shutdown)

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()

	err := s.srv.Shutdown(ctx)
	s.running = false

	if err != nil {
		s.log.Error("http server drain failed", "error", err)
		return err
	}

	s.log.Info("http server stopped")
	return nil
}

// Run adapts the start/stop pair to an errgroup task: the returned function
// starts the server, waits for context cancellation, and drains. Cancellation
// is a clean shutdown, not an error.
func (s *Server) Run(ctx context.Context, h http.Handler) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Start(ctx, h)
		}()

		select {
		case <-ctx.Done():
			if err := s.Stop(); err != nil {
				s.log.Error("drain after context cancellation failed", "error", err)
			}
			<-errCh
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}
