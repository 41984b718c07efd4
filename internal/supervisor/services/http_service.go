// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

// Package services contains suture.Service wrappers for the fixed components
// of the kz-api process.
package services

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// HTTPServer matches *http.Server's lifecycle methods, letting tests supply
// a mock.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService adapts an HTTP server's blocking ListenAndServe to
// suture's context-aware Serve.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

// NewHTTPServerService wraps server. shutdownTimeout bounds graceful
// connection draining.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{server: server, shutdownTimeout: shutdownTimeout}
}

// String implements fmt.Stringer for supervisor logs.
func (s *HTTPServerService) String() string { return "http-server" }

// Serve implements suture.Service. http.ErrServerClosed is the expected
// shutdown result and maps to nil.
func (s *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		// Wait for ListenAndServe to return before reporting stopped.
		<-errCh
		return nil
	}
}
