// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// mockServer is a controllable HTTPServer.
type mockServer struct {
	listenErr   error
	release     chan struct{}
	shutdownErr error
	shutdowns   chan struct{}
}

func newMockServer() *mockServer {
	return &mockServer{
		release:   make(chan struct{}),
		shutdowns: make(chan struct{}, 1),
	}
}

func (m *mockServer) ListenAndServe() error {
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.release
	return http.ErrServerClosed
}

func (m *mockServer) Shutdown(context.Context) error {
	m.shutdowns <- struct{}{}
	close(m.release)
	return m.shutdownErr
}

func TestHTTPServicePropagatesListenError(t *testing.T) {
	srv := newMockServer()
	srv.listenErr = errors.New("address in use")

	svc := NewHTTPServerService(srv, time.Second)
	err := svc.Serve(context.Background())
	if !errors.Is(err, srv.listenErr) {
		t.Errorf("Serve = %v, want listen error", err)
	}
}

func TestHTTPServiceShutsDownOnCancel(t *testing.T) {
	srv := newMockServer()
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()

	select {
	case <-srv.shutdowns:
	case <-time.After(time.Second):
		t.Fatal("Shutdown never called")
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v, want nil on graceful shutdown", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestHTTPServiceReportsShutdownError(t *testing.T) {
	srv := newMockServer()
	srv.shutdownErr = errors.New("drain timed out")
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, srv.shutdownErr) {
			t.Errorf("Serve = %v, want shutdown error", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}
}
