// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/gokz/kz-api/internal/auth"
	"github.com/gokz/kz-api/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

func TestSessionCleanupSweepsExpired(t *testing.T) {
	store := auth.NewMemorySessionStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expiredID, err := store.Create(ctx, 1, auth.PermissionNone, -time.Minute)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	liveID, err := store.Create(ctx, 2, auth.PermissionNone, time.Hour)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	svc := NewSessionCleanupService(store, 20*time.Millisecond)
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	swept := false
	for time.Now().Before(deadline) {
		if _, err := store.Load(ctx, expiredID); errors.Is(err, auth.ErrSessionNotFound) {
			swept = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !swept {
		t.Fatal("expired session never swept")
	}

	if _, err := store.Load(ctx, liveID); err != nil {
		t.Errorf("live session swept: %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
