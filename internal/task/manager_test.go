// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package task

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gokz/kz-api/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

func TestGoRunsTask(t *testing.T) {
	m := NewManager(context.Background())

	var ran atomic.Bool
	task, err := m.Go("test", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	if err != nil {
		t.Fatalf("Go failed: %v", err)
	}

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}

	if !ran.Load() {
		t.Error("task body did not run")
	}
	if task.Err() != nil {
		t.Errorf("unexpected task error: %v", task.Err())
	}
}

func TestGoReturnsTaskError(t *testing.T) {
	m := NewManager(context.Background())

	wantErr := errors.New("boom")
	task, err := m.Go("failing", func(ctx context.Context) error {
		return wantErr
	})
	if err != nil {
		t.Fatalf("Go failed: %v", err)
	}

	<-task.Done()
	if !errors.Is(task.Err(), wantErr) {
		t.Errorf("Err() = %v, want %v", task.Err(), wantErr)
	}
}

func TestGoAfterShutdownFails(t *testing.T) {
	m := NewManager(context.Background())

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if _, err := m.Go("late", func(ctx context.Context) error { return nil }); !errors.Is(err, ErrShuttingDown) {
		t.Errorf("Go after shutdown = %v, want ErrShuttingDown", err)
	}
}

func TestShutdownCancelsAndWaits(t *testing.T) {
	m := NewManager(context.Background())

	const n = 5
	var observed atomic.Int32
	for i := 0; i < n; i++ {
		if _, err := m.Go("worker", func(ctx context.Context) error {
			<-ctx.Done()
			observed.Add(1)
			return ctx.Err()
		}); err != nil {
			t.Fatalf("Go failed: %v", err)
		}
	}

	if m.Len() != n {
		t.Fatalf("Len() = %d, want %d", m.Len(), n)
	}

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if got := observed.Load(); got != n {
		t.Errorf("%d tasks observed cancellation, want %d", got, n)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d after shutdown, want 0", m.Len())
	}
}

func TestShutdownRespectsDeadline(t *testing.T) {
	m := NewManager(context.Background())

	release := make(chan struct{})
	if _, err := m.Go("stuck", func(ctx context.Context) error {
		<-release // ignores cancellation
		return nil
	}); err != nil {
		t.Fatalf("Go failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := m.Shutdown(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown = %v, want deadline exceeded", err)
	}

	close(release)
}

func TestContextInheritsParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	m := NewManager(parent)

	cancel()

	select {
	case <-m.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("manager context not canceled with parent")
	}
}
