// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package supervisor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type noopService struct {
	started atomic.Bool
}

func (s *noopService) String() string { return "noop" }

func (s *noopService) Serve(ctx context.Context) error {
	s.started.Store(true)
	<-ctx.Done()
	return ctx.Err()
}

func TestTreeRunsAndStopsServices(t *testing.T) {
	tree := NewTree(slog.Default(), DefaultTreeConfig())

	apiSvc := &noopService{}
	maintSvc := &noopService{}
	tree.AddAPIService(apiSvc)
	tree.AddMaintenanceService(maintSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if apiSvc.started.Load() && maintSvc.started.Load() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !apiSvc.started.Load() || !maintSvc.started.Load() {
		t.Fatal("services never started")
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop after cancel")
	}
}
