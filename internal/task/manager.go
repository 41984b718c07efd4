// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

// Package task tracks background goroutines spawned at runtime (one per
// game-server connection, plus ad-hoc work) so process shutdown can cancel
// them cooperatively and wait for every one of them to finish.
//
// Long-lived services with a fixed lifetime (HTTP server, session sweeper)
// live under the suture supervision tree instead; this package exists for
// tasks whose number and lifetime are driven by external clients.
package task

import (
	"context"
	"errors"
	"sync"

	"github.com/gokz/kz-api/internal/logging"
)

// ErrShuttingDown is returned by Go once Shutdown has been initiated. No task
// is created in that case.
var ErrShuttingDown = errors.New("task manager is shutting down")

// Task is a handle to a spawned task. Wait on Done(), then read Err().
type Task struct {
	name string
	done chan struct{}
	err  error
}

// Name returns the label the task was spawned with.
func (t *Task) Name() string { return t.name }

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the task's result. Only valid after Done() is closed.
func (t *Task) Err() error { return t.err }

// Manager is a process-wide registry of in-flight tasks with coordinated
// cancellation. Spawned task bodies receive a child context of the manager's
// root context and must return promptly once it is canceled.
//
// Invariants:
//   - after Shutdown begins, Go fails with ErrShuttingDown
//   - Shutdown returns only after every previously spawned task has finished
type Manager struct {
	mu       sync.Mutex
	tasks    map[*Task]struct{}
	closed   bool
	rootCtx  context.Context
	cancel   context.CancelFunc
	finished chan struct{} // signaled (non-blocking) whenever a task completes
}

// NewManager creates a task manager whose root context is a child of ctx.
func NewManager(ctx context.Context) *Manager {
	rootCtx, cancel := context.WithCancel(ctx)
	return &Manager{
		tasks:    make(map[*Task]struct{}),
		rootCtx:  rootCtx,
		cancel:   cancel,
		finished: make(chan struct{}, 1),
	}
}

// Context returns a child of the manager's root cancellation context. Work
// that observes cancellation but is not itself tracked can select on this.
func (m *Manager) Context() context.Context {
	return m.rootCtx
}

// Go spawns fn as a tracked task. fn receives a child of the root context and
// is expected to return once that context is canceled. The returned handle
// can be awaited; errors other than context.Canceled are logged when the
// caller discards the handle.
func (m *Manager) Go(name string, fn func(ctx context.Context) error) (*Task, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrShuttingDown
	}

	t := &Task{name: name, done: make(chan struct{})}
	m.tasks[t] = struct{}{}
	m.mu.Unlock()

	go func() {
		err := fn(m.rootCtx)

		t.err = err
		close(t.done)

		m.mu.Lock()
		delete(m.tasks, t)
		m.mu.Unlock()

		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Str("task", name).Msg("task finished with error")
		} else {
			logging.Debug().Str("task", name).Msg("task finished")
		}

		select {
		case m.finished <- struct{}{}:
		default:
		}
	}()

	return t, nil
}

// Len returns the number of in-flight tasks.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Shutdown closes the manager to new tasks, cancels the root context, and
// waits for all in-flight tasks to finish. It returns ctx.Err() if ctx
// expires first, with the remaining task count logged. Calling Shutdown more
// than once is safe; subsequent calls just wait.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.cancel()

	for {
		m.mu.Lock()
		remaining := len(m.tasks)
		m.mu.Unlock()

		if remaining == 0 {
			return nil
		}

		select {
		case <-m.finished:
			// A task completed; re-check the count.
		case <-ctx.Done():
			logging.Warn().Int("remaining", remaining).Msg("task manager shutdown timed out")
			return ctx.Err()
		}
	}
}
