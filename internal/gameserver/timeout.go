// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package gameserver

import "time"

// Timeout is a resettable deadline used to detect missed handshakes and
// heartbeats. It is owned by a single connection task: Reset and C are never
// called concurrently, which keeps the timer drain logic simple.
type Timeout struct {
	timer *time.Timer
}

// NewTimeout starts a timeout firing after d.
func NewTimeout(d time.Duration) *Timeout {
	return &Timeout{timer: time.NewTimer(d)}
}

// C fires once when the deadline passes.
func (t *Timeout) C() <-chan time.Time {
	return t.timer.C
}

// Reset moves the deadline to d from now, discarding a pending fire.
func (t *Timeout) Reset(d time.Duration) {
	if !t.timer.Stop() {
		select {
		case <-t.timer.C:
		default:
		}
	}
	t.timer.Reset(d)
}

// Stop releases the timer. The Timeout must not be used afterwards.
func (t *Timeout) Stop() {
	if !t.timer.Stop() {
		select {
		case <-t.timer.C:
		default:
		}
	}
}
