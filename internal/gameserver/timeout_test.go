// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package gameserver

import (
	"testing"
	"time"
)

func TestTimeoutFires(t *testing.T) {
	timeout := NewTimeout(20 * time.Millisecond)
	defer timeout.Stop()

	select {
	case <-timeout.C():
	case <-time.After(time.Second):
		t.Fatal("timeout never fired")
	}
}

func TestTimeoutResetDefersFiring(t *testing.T) {
	timeout := NewTimeout(50 * time.Millisecond)
	defer timeout.Stop()

	time.Sleep(30 * time.Millisecond)
	timeout.Reset(100 * time.Millisecond)

	select {
	case <-timeout.C():
		t.Fatal("fired before the reset deadline")
	case <-time.After(60 * time.Millisecond):
	}

	select {
	case <-timeout.C():
	case <-time.After(time.Second):
		t.Fatal("never fired after reset")
	}
}

func TestTimeoutResetAfterFire(t *testing.T) {
	timeout := NewTimeout(10 * time.Millisecond)
	defer timeout.Stop()

	// Let it fire without draining, then reset; the stale fire must not leak
	// into the new deadline.
	time.Sleep(30 * time.Millisecond)
	timeout.Reset(50 * time.Millisecond)

	select {
	case <-timeout.C():
		t.Fatal("stale fire observed after reset")
	case <-time.After(20 * time.Millisecond):
	}

	select {
	case <-timeout.C():
	case <-time.After(time.Second):
		t.Fatal("never fired after reset")
	}
}
