// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreCreateAndLoad(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	id, err := store.Create(ctx, 42, PermissionManageMaps, time.Hour)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	data, err := store.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if data.UserID != 42 {
		t.Errorf("UserID = %d, want 42", data.UserID)
	}
	if data.Permissions != PermissionManageMaps {
		t.Errorf("Permissions = %v, want manage-maps", data.Permissions)
	}
	if data.HasExpired() {
		t.Error("fresh session reports expired")
	}
}

func TestMemoryStoreLoadUnknown(t *testing.T) {
	store := NewMemorySessionStore()

	id, err := NewSessionID()
	if err != nil {
		t.Fatalf("NewSessionID failed: %v", err)
	}
	if _, err := store.Load(context.Background(), id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Load unknown = %v, want ErrSessionNotFound", err)
	}
}

func TestMemoryStoreReturnsExpiredRows(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	id, err := store.Create(ctx, 42, PermissionNone, -time.Minute)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// The store hands back the row as stored; expiry is the caller's call.
	data, err := store.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !data.HasExpired() {
		t.Error("expired session does not report HasExpired")
	}
}

func TestMemoryStoreRefresh(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	id, err := store.Create(ctx, 42, PermissionNone, time.Minute)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newExpiry := time.Now().Add(2 * time.Hour)
	if err := store.Refresh(ctx, id, newExpiry); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	data, err := store.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !data.ExpiresOn.Equal(newExpiry) {
		t.Errorf("ExpiresOn = %v, want %v", data.ExpiresOn, newExpiry)
	}

	other, err := NewSessionID()
	if err != nil {
		t.Fatalf("NewSessionID failed: %v", err)
	}
	if err := store.Refresh(ctx, other, newExpiry); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Refresh unknown = %v, want ErrSessionNotFound", err)
	}
}

func TestMemoryStoreRevokeIsIdempotent(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	id, err := store.Create(ctx, 42, PermissionNone, time.Hour)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Revoke(ctx, id); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if err := store.Revoke(ctx, id); err != nil {
		t.Fatalf("second Revoke failed: %v", err)
	}

	if _, err := store.Load(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Load after revoke = %v, want ErrSessionNotFound", err)
	}
}

func TestMemoryStoreRevokeAll(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	var userSessions []SessionID
	for i := 0; i < 3; i++ {
		id, err := store.Create(ctx, 42, PermissionNone, time.Hour)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		userSessions = append(userSessions, id)
	}
	otherID, err := store.Create(ctx, 99, PermissionNone, time.Hour)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	count, err := store.RevokeAll(ctx, 42)
	if err != nil {
		t.Fatalf("RevokeAll failed: %v", err)
	}
	if count != 3 {
		t.Errorf("RevokeAll count = %d, want 3", count)
	}

	for _, id := range userSessions {
		if _, err := store.Load(ctx, id); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("session %v survived RevokeAll", id)
		}
	}
	if _, err := store.Load(ctx, otherID); err != nil {
		t.Errorf("unrelated user's session was revoked: %v", err)
	}
}

func TestMemoryStoreCleanupExpired(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, 1, PermissionNone, -time.Minute); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	liveID, err := store.Create(ctx, 2, PermissionNone, time.Hour)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	count, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if count != 1 {
		t.Errorf("CleanupExpired count = %d, want 1", count)
	}

	if _, err := store.Load(ctx, liveID); err != nil {
		t.Errorf("live session swept: %v", err)
	}
}
