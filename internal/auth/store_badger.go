// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefixes for BadgerDB storage.
const (
	sessionKeyPrefix     = "session:"
	sessionUserKeyPrefix = "session_user:"
)

// badgerSessionRecord is the persisted form of a session.
type badgerSessionRecord struct {
	UserID      uint64    `json:"user_id"`
	Permissions uint64    `json:"permissions"`
	ExpiresOn   time.Time `json:"expires_on"`
}

// BadgerSessionStore persists sessions in BadgerDB, surviving restarts on a
// single node.
type BadgerSessionStore struct {
	db *badger.DB
}

// NewBadgerSessionStore wraps an opened BadgerDB handle as a session store.
// The caller owns the handle lifecycle; Close closes it.
func NewBadgerSessionStore(db *badger.DB) *BadgerSessionStore {
	return &BadgerSessionStore{db: db}
}

// OpenBadgerSessionStore opens (or creates) a BadgerDB at path and returns a
// store backed by it.
func OpenBadgerSessionStore(path string) (*BadgerSessionStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return NewBadgerSessionStore(db), nil
}

func sessionKey(id SessionID) []byte {
	return append([]byte(sessionKeyPrefix), id.Bytes()...)
}

func userIndexKey(userID uint64, id SessionID) []byte {
	key := []byte(sessionUserKeyPrefix + strconv.FormatUint(userID, 10) + ":")
	return append(key, id.Bytes()...)
}

func userIndexPrefix(userID uint64) []byte {
	return []byte(sessionUserKeyPrefix + strconv.FormatUint(userID, 10) + ":")
}

// Create implements SessionStore.
func (s *BadgerSessionStore) Create(ctx context.Context, userID uint64, permissions Permissions, ttl time.Duration) (SessionID, error) {
	id, err := NewSessionID()
	if err != nil {
		return SessionID{}, newStoreError("create", err)
	}

	record := badgerSessionRecord{
		UserID:      userID,
		Permissions: uint64(permissions),
		ExpiresOn:   time.Now().Add(ttl),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return SessionID{}, newStoreError("create", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := sessionKey(id)
		if _, err := txn.Get(key); err == nil {
			return ErrSessionIDCollision
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}
		// User index enables revoke-all without a full scan.
		return txn.Set(userIndexKey(userID, id), id.Bytes())
	})
	if err != nil {
		return SessionID{}, newStoreError("create", err)
	}
	return id, nil
}

// Load implements SessionStore. Expired rows are returned as stored; the
// caller decides what expiry means.
func (s *BadgerSessionStore) Load(ctx context.Context, id SessionID) (*SessionData, error) {
	var record badgerSessionRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return nil, newStoreError("load", err)
	}

	return &SessionData{
		UserID:      record.UserID,
		Permissions: Permissions(record.Permissions),
		ExpiresOn:   record.ExpiresOn,
	}, nil
}

// Refresh implements SessionStore.
func (s *BadgerSessionStore) Refresh(ctx context.Context, id SessionID, expiresOn time.Time) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		key := sessionKey(id)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		var record badgerSessionRecord
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); err != nil {
			return err
		}

		record.ExpiresOn = expiresOn
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	return newStoreError("refresh", err)
}

// Revoke implements SessionStore.
func (s *BadgerSessionStore) Revoke(ctx context.Context, id SessionID) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		key := sessionKey(id)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // already gone
		}
		if err != nil {
			return err
		}

		var record badgerSessionRecord
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); err != nil {
			return err
		}

		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(userIndexKey(record.UserID, id))
	})
	return newStoreError("revoke", err)
}

// RevokeAll implements SessionStore.
func (s *BadgerSessionStore) RevokeAll(ctx context.Context, userID uint64) (int, error) {
	count := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		prefix := userIndexPrefix(userID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		var indexKeys [][]byte
		var ids []SessionID
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			indexKeys = append(indexKeys, item.KeyCopy(nil))

			err := item.Value(func(val []byte) error {
				id, err := SessionIDFromBytes(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			})
			if err != nil {
				return err
			}
		}

		for i, id := range ids {
			if err := txn.Delete(sessionKey(id)); err != nil {
				return err
			}
			if err := txn.Delete(indexKeys[i]); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, newStoreError("revoke_all", err)
	}
	return count, nil
}

// CleanupExpired implements SessionStore.
func (s *BadgerSessionStore) CleanupExpired(ctx context.Context) (int, error) {
	now := time.Now()
	count := 0

	err := s.db.Update(func(txn *badger.Txn) error {
		prefix := []byte(sessionKeyPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		type expired struct {
			key    []byte
			userID uint64
			id     SessionID
		}
		var victims []expired

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			var record badgerSessionRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			if record.ExpiresOn.After(now) {
				continue
			}

			id, err := SessionIDFromBytes(item.Key()[len(sessionKeyPrefix):])
			if err != nil {
				return err
			}
			victims = append(victims, expired{key: item.KeyCopy(nil), userID: record.UserID, id: id})
		}

		for _, v := range victims {
			if err := txn.Delete(v.key); err != nil {
				return err
			}
			if err := txn.Delete(userIndexKey(v.userID, v.id)); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, newStoreError("cleanup", err)
	}
	return count, nil
}

// Close implements SessionStore.
func (s *BadgerSessionStore) Close() error {
	return s.db.Close()
}
