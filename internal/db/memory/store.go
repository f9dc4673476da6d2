// Package memory is an in-process db.Store for local development and tests.
// It has no vector search operator, so searches through it always take the
// exact-scan path.
package memory

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/synapse/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

type kvEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Store keeps JSON documents and KV entries in maps guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	docs    map[string][]byte
	kv      map[string]kvEntry
	indexes map[string]*db.IndexDefinition
	now     func() time.Time
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		docs:    make(map[string][]byte),
		kv:      make(map[string]kvEntry),
		indexes: make(map[string]*db.IndexDefinition),
		now:     time.Now,
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// JSONSet stores a whole document. Only the root path is supported.
func (s *Store) JSONSet(_ context.Context, key, p string, data []byte) error {
	if p != "$" && p != "." {
		return &db.Error{Op: db.OpJSONSet, Err: errUnsupportedPath(p)}
	}
	if !json.Valid(data) {
		return &db.Error{Op: db.OpJSONSet, Err: errInvalidJSON}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = append([]byte(nil), data...)
	return nil
}

// JSONGet returns the whole document; paths are ignored.
func (s *Store) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), doc...), nil
}

// JSONGetMulti returns documents in key order with nil for missing keys.
func (s *Store) JSONGetMulti(_ context.Context, keys []string, _ ...string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if doc, ok := s.docs[k]; ok {
			out[i] = append([]byte(nil), doc...)
		}
	}
	return out, nil
}

// Del removes a document or KV entry.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	delete(s.kv, key)
	return nil
}

// Exists reports whether a document or live KV entry is stored at key.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.docs[key]; ok {
		return true, nil
	}
	e, ok := s.kv[key]
	return ok && !s.expired(e), nil
}

// Scan returns document keys matching a glob pattern, sorted.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.docs {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Get returns a KV value, honoring expiry.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.kv[key]
	if !ok || s.expired(e) {
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores a KV value without expiry.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = kvEntry{value: append([]byte(nil), value...)}
	return nil
}

// SetWithTTL stores a KV value that expires after ttl.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = kvEntry{value: append([]byte(nil), value...), expiresAt: s.now().Add(ttl)}
	return nil
}

// CreateIndex records the definition; it is never queried.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	s.indexes[def.Name] = def
	return nil
}

// DropIndex forgets a recorded definition.
func (s *Store) DropIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(s.indexes, name)
	return nil
}

// IndexExists is always false: recorded definitions cannot serve SearchKNN,
// so health reports the exact-scan fallback.
func (s *Store) IndexExists(context.Context, string) (bool, error) {
	return false, nil
}

// SearchKNN is not available in memory.
func (s *Store) SearchKNN(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
	return nil, &db.Error{Op: db.OpSearch, Err: db.ErrSearchUnsupported}
}

func (s *Store) expired(e kvEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
