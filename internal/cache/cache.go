// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package cache provides TTL byte caches used to avoid refetching
// signing certificates. Entries are opaque bytes; callers own validation.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a thread-safe byte cache with per-entry expiration.
type Store interface {
	// Get returns the cached value. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key.
	Delete(ctx context.Context, key string) error
	// Stats returns cache statistics.
	Stats() Stats
}

// Stats holds cache performance counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Sets        int64
	Evictions   int64
	CurrentSize int
}

type entry struct {
	value      []byte
	expiration time.Time
}

// MemoryStore is an in-process Store with a background janitor.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	stats   Stats
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewMemoryStore creates a MemoryStore. A positive cleanupInterval starts a
// goroutine that drops expired entries until Close is called.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.janitor(cleanupInterval)
	} else {
		close(s.done)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expiration) {
		s.stats.Misses++
		return nil, false, nil
	}
	s.stats.Hits++
	return append([]byte(nil), e.value...), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		value:      append([]byte(nil), value...),
		expiration: s.now().Add(ttl),
	}
	s.stats.Sets++
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.CurrentSize = len(s.entries)
	return st
}

// deleteExpired removes expired entries and returns how many were dropped.
func (s *MemoryStore) deleteExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for k, e := range s.entries {
		if !now.Before(e.expiration) {
			delete(s.entries, k)
			n++
		}
	}
	s.stats.Evictions += int64(n)
	return n
}

func (s *MemoryStore) janitor(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.deleteExpired()
		case <-s.stop:
			return
		}
	}
}

// Close stops the janitor and waits for it to exit. It is safe to call twice.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	return nil
}

// NoopStore caches nothing.
type NoopStore struct{}

func (NoopStore) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NoopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NoopStore) Delete(context.Context, string) error                     { return nil }
func (NoopStore) Stats() Stats                                             { return Stats{} }
