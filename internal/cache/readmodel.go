// Package cache implements the client core's read-model cache: the last
// fetched snapshot per (entity-kind, filter) key, invalidated explicitly by
// mutations and never by time.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/guildworks/provision-client/internal/metrics"
)

// Entity kinds used as the first component of a cache key.
const (
	KindSettlements = "settlements"
	KindSettlement  = "settlement"
	KindInventory   = "resourceEntries"
	KindTasks       = "tasks"
	KindMyTasks     = "myTasks"
	KindPlayers     = "players"
	KindPlayer      = "player"
)

// Key identifies one cached read result.
type Key struct {
	Kind   string
	Filter string
}

// NewKey builds a Key from a kind and its filter parameters. Parameters are
// joined deterministically so equal queries map to equal keys.
func NewKey(kind string, filterParams ...string) Key {
	return Key{Kind: kind, Filter: strings.Join(filterParams, "/")}
}

func (k Key) String() string {
	return k.Kind + ":" + k.Filter
}

// FilterHasPrefix reports whether the key's filter starts with the given
// parameter sequence. Used to invalidate every list key scoped to one
// settlement regardless of narrower parameters.
func (k Key) FilterHasPrefix(filterParams ...string) bool {
	prefix := strings.Join(filterParams, "/")
	return k.Filter == prefix || strings.HasPrefix(k.Filter, prefix+"/")
}

// FetchFunc loads a snapshot from the backend on miss or staleness.
type FetchFunc func(ctx context.Context) (any, error)

type entry struct {
	value any
	has   bool
	stale bool
	// gen increments on every invalidation; a fetch started before an
	// invalidation must not overwrite the slot afterwards.
	gen uint64
}

// Store is the read-model cache. Concurrent lookups for the same key while a
// fetch is outstanding share the single in-flight result.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
	group   singleflight.Group
	log     zerolog.Logger
}

// New creates an empty Store.
func New(log zerolog.Logger) *Store {
	return &Store{
		entries: make(map[Key]*entry),
		log:     log.With().Str("component", "readmodel_cache").Logger(),
	}
}

// Get returns the cached snapshot for key, or runs fetch when no fresh
// snapshot exists. A response that resolves after the key was invalidated
// again is discarded rather than overwriting the newer state.
func (s *Store) Get(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if ok && e.has && !e.stale {
		s.mu.Unlock()
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return e.value, nil
	}
	if !ok {
		e = &entry{}
		s.entries[key] = e
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	} else {
		metrics.CacheLookupsTotal.WithLabelValues("stale").Inc()
	}
	gen := e.gen
	s.mu.Unlock()

	value, err, shared := s.group.Do(key.String(), func() (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Trace().Str("key", key.String()).Msg("shared in-flight fetch")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.entries[key]
	if ok && cur.gen == gen {
		cur.value = value
		cur.has = true
		cur.stale = false
	} else {
		s.log.Debug().Str("key", key.String()).Msg("discarding superseded fetch result")
	}
	return value, nil
}

// Peek returns the snapshot for key if one exists and is fresh.
func (s *Store) Peek(key Key) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || !e.has || e.stale {
		return nil, false
	}
	return e.value, true
}

// Invalidate marks the given keys stale. Keys with no entry get a tombstone
// so that a fetch already in flight for them cannot land afterwards.
func (s *Store) Invalidate(keys ...Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.invalidateLocked(key)
	}
}

// InvalidateWhere marks stale every existing entry whose key satisfies pred.
func (s *Store) InvalidateWhere(pred func(Key) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if pred(key) {
			s.invalidateLocked(key)
		}
	}
}

// Flush discards every snapshot. Used when the session is destroyed: cached
// reads are no longer trustworthy once identity is invalid.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		s.invalidateLocked(key)
	}
	s.log.Debug().Msg("read-model cache flushed")
}

func (s *Store) invalidateLocked(key Key) {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.gen++
	e.stale = true
	e.has = false
	e.value = nil
	s.group.Forget(key.String())
	metrics.CacheInvalidationsTotal.Inc()
}

// GetAs is a typed wrapper around Store.Get.
func GetAs[T any](ctx context.Context, s *Store, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := s.Get(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: unexpected snapshot type %T for key %s", v, key)
	}
	return typed, nil
}
