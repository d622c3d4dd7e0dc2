package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/guildworks/provision-client/internal/cache"
	"github.com/guildworks/provision-client/internal/core/domain"
	"github.com/guildworks/provision-client/internal/metrics"
)

// MutationFunc performs the network round-trip for one mutation.
type MutationFunc func(ctx context.Context) error

// Invalidation describes which read-model keys a successful mutation makes
// stale: the entity's own keys plus any list keys matching Where.
type Invalidation struct {
	Keys  []cache.Key
	Where func(cache.Key) bool
}

// MutationSerializer guarantees at most one in-flight mutation per entity
// identifier. A second submission for the same entity is refused immediately
// with ErrMutationInFlight, without a network round-trip; it never queues.
// Cache invalidation happens strictly after the mutation resolves, and only
// on success.
type MutationSerializer struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
	store    *cache.Store
	log      zerolog.Logger
}

// NewMutationSerializer creates a serializer that invalidates entries in
// store after successful mutations.
func NewMutationSerializer(store *cache.Store, log zerolog.Logger) *MutationSerializer {
	return &MutationSerializer{
		inFlight: make(map[string]struct{}),
		store:    store,
		log:      log.With().Str("component", "mutation_serializer").Logger(),
	}
}

// Submit runs fn for the entity identified by (kind, entityID). The pending
// marker is cleared on settlement, success or failure, before control
// returns to the caller.
func (m *MutationSerializer) Submit(ctx context.Context, kind, entityID string, fn MutationFunc, inv Invalidation) error {
	marker := kind + ":" + entityID

	m.mu.Lock()
	if _, busy := m.inFlight[marker]; busy {
		m.mu.Unlock()
		metrics.MutationConflictsTotal.Inc()
		m.log.Debug().Str("entity", marker).Msg("mutation refused: previous edit unresolved")
		return fmt.Errorf("%s: %w", marker, domain.ErrMutationInFlight)
	}
	m.inFlight[marker] = struct{}{}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.inFlight, marker)
		m.mu.Unlock()
	}()

	if err := fn(ctx); err != nil {
		metrics.MutationsTotal.WithLabelValues(kind, "failure").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues(kind, "success").Inc()

	if len(inv.Keys) > 0 {
		m.store.Invalidate(inv.Keys...)
	}
	if inv.Where != nil {
		m.store.InvalidateWhere(inv.Where)
	}
	return nil
}

// Pending reports whether a mutation for (kind, entityID) is outstanding.
func (m *MutationSerializer) Pending(kind, entityID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, busy := m.inFlight[kind+":"+entityID]
	return busy
}
