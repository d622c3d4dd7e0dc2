package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/guildworks/provision-client/internal/cache"
	"github.com/guildworks/provision-client/internal/core/domain"
	"github.com/guildworks/provision-client/internal/core/ports"
)

const kindSettlement = "settlement"

// SettlementService manages the guild's settlements. Reads are cached;
// every mutation is coordinator-only and serialized per settlement.
type SettlementService struct {
	gateway    ports.SettlementGateway
	sessions   *SessionService
	gate       *AccessGate
	serializer *MutationSerializer
	store      *cache.Store
	log        zerolog.Logger
}

func NewSettlementService(gateway ports.SettlementGateway, sessions *SessionService, gate *AccessGate, serializer *MutationSerializer, store *cache.Store, log zerolog.Logger) *SettlementService {
	return &SettlementService{
		gateway:    gateway,
		sessions:   sessions,
		gate:       gate,
		serializer: serializer,
		store:      store,
		log:        log.With().Str("component", "settlements").Logger(),
	}
}

func settlementsKey() cache.Key         { return cache.NewKey(cache.KindSettlements) }
func settlementKey(id string) cache.Key { return cache.NewKey(cache.KindSettlement, id) }

// settlementInvalidation covers the settlement's singleton key and the
// listing. Deleting a settlement additionally orphans its inventory keys.
func settlementInvalidation(id string, includeInventory bool) Invalidation {
	inv := Invalidation{Keys: []cache.Key{settlementsKey(), settlementKey(id)}}
	if includeInventory {
		inv.Where = func(k cache.Key) bool {
			return k.Kind == cache.KindInventory && k.FilterHasPrefix(id)
		}
	}
	return inv
}

// List returns all settlements through the read-model cache.
func (s *SettlementService) List(ctx context.Context) ([]domain.Settlement, error) {
	return cache.GetAs(ctx, s.store, settlementsKey(), func(ctx context.Context) ([]domain.Settlement, error) {
		return s.gateway.ListSettlements(ctx)
	})
}

// Get returns one settlement through the read-model cache.
func (s *SettlementService) Get(ctx context.Context, id string) (*domain.Settlement, error) {
	return cache.GetAs(ctx, s.store, settlementKey(id), func(ctx context.Context) (*domain.Settlement, error) {
		return s.gateway.GetSettlement(ctx, id)
	})
}

// Create registers a new settlement. Coordinator only.
func (s *SettlementService) Create(ctx context.Context, in ports.CreateSettlementInput) (*domain.Settlement, error) {
	if err := s.gate.Require(s.sessions.Current(), domain.CapManageSettlements); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var created *domain.Settlement
	err := s.serializer.Submit(ctx, kindSettlement, "new:"+in.Name, func(ctx context.Context) error {
		settlement, err := s.gateway.CreateSettlement(ctx, in)
		if err != nil {
			return err
		}
		created = settlement
		return nil
	}, Invalidation{Keys: []cache.Key{settlementsKey()}})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("settlement_id", created.ID).Str("name", created.Name).Msg("settlement created")
	return created, nil
}

// Update applies a partial edit to a settlement. Coordinator only.
func (s *SettlementService) Update(ctx context.Context, id string, in ports.UpdateSettlementInput) (*domain.Settlement, error) {
	if err := s.gate.Require(s.sessions.Current(), domain.CapManageSettlements); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var updated *domain.Settlement
	err := s.serializer.Submit(ctx, kindSettlement, id, func(ctx context.Context) error {
		settlement, err := s.gateway.UpdateSettlement(ctx, id, in)
		if err != nil {
			return err
		}
		updated = settlement
		return nil
	}, settlementInvalidation(id, false))
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("settlement_id", id).Msg("settlement updated")
	return updated, nil
}

// Delete removes a settlement and invalidates its cached inventory.
// Coordinator only.
func (s *SettlementService) Delete(ctx context.Context, id string) error {
	if err := s.gate.Require(s.sessions.Current(), domain.CapManageSettlements); err != nil {
		return err
	}
	err := s.serializer.Submit(ctx, kindSettlement, id, func(ctx context.Context) error {
		return s.gateway.DeleteSettlement(ctx, id)
	}, settlementInvalidation(id, true))
	if err != nil {
		return err
	}
	s.log.Info().Str("settlement_id", id).Msg("settlement deleted")
	return nil
}
