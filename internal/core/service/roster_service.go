package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/guildworks/provision-client/internal/cache"
	"github.com/guildworks/provision-client/internal/core/domain"
	"github.com/guildworks/provision-client/internal/core/ports"
)

const kindPlayer = "player"

// RosterService lists and enrolls guild members.
type RosterService struct {
	gateway    ports.PlayerGateway
	sessions   *SessionService
	gate       *AccessGate
	serializer *MutationSerializer
	store      *cache.Store
	log        zerolog.Logger
}

func NewRosterService(gateway ports.PlayerGateway, sessions *SessionService, gate *AccessGate, serializer *MutationSerializer, store *cache.Store, log zerolog.Logger) *RosterService {
	return &RosterService{
		gateway:    gateway,
		sessions:   sessions,
		gate:       gate,
		serializer: serializer,
		store:      store,
		log:        log.With().Str("component", "roster").Logger(),
	}
}

// List returns all guild members through the read-model cache.
func (r *RosterService) List(ctx context.Context) ([]domain.Account, error) {
	if err := r.gate.Require(r.sessions.Current(), domain.CapViewRoster); err != nil {
		return nil, err
	}
	return cache.GetAs(ctx, r.store, cache.NewKey(cache.KindPlayers), func(ctx context.Context) ([]domain.Account, error) {
		return r.gateway.ListPlayers(ctx)
	})
}

// Get returns one guild member through the read-model cache.
func (r *RosterService) Get(ctx context.Context, id string) (*domain.Account, error) {
	if err := r.gate.Require(r.sessions.Current(), domain.CapViewRoster); err != nil {
		return nil, err
	}
	return cache.GetAs(ctx, r.store, cache.NewKey(cache.KindPlayer, id), func(ctx context.Context) (*domain.Account, error) {
		return r.gateway.GetPlayer(ctx, id)
	})
}

// Create enrolls a new member. Coordinator only.
func (r *RosterService) Create(ctx context.Context, in ports.CreatePlayerInput) (*domain.Account, error) {
	if err := r.gate.Require(r.sessions.Current(), domain.CapManageRoster); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var created *domain.Account
	err := r.serializer.Submit(ctx, kindPlayer, "new:"+in.Username, func(ctx context.Context) error {
		account, err := r.gateway.CreatePlayer(ctx, in)
		if err != nil {
			return err
		}
		created = account
		return nil
	}, Invalidation{Keys: []cache.Key{cache.NewKey(cache.KindPlayers)}})
	if err != nil {
		return nil, err
	}

	r.log.Info().Str("account_id", created.ID).Str("role", string(created.Role)).Msg("member enrolled")
	return created, nil
}
