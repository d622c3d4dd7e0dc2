package rest

import (
	"context"
	"net/http"

	"github.com/guildworks/provision-client/internal/core/domain"
	"github.com/guildworks/provision-client/internal/core/ports"
)

// PlayerGateway implements ports.PlayerGateway over HTTP.
type PlayerGateway struct {
	client *Client
}

func NewPlayerGateway(client *Client) *PlayerGateway {
	return &PlayerGateway{client: client}
}

func (g *PlayerGateway) ListPlayers(ctx context.Context) ([]domain.Account, error) {
	var players []domain.Account
	if err := g.client.do(ctx, http.MethodGet, "players", "/players", nil, nil, &players); err != nil {
		return nil, err
	}
	return players, nil
}

func (g *PlayerGateway) GetPlayer(ctx context.Context, id string) (*domain.Account, error) {
	var player domain.Account
	if err := g.client.do(ctx, http.MethodGet, "players", "/players/"+id, nil, nil, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (g *PlayerGateway) CreatePlayer(ctx context.Context, in ports.CreatePlayerInput) (*domain.Account, error) {
	var player domain.Account
	if err := g.client.do(ctx, http.MethodPost, "players", "/players", nil, in, &player); err != nil {
		return nil, err
	}
	return &player, nil
}
