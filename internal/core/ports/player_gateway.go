package ports

import (
	"context"

	"github.com/guildworks/provision-client/internal/core/domain"
)

// CreatePlayerInput carries the fields for enrolling a guild member.
type CreatePlayerInput struct {
	Username string      `json:"username" validate:"required"`
	Password string      `json:"password" validate:"required,min=8"`
	Role     domain.Role `json:"role" validate:"required,oneof=coordinator contributor"`
}

// PlayerGateway is the roster slice of the REST boundary.
type PlayerGateway interface {
	ListPlayers(ctx context.Context) ([]domain.Account, error)
	GetPlayer(ctx context.Context, id string) (*domain.Account, error)
	CreatePlayer(ctx context.Context, in CreatePlayerInput) (*domain.Account, error)
}
