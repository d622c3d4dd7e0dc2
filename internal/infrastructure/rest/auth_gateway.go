package rest

import (
	"context"
	"net/http"

	"github.com/guildworks/provision-client/internal/core/domain"
	"github.com/guildworks/provision-client/internal/core/ports"
)

// AuthGateway implements ports.AuthGateway over HTTP.
type AuthGateway struct {
	client *Client
}

func NewAuthGateway(client *Client) *AuthGateway {
	return &AuthGateway{client: client}
}

func (g *AuthGateway) Login(ctx context.Context, creds ports.Credentials) (*ports.LoginResult, error) {
	var result ports.LoginResult
	if err := g.client.do(ctx, http.MethodPost, "auth", "/auth/login", nil, creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *AuthGateway) Logout(ctx context.Context) error {
	return g.client.do(ctx, http.MethodPost, "auth", "/auth/logout", nil, nil, nil)
}

func (g *AuthGateway) Me(ctx context.Context) (*domain.Account, error) {
	var account domain.Account
	if err := g.client.do(ctx, http.MethodGet, "auth", "/auth/me", nil, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}
