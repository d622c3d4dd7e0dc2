package ports

import (
	"context"

	"github.com/guildworks/provision-client/internal/core/domain"
)

// Credentials carries a login attempt.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token   string         `json:"token"`
	Account domain.Account `json:"account"`
}

// AuthGateway is the authentication slice of the REST boundary.
// Token issuance and validation are the backend's business; the client
// treats the token as an opaque credential.
type AuthGateway interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*domain.Account, error)
}
