// Package provision wires the guild provisioning client core: the access
// gate, session lifecycle, resource ledger, task lifecycle, and the shared
// read-model cache and mutation serializer behind them. The presentation
// layer talks to the services exposed here and never touches the cache or
// the in-flight markers directly.
package provision

import (
	"github.com/rs/zerolog"

	"github.com/guildworks/provision-client/internal/cache"
	"github.com/guildworks/provision-client/internal/core/service"
	"github.com/guildworks/provision-client/internal/infrastructure/rest"
	"github.com/guildworks/provision-client/internal/pkg/config"
	"github.com/guildworks/provision-client/pkg/logger"
)

// Core bundles the client core's services around one session, one cache,
// and one serializer.
type Core struct {
	Gate        *service.AccessGate
	Sessions    *service.SessionService
	Ledger      *service.LedgerService
	Tasks       *service.TaskService
	Settlements *service.SettlementService
	Roster      *service.RosterService
}

// New builds a Core from configuration. The REST client's 401 hook is wired
// to the session service so an expired credential tears down the session
// and the cached read-model state in one step.
func New(cfg *config.Config) (*Core, error) {
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	return build(cfg, log)
}

// NewWithLogger is New with an externally constructed logger. Used by tests
// and embedders that manage logging themselves.
func NewWithLogger(cfg *config.Config, log zerolog.Logger) (*Core, error) {
	return build(cfg, log)
}

func build(cfg *config.Config, log zerolog.Logger) (*Core, error) {
	store := cache.New(log)
	serializer := service.NewMutationSerializer(store, log)
	gate := service.NewAccessGate(log)

	var sessions *service.SessionService
	client, err := rest.NewClient(cfg.BaseURL, cfg.HTTPTimeout, func() string {
		return sessions.Token()
	}, log)
	if err != nil {
		return nil, err
	}
	sessions = service.NewSessionService(rest.NewAuthGateway(client), store, log)
	client.SetUnauthorizedHook(sessions.HandleUnauthorized)

	settlementGW := rest.NewSettlementGateway(client)

	return &Core{
		Gate:        gate,
		Sessions:    sessions,
		Ledger:      service.NewLedgerService(settlementGW, sessions, gate, serializer, store, log),
		Tasks:       service.NewTaskService(rest.NewTaskGateway(client), sessions, gate, serializer, store, log),
		Settlements: service.NewSettlementService(settlementGW, sessions, gate, serializer, store, log),
		Roster:      service.NewRosterService(rest.NewPlayerGateway(client), sessions, gate, serializer, store, log),
	}, nil
}
