package service

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/guildworks/provision-client/internal/cache"
	"github.com/guildworks/provision-client/internal/core/domain"
	"github.com/guildworks/provision-client/internal/core/ports"
	"github.com/guildworks/provision-client/internal/metrics"
)

// Session is the explicit session object: created at login, destroyed at
// logout or on a 401. Passed by reference to core components; never ambient
// global state.
type Session struct {
	Token     string
	Account   domain.Account
	IssuedAt  time.Time
	// ExpiresAt is decoded from the token's exp claim when present; zero
	// otherwise. The signature is verified by the backend, not here.
	ExpiresAt time.Time
}

// Expired reports whether the session credential is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(now)
}

// SessionService owns the session lifecycle and the 401 reaction: discard
// the session and flush the read-model cache, since cached reads are no
// longer trustworthy once identity is invalid.
type SessionService struct {
	mu      sync.Mutex
	gateway ports.AuthGateway
	store   *cache.Store
	current *Session
	log     zerolog.Logger
}

func NewSessionService(gateway ports.AuthGateway, store *cache.Store, log zerolog.Logger) *SessionService {
	return &SessionService{
		gateway: gateway,
		store:   store,
		log:     log.With().Str("component", "session").Logger(),
	}
}

// Login authenticates against the backend and installs a new session.
func (s *SessionService) Login(ctx context.Context, creds ports.Credentials) (*Session, error) {
	if err := validateInput(creds); err != nil {
		return nil, err
	}

	result, err := s.gateway.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		Token:     result.Token,
		Account:   result.Account,
		IssuedAt:  time.Now().UTC(),
		ExpiresAt: tokenExpiry(result.Token),
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	s.log.Info().
		Str("account_id", sess.Account.ID).
		Str("role", string(sess.Account.Role)).
		Msg("session created")
	return sess, nil
}

// Logout tells the backend goodbye and destroys the session either way.
func (s *SessionService) Logout(ctx context.Context) error {
	err := s.gateway.Logout(ctx)
	s.destroy("logout")
	return err
}

// Current returns the active session, or nil when unauthenticated.
func (s *SessionService) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Token implements the bearer source consumed by the REST client. Empty
// when no session is active.
func (s *SessionService) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Refresh re-fetches the authenticated account from the backend and updates
// the session snapshot.
func (s *SessionService) Refresh(ctx context.Context) (*domain.Account, error) {
	s.mu.Lock()
	sess := s.current
	s.mu.Unlock()
	if sess == nil {
		return nil, domain.ErrNoSession
	}

	account, err := s.gateway.Me(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.current == sess {
		s.current.Account = *account
	}
	s.mu.Unlock()
	return account, nil
}

// HandleUnauthorized reacts to a 401 from any authenticated request: the
// session is discarded and all cached read-model state with it.
func (s *SessionService) HandleUnauthorized() {
	metrics.SessionExpiriesTotal.Inc()
	s.destroy("unauthorized response")
}

func (s *SessionService) destroy(reason string) {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.mu.Unlock()

	s.store.Flush()
	if had {
		s.log.Info().Str("reason", reason).Msg("session destroyed")
	}
}

// tokenExpiry decodes the exp claim without verifying the signature. The
// client never holds the signing secret; verification is the backend's job.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
