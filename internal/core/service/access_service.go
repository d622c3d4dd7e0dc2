package service

import (
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/guildworks/provision-client/internal/core/domain"
)

// Default views the presentation layer redirects to on denial.
const (
	RouteDashboard   = "/dashboard"
	RouteAssignments = "/assignments"
	RouteLogin       = "/login"
)

// GateDecision is the outcome of a capability request. When denied, the
// caller navigates to RedirectTo rather than rendering an error state.
type GateDecision struct {
	Allowed    bool
	RedirectTo string
}

// AccessGate resolves a session's role into a closed capability set and
// gates which mutations are permitted. There is exactly one resolution
// function; presentation code never branches on the role itself.
type AccessGate struct {
	now func() time.Time
	log zerolog.Logger
}

func NewAccessGate(log zerolog.Logger) *AccessGate {
	return &AccessGate{
		now: time.Now,
		log: log.With().Str("component", "access_gate").Logger(),
	}
}

// Check gates a navigation request. destination is the path being visited;
// it is preserved in the login redirect so the gate can replay it after
// authentication. With no required roles, any authenticated session passes.
func (g *AccessGate) Check(sess *Session, destination string, required ...domain.Role) GateDecision {
	if sess == nil || sess.Expired(g.now().UTC()) {
		return GateDecision{RedirectTo: loginRedirect(destination)}
	}
	if len(required) == 0 {
		return GateDecision{Allowed: true}
	}
	for _, role := range required {
		if sess.Account.Role == role {
			return GateDecision{Allowed: true}
		}
	}
	g.log.Debug().
		Str("account_id", sess.Account.ID).
		Str("role", string(sess.Account.Role)).
		Str("destination", destination).
		Msg("navigation denied")
	return GateDecision{RedirectTo: DefaultView(sess.Account.Role)}
}

// Require gates a mutation. Returns ErrNoSession without a session,
// ErrSessionExpired past expiry, and ErrAccessDenied when the role's
// capability set does not include cap.
func (g *AccessGate) Require(sess *Session, cap domain.Capability) error {
	if sess == nil {
		return domain.ErrNoSession
	}
	if sess.Expired(g.now().UTC()) {
		return domain.ErrSessionExpired
	}
	if _, ok := domain.CapabilitiesFor(sess.Account.Role)[cap]; !ok {
		return domain.ErrAccessDenied
	}
	return nil
}

// Can reports whether the session's role holds cap. Used by presentation
// code to show or hide actions; mutations are still gated by Require.
func (g *AccessGate) Can(sess *Session, cap domain.Capability) bool {
	return g.Require(sess, cap) == nil
}

// DefaultView is the landing route for a role.
func DefaultView(role domain.Role) string {
	if role == domain.RoleCoordinator {
		return RouteDashboard
	}
	return RouteAssignments
}

// loginRedirect builds the login route with the original destination
// preserved for post-authentication replay.
func loginRedirect(destination string) string {
	if destination == "" {
		return RouteLogin
	}
	return RouteLogin + "?return=" + url.QueryEscape(destination)
}
