package domain

import "errors"

// Failure taxonomy surfaced to callers. Every mutation failure is reported
// synchronously; the core never swallows one.
var (
	// ErrAccessDenied means the local capability check failed. Callers redirect
	// to the role's default view rather than render an error state.
	ErrAccessDenied = errors.New("access denied")

	// ErrSessionExpired means the backend answered 401. The session and all
	// cached read-model state have already been discarded when this surfaces.
	ErrSessionExpired = errors.New("session expired")

	// ErrValidationRejected means the payload was refused, either by the local
	// input validator or by the backend. Canonical state is unchanged.
	ErrValidationRejected = errors.New("validation rejected")

	// ErrMutationInFlight means a mutation for the same entity has not yet
	// resolved. Raised immediately, without a network round-trip.
	ErrMutationInFlight = errors.New("mutation already in flight")

	// ErrBackendUnavailable means the request could not complete. No retry is
	// attempted by the core.
	ErrBackendUnavailable = errors.New("backend unavailable")

	ErrNotFound     = errors.New("not found")
	ErrTaskTerminal = errors.New("task is in a terminal state")
	ErrNoSession    = errors.New("no active session")
)
