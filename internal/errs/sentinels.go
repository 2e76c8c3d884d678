// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Client-side sentinels.
var (
	// ErrAllServersFailed indicates every server in the set failed one logical operation.
	ErrAllServersFailed = errors.New("all servers failed")

	// ErrRegistrationFailed indicates login could not reach any server.
	ErrRegistrationFailed = errors.New("registration failed")

	// ErrEmptyUsername is returned for a blank login; callers treat it as a no-op.
	ErrEmptyUsername = errors.New("empty username")

	// ErrNoServers indicates an empty server set.
	ErrNoServers = errors.New("no servers configured")
)

// Failure kinds of a single transport attempt.
var (
	// ErrUnreachable indicates a network-level error (dial, reset, DNS).
	ErrUnreachable = errors.New("server unreachable")

	// ErrTimeout indicates the per-attempt deadline was exceeded.
	ErrTimeout = errors.New("timeout")

	// ErrBadStatus indicates a non-2xx HTTP status.
	ErrBadStatus = errors.New("bad status")

	// ErrMalformedResponse indicates a body that could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// Server-side sentinels.
var (
	// ErrValidation indicates a request with missing or empty fields.
	ErrValidation = errors.New("validation")
)
