package service

import "errors"

var (
	// ErrInvalidURL means the destination did not parse as an absolute
	// http(s) URL after normalization.
	ErrInvalidURL = errors.New("invalid url: must be an absolute http(s) url")

	// ErrInvalidLength means the requested identifier length is outside 4-20.
	ErrInvalidLength = errors.New("invalid length: must be between 4 and 20")

	// ErrAllocationExhausted means every allocation attempt collided.
	ErrAllocationExhausted = errors.New("could not allocate a unique short id")

	// ErrNotFound means no link exists for the short id.
	ErrNotFound = errors.New("short link not found")

	// ErrUnauthorized is the route-layer policy error for anonymous creation
	// on deployments that require login.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAuthFailed covers every OIDC flow failure. Callers must not leak
	// the underlying cause to the client.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrInvalidSession covers every session token rejection: bad signature,
	// expiry, malformed payload. Deliberately indistinguishable.
	ErrInvalidSession = errors.New("invalid session")

	// ErrOIDCNotConfigured means the deployment has no identity provider set
	// up; login is unavailable and anonymous access is allowed.
	ErrOIDCNotConfigured = errors.New("oidc is not configured")

	// ErrSecretNotConfigured means JWT_SECRET is missing. Raised at first
	// use rather than startup so login-less deployments still boot.
	ErrSecretNotConfigured = errors.New("session secret is not configured")
)
