package tokenguard

import "errors"

var (
	// ErrMalformed is returned when a token does not have the
	// sessionId:issuedAtMillis:signature shape.
	ErrMalformed = errors.New("tokenguard: malformed token")

	// ErrBadSignature is returned when the signature does not match.
	ErrBadSignature = errors.New("tokenguard: bad signature")

	// ErrUnknownOrReplayed is returned for session ids that were never issued,
	// were already consumed, or have expired.
	ErrUnknownOrReplayed = errors.New("tokenguard: unknown or replayed session")

	// ErrTooFast is returned when a token is redeemed before MinSessionAge.
	ErrTooFast = errors.New("tokenguard: session too young")

	// ErrSessionStore wraps failures of the outstanding session set.
	ErrSessionStore = errors.New("tokenguard: session store failure")

	// ErrInvalidKey is returned when a signing key is shorter than MinKeySize.
	ErrInvalidKey = errors.New("tokenguard: signing key too short")

	ErrAlreadyStarted = errors.New("tokenguard: reaper already started")
	ErrNotStarted     = errors.New("tokenguard: reaper not started")
)

// IsRejection reports whether err is one of the token validation failures
// a caller should see as an authorization error.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrBadSignature) ||
		errors.Is(err, ErrUnknownOrReplayed) ||
		errors.Is(err, ErrTooFast)
}
