// Package tokenguard issues one-time, time-gated session tokens.
//
// A token has the form sessionId:issuedAtMillis:signature where the
// signature is hex HMAC-SHA256 over "sessionId:issuedAtMillis". Issuing a
// token records its session id as outstanding; validating it succeeds at
// most once, and only after MinSessionAge has elapsed since issue.
//
//	guard, err := tokenguard.New(tokenguard.NewMemorySet())
//	if err != nil {
//		return err
//	}
//
//	token, err := guard.Issue(ctx)
//	// ... at least five seconds later
//	if err := guard.Validate(ctx, token); err != nil {
//		// tokenguard.IsRejection(err) for ErrMalformed, ErrBadSignature,
//		// ErrUnknownOrReplayed and ErrTooFast
//	}
//
// Validation checks, in order: field count, signature (constant time),
// timestamp syntax, outstanding membership, age floor, then an atomic
// remove-if-present that decides between concurrent redeemers. A token
// rejected as too young stays outstanding.
//
// Outstanding sessions live in a SessionSet. MemorySet is process local and
// can run a reaper that drops sessions older than its max age; RedisSet
// shares sessions between processes using key expiry. Processes that share a
// RedisSet must derive the same key with WithSecret.
package tokenguard
