package ratelimiter

import "errors"

var (
	ErrInvalidConfig     = errors.New("ratelimiter: invalid configuration")
	ErrInvalidTokenCount = errors.New("ratelimiter: token count must be between 1 and capacity")
	ErrStoreUnavailable  = errors.New("ratelimiter: store unavailable")
)
