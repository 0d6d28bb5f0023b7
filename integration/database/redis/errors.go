package redis

import "errors"

var (
	ErrEmptyConnectionURL = errors.New("redis: connection URL is empty, set REDIS_URL")
	ErrInvalidURL         = errors.New("redis: parse connection URL")
	ErrNotReady           = errors.New("redis: server not ready before timeout")
	ErrHealthcheckFailed  = errors.New("redis: healthcheck failed")
)
