package redis

import "errors"

// Errors returned by Open and Healthcheck. Causes are joined to them.
var (
	ErrEmptyConnectionURL = errors.New("redis: REDIS_URL is not set")
	ErrFailedToParseURL   = errors.New("redis: malformed connection URL")
	ErrConnectionFailed   = errors.New("redis: cannot connect")
	ErrHealthcheckFailed  = errors.New("redis: ping failed")
)
