package dispatcher

import (
	"errors"
	"time"
)

const (
	backoffMultiply     = 1.2
	startBackoffTimeout = 5 * time.Second
	backoffAttemptCount = 5
)

var (
	ErrBackoffTimeout = errors.New("backoff timeout")
	ErrInvalidCount   = errors.New("invalid attempt count")
)
