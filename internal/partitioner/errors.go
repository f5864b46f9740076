package partitioner

import "errors"

var (
	ErrInvalidCount        = errors.New("invalid count")
	ErrInvalidMode         = errors.New("invalid mode")
	ErrIdentifierCollision = errors.New("set identifier collision")
)
