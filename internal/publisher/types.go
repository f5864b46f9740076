package publisher

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("publisher closed")

type Callback[T any] = func(ctx context.Context, message T, err error)
type WriteFn[T any] = func(ctx context.Context, message T) error

type asyncMessage[T any] struct {
	ctx      context.Context
	message  T
	callback Callback[T]
}
