package sender

import (
	"context"

	"record-splitter/internal/partitioner"
)

// Sender публикует набор во внешний приёмник.
type Sender interface {
	Send(ctx context.Context, set partitioner.Set) error
	Close() error
}
