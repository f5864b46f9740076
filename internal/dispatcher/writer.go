package dispatcher

import "context"

// WriteFn - одна попытка записи. ctx ограничен таймаутом попытки.
type WriteFn = func(ctx context.Context) error
