package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Dispatcher struct {
	attempts     int
	startTimeout time.Duration
}

// NewDispatcher создает диспетчер с настройками повторов по умолчанию.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		attempts:     backoffAttemptCount,
		startTimeout: startBackoffTimeout,
	}
}

// SetAttempts задает количество попыток записи.
func (d *Dispatcher) SetAttempts(count int) error {
	if count <= 0 {
		return ErrInvalidCount
	}
	d.attempts = count
	return nil
}

// SetStartTimeout задает таймаут первой попытки.
func (d *Dispatcher) SetStartTimeout(timeout time.Duration) {
	d.startTimeout = timeout
}

// Write выполняет запись с использованием механизма повторных попыток (backoff).
func (d *Dispatcher) Write(ctx context.Context, writeFn WriteFn) error {
	return d.writeWithBackoff(ctx, writeFn)
}

// writeWithBackoff повторяет writeFn, увеличивая таймаут попытки в backoffMultiply раз.
// Если контекст отменен — возвращается ошибка контекста.
// Если попытки исчерпаны — возвращается ErrBackoffTimeout вместе с последней ошибкой.
func (d *Dispatcher) writeWithBackoff(ctx context.Context, writeFn WriteFn) error {
	timeout := d.startTimeout

	var lastErr error
	for attempt := range d.attempts {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = d.singleWrite(ctx, timeout, writeFn)
		if lastErr == nil {
			return nil
		}

		zap.L().Warn("write attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Duration("timeout", timeout),
			zap.Error(lastErr),
		)
		timeout = time.Duration(float64(timeout) * backoffMultiply)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("%w: %w", ErrBackoffTimeout, lastErr)
}

// singleWrite выполняет одну попытку записи с ограничением по времени.
func (d *Dispatcher) singleWrite(ctx context.Context, timeout time.Duration, writeFn WriteFn) error {
	ctxT, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := writeFn(ctxT); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("attempt timed out after %s: %w", timeout, err)
		}
		return err
	}

	return nil
}
