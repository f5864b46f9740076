package publisher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

type Publisher[T any] struct {
	write           WriteFn[T]
	asyncMessagesCh chan asyncMessage[T]
	workersFinished chan struct{}
	mu              sync.RWMutex
	closed          atomic.Bool
}

// NewPublisher создаёт новый Publisher.
// Запускает указанное количество воркеров и горутину,
// отслеживающую их завершение. workerCount < 1 трактуется как 1.
func NewPublisher[T any](ctx context.Context, write WriteFn[T], workerCount int, bufferSize int) *Publisher[T] {
	workerCount = max(workerCount, 1)
	bufferSize = max(bufferSize, 0)

	p := &Publisher[T]{
		write:           write,
		asyncMessagesCh: make(chan asyncMessage[T], bufferSize),
		workersFinished: make(chan struct{}),
	}

	wg := &sync.WaitGroup{}
	wg.Add(workerCount)
	for range workerCount {
		go p.worker(ctx, wg)
	}

	go func() {
		wg.Wait()
		close(p.workersFinished)
	}()

	return p
}

// SendSync отправляет сообщение синхронно.
func (p *Publisher[T]) SendSync(ctx context.Context, message T) error {
	if p.closed.Load() {
		return ErrClosed
	}

	if err := p.write(ctx, message); err != nil {
		zap.L().Error(err.Error())
		return err
	}

	return nil
}

// SendAsync помещает сообщение в очередь воркеров.
// Callback (если задан) вызывается после попытки записи, в том числе успешной.
func (p *Publisher[T]) SendAsync(ctx context.Context, message T, callback Callback[T]) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed.Load() {
		return ErrClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.asyncMessagesCh <- asyncMessage[T]{ctx: ctx, message: message, callback: callback}:
	}

	return nil
}

// Close закрывает очередь и ждёт, пока воркеры обработают оставшиеся сообщения.
// Повторный вызов возвращает ErrClosed.
func (p *Publisher[T]) Close() error {
	p.mu.Lock()
	if p.closed.Swap(true) {
		p.mu.Unlock()
		return ErrClosed
	}
	close(p.asyncMessagesCh)
	p.mu.Unlock()

	<-p.workersFinished

	return nil
}

// PublishAll отправляет все сообщения через воркеров, закрывает Publisher
// и возвращает объединённые ошибки записи.
func (p *Publisher[T]) PublishAll(ctx context.Context, messages []T) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	collect := func(_ context.Context, _ T, err error) {
		if err == nil {
			return
		}
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for _, m := range messages {
		if err := p.SendAsync(ctx, m, collect); err != nil {
			collect(ctx, m, err)
			break
		}
	}

	if err := p.Close(); err != nil {
		collect(ctx, *new(T), err)
	}

	mu.Lock()
	defer mu.Unlock()
	return errors.Join(errs...)
}

// worker обрабатывает сообщения очереди до её закрытия.
// При отмене ctx оставшиеся сообщения получают ошибку контекста без записи.
func (p *Publisher[T]) worker(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for m := range p.asyncMessagesCh {
		var err error
		if err = ctx.Err(); err == nil {
			err = p.write(m.ctx, m.message)
		}
		if err != nil {
			zap.L().Error(err.Error())
		}

		if m.callback != nil {
			m.callback(m.ctx, m.message, err)
		}
	}
}
