// Package batcher provides a generic buffered batch writer with rate limiting.
package batcher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// retainFactor bounds how much a failed batch may grow, as a multiple of the
// flush size, before the oldest items are dropped.
const retainFactor = 4

// Batcher buffers items and hands them to a sink callback once enough have
// accumulated or the flush interval elapses. A failed flush keeps the batch
// and retries it on the next trigger, so a briefly unavailable sink does not
// lose items. A graceful Stop drains anything still queued before the final
// flush.
type Batcher[T any] struct {
	sink          func(context.Context, []T) error
	items         chan T
	flushSize     int
	flushInterval time.Duration
	retainLimit   int
	rl            ratelimit.Limiter
	logger        *zap.Logger

	buf []T

	wg   sync.WaitGroup
	stop chan struct{}
}

// New constructs a Batcher. Flushes are paced at rps calls per second; the
// sink must not retain the slice it is handed.
func New[T any](logger *zap.Logger, sink func(context.Context, []T) error, flushSize int, flushInterval time.Duration, rps int) *Batcher[T] {
	return &Batcher[T]{
		logger:        logger,
		sink:          sink,
		items:         make(chan T, flushSize*2),
		flushSize:     flushSize,
		flushInterval: flushInterval,
		retainLimit:   flushSize * retainFactor,
		buf:           make([]T, 0, flushSize),
		rl:            ratelimit.New(rps),
		stop:          make(chan struct{}),
	}
}

// Start begins the background flushing loop.
func (b *Batcher[T]) Start(ctx context.Context) {
	b.wg.Add(1)
	go b.run(ctx)
}

// Stop drains queued items, flushes them, and stops the background loop.
func (b *Batcher[T]) Stop() {
	close(b.stop)
	b.wg.Wait()
}

// Add queues an item for batching, respecting context cancellation.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	select {
	case <-b.stop:
		return context.Canceled
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case b.items <- item:
		return nil
	}
}

func (b *Batcher[T]) run(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.flushBatch(ctx)
			return

		case <-b.stop:
			b.drain()
			b.flushBatch(ctx)
			return

		case item := <-b.items:
			b.buffer(ctx, item)

		case <-ticker.C:
			b.flushBatch(ctx)
		}
	}
}

// buffer appends item and flushes once the batch is full.
func (b *Batcher[T]) buffer(ctx context.Context, item T) {
	b.buf = append(b.buf, item)
	if len(b.buf) >= b.flushSize {
		b.flushBatch(ctx)
	}
}

// drain empties the queue without blocking, so a graceful stop covers
// everything already handed to Add.
func (b *Batcher[T]) drain() {
	for {
		select {
		case item := <-b.items:
			b.buf = append(b.buf, item)
		default:
			return
		}
	}
}

// flushBatch hands the buffered items to the sink. On error the batch is
// retained for the next trigger, trimmed to retainLimit so a sink outage
// cannot grow it without bound.
func (b *Batcher[T]) flushBatch(ctx context.Context) {
	if len(b.buf) == 0 {
		return
	}

	b.rl.Take()
	if err := b.sink(ctx, b.buf); err != nil {
		b.logger.Warn("batch not flushed; retaining", zap.Int("size", len(b.buf)), zap.Error(err))
		if over := len(b.buf) - b.retainLimit; over > 0 {
			b.logger.Error("retained batch over limit; dropping oldest items", zap.Int("dropped", over))
			b.buf = append(b.buf[:0], b.buf[over:]...)
		}
		return
	}

	b.logger.Debug("batch flushed", zap.Int("size", len(b.buf)))
	b.buf = b.buf[:0]
}
