// Package worker runs queued provider fetches on a fixed set of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobscout/internal/adapters/mq/queue"
	"github.com/okian/jobscout/pkg/logger"
	"github.com/okian/jobscout/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Queue defines how the pool submits and receives tasks.
type Queue interface {
	Enqueue(ctx context.Context, t queue.FetchTask) error
	Dequeue(ctx context.Context) <-chan queue.FetchTask
	Len(ctx context.Context) int
}

// Worker executes fetch tasks.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current task.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue Queue
	name  string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker reading from q.
func NewInMemoryWorker(q Queue, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			w.process(t)
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs one task and always replies exactly once.
func (w *InMemoryWorker) process(t queue.FetchTask) { //nolint:gocritic // hugeParam: tasks travel by value
	ctx := t.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	out := queue.Outcome{Source: t.Source}

	if err := ctx.Err(); err != nil {
		// The submitter gave up while the task waited.
		out.Err = err
		t.Reply <- out
		return
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				out.Jobs = nil
				out.Err = fmt.Errorf("%w: %v", ErrPanic, r)
				w.logger.Error(ctx, "fetch panicked",
					logger.String("source", t.Source),
					logger.String("task_id", t.ID),
					logger.Any("panic", r),
				)
			}
		}()
		out.Jobs, out.Err = t.Fetch(ctx)
	}()

	w.logger.Debug(ctx, "fetch finished",
		logger.String("source", t.Source),
		logger.String("task_id", t.ID),
		logger.Int("jobs", len(out.Jobs)),
		logger.Duration("waited", time.Since(t.Enqueued)),
	)
	t.Reply <- out
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	shutdownTimeout time.Duration
	logger          logger.Logger
}

// NewPool creates a worker pool. A workerCount below one selects a multiple of the CPU count.
func NewPool(workerCount int, q Queue, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:         make([]*InMemoryWorker, workerCount),
		queue:           q,
		shutdownTimeout: poolShutdownTimeout,
		logger:          logger.Get().Named("fetch-pool"),
	}
	for _, opt := range opts {
		opt(pool)
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			q,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(pool.logger),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "fetch pool started", logger.Int("workers", len(p.workers)))
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Pending returns the number of tasks waiting for a worker.
func (p *Pool) Pending(ctx context.Context) int {
	return p.queue.Len(ctx)
}

// Submit queues fetch for source and returns a channel that receives exactly
// one Outcome. A rejected task is answered immediately with the rejection error.
func (p *Pool) Submit(ctx context.Context, source string, fetch queue.FetchFunc) <-chan queue.Outcome {
	reply := make(chan queue.Outcome, 1)
	err := p.queue.Enqueue(ctx, queue.FetchTask{
		ID:       uuid.NewString(),
		Source:   source,
		Ctx:      ctx,
		Fetch:    fetch,
		Reply:    reply,
		Enqueued: time.Now(),
	})
	if err != nil {
		p.logger.Warn(ctx, "fetch rejected", logger.String("source", source), logger.Error(err))
		reply <- queue.Outcome{Source: source, Err: fmt.Errorf("%w: %w", ErrRejected, err)}
	}
	return reply
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, p.shutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("fetch pool: %w", shutdownCtx.Err())
	}
	return nil
}
