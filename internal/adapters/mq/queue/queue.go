// Package queue holds provider fetches waiting for a worker.
//
// The queue is bounded and never blocks the submitter: a full or closed queue
// rejects the task and the caller reports that source as failed.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/metrics"
)

const defaultCapacity = 1024

// FetchFunc performs one provider call.
type FetchFunc func(ctx context.Context) ([]model.RawJob, error)

// Outcome is the result of one fetch branch. Exactly one of Jobs or Err is meaningful.
type Outcome struct {
	Source string
	Jobs   []model.RawJob
	Err    error
}

// FetchTask is one provider call waiting for a worker. Reply must be buffered
// so the worker never blocks on a submitter that stopped listening.
type FetchTask struct {
	ID       string
	Source   string
	Ctx      context.Context //nolint:containedctx // request scope travels with the task
	Fetch    FetchFunc
	Reply    chan<- Outcome
	Enqueued time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a task. It returns ErrFull or ErrClosed when the task was not accepted.
	Enqueue(ctx context.Context, t FetchTask) error

	// Dequeue returns a channel that receives tasks until the queue is closed.
	Dequeue(ctx context.Context) <-chan FetchTask

	// Len returns the number of waiting tasks.
	Len(ctx context.Context) int

	// Close stops accepting tasks; waiting tasks are still delivered.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	tasks    chan FetchTask
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a bounded queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.tasks = make(chan FetchTask, q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a task without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t FetchTask) error { //nolint:gocritic // hugeParam: tasks travel by value
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordFetchRejected()
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.Enqueued.IsZero() {
		t.Enqueued = time.Now()
	}

	select {
	case q.tasks <- t:
		metrics.UpdateQueueSize(len(q.tasks))
		return nil
	default:
		metrics.RecordFetchRejected()
		return ErrFull
	}
}

// Dequeue returns a channel of waiting tasks. It closes when the queue is
// closed and drained, or when ctx is done. Tasks still waiting when ctx ends
// are answered with ErrClosed.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan FetchTask {
	out := make(chan FetchTask)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				q.drain()
				return
			case t, ok := <-q.tasks:
				if !ok {
					return
				}
				metrics.UpdateQueueSize(len(q.tasks))
				select {
				case out <- t:
				case <-ctx.Done():
					// Not handed to a worker; answer so the submitter is not left waiting.
					t.Reply <- Outcome{Source: t.Source, Err: ErrClosed}
					q.drain()
					return
				}
			}
		}
	}()
	return out
}

// drain answers every task currently waiting.
func (q *InMemoryQueue) drain() {
	for {
		select {
		case t, ok := <-q.tasks:
			if !ok {
				return
			}
			t.Reply <- Outcome{Source: t.Source, Err: ErrClosed}
		default:
			metrics.UpdateQueueSize(len(q.tasks))
			return
		}
	}
}

// Len returns the number of waiting tasks.
func (q *InMemoryQueue) Len(context.Context) int {
	size := len(q.tasks)
	metrics.UpdateQueueSize(size)
	return size
}

// Close stops accepting tasks.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.tasks)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
