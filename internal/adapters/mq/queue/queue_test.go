package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/jobscout/internal/domain/model"
)

func task(source string, reply chan Outcome) FetchTask {
	return FetchTask{
		ID:     source + "-task",
		Source: source,
		Ctx:    context.Background(),
		Fetch: func(context.Context) ([]model.RawJob, error) {
			return []model.RawJob{{"title": source}}, nil
		},
		Reply: reply,
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, task("adzuna", make(chan Outcome, 1))); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.Source != "adzuna" {
		t.Errorf("expected adzuna, got %q", got.Source)
	}
	if got.Enqueued.IsZero() {
		t.Error("expected enqueue time to be stamped")
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for _, s := range []string{"a", "b"} {
		if err := q.Enqueue(ctx, task(s, make(chan Outcome, 1))); err != nil {
			t.Fatalf("enqueue %s: %v", s, err)
		}
	}
	if err := q.Enqueue(ctx, task("c", make(chan Outcome, 1))); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
}

func TestInMemoryQueue_CancelledSubmitter(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, task("a", make(chan Outcome, 1))); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	if err := q.Enqueue(ctx, task("a", make(chan Outcome, 1))); err != nil {
		t.Fatal(err)
	}
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if err := q.Enqueue(ctx, task("b", make(chan Outcome, 1))); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Waiting tasks drain before the channel closes.
	ch := q.Dequeue(ctx)
	if got := <-ch; got.Source != "a" {
		t.Errorf("expected a, got %q", got.Source)
	}
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected dequeue channel to close")
		}
	case <-time.After(time.Second):
		t.Error("dequeue channel did not close")
	}
}

func TestInMemoryQueue_DequeueStopsWithContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	ch := q.Dequeue(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected no task")
		}
	case <-time.After(time.Second):
		t.Error("dequeue channel did not close after cancel")
	}
}

func TestInMemoryQueue_CancelAnswersWaitingTasks(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	reply := make(chan Outcome, 1)
	if err := q.Enqueue(context.Background(), task("adzuna", reply)); err != nil {
		t.Fatalf("unexpected enqueue error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	q.Dequeue(ctx)
	cancel()

	select {
	case o := <-reply:
		if !errors.Is(o.Err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", o.Err)
		}
		if o.Source != "adzuna" {
			t.Errorf("expected source adzuna, got %q", o.Source)
		}
	case <-time.After(time.Second):
		t.Error("waiting task was never answered")
	}
}
