package stream

import (
	"context"
	"sync"
	"time"
)

// AsyncSequence adapts a hot Source into a pull-based async sequence: an
// unbounded, single-reader/single-writer FIFO that suspends Next on
// empty and resumes when a value arrives or the source completes
// (spec §5 "to_async_sequence").
type AsyncSequence[T any] struct {
	mu        sync.Mutex
	cond      *sync.Cond
	queue     []T
	err       error
	completed bool
}

// ToAsyncSequence subscribes to source and buffers every value it
// produces until a consumer calls Next.
func ToAsyncSequence[T any](source Source[T]) *AsyncSequence[T] {
	as := &AsyncSequence[T]{}
	as.cond = sync.NewCond(&as.mu)

	source.Subscribe(Observer[T]{
		OnNext: func(v T) {
			as.mu.Lock()
			as.queue = append(as.queue, v)
			as.cond.Signal()
			as.mu.Unlock()
		},
		OnError: func(err error) {
			as.mu.Lock()
			if !as.completed {
				as.err = err
				as.completed = true
			}
			as.cond.Signal()
			as.mu.Unlock()
		},
		OnCompleted: func() {
			as.mu.Lock()
			as.completed = true
			as.cond.Signal()
			as.mu.Unlock()
		},
	})

	return as
}

// Next blocks until a buffered value is available, the sequence
// completes, or ctx is cancelled. ok is false once the queue has
// drained and the source has completed; err carries a terminal error if
// the source called OnError.
func (a *AsyncSequence[T]) Next(ctx context.Context) (value T, ok bool, err error) {
	woken := make(chan struct{})
	stop := make(chan struct{})
	defer close(stop)

	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				a.mu.Lock()
				a.cond.Broadcast()
				a.mu.Unlock()
			case <-stop:
			}
			close(woken)
		}()
	} else {
		close(woken)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for len(a.queue) == 0 && !a.completed {
		if ctx != nil {
			select {
			case <-ctx.Done():
				var zero T
				return zero, false, ctx.Err()
			default:
			}
		}
		a.cond.Wait()
	}

	if len(a.queue) > 0 {
		v := a.queue[0]
		a.queue = a.queue[1:]
		return v, true, nil
	}

	var zero T
	return zero, false, a.err
}

// FirstAsync completes with the first value source produces, fails with
// ErrEmptySequence if the source completes without one, and fails with
// ErrCancelled if ctx is done first (spec §5 "first_async").
func FirstAsync[T any](ctx context.Context, source Source[T]) (T, error) {
	type result struct {
		value T
		err   error
	}
	results := make(chan result, 1)
	var once sync.Once
	finish := func(v T, err error) {
		once.Do(func() {
			results <- result{value: v, err: err}
		})
	}

	var sub Subscription
	sub = source.Subscribe(Observer[T]{
		OnNext: func(v T) {
			finish(v, nil)
			if sub != nil {
				sub.Unsubscribe()
			}
		},
		OnError: func(err error) {
			finish(*new(T), err)
		},
		OnCompleted: func() {
			finish(*new(T), ErrEmptySequence)
		},
	})

	select {
	case r := <-results:
		return r.value, r.err
	case <-ctx.Done():
		if sub != nil {
			sub.Unsubscribe()
		}
		var zero T
		return zero, ErrCancelled
	}
}

// Interval emits monotonically increasing ints, one per period, until
// the returned cancel function is called. Per spec §5, an interval is
// "canceled by disposing the subscription" — callers should invoke
// cancel when their Subscription to the returned Subject is
// unsubscribed.
func Interval(period time.Duration) (*Subject[int], func()) {
	out := NewSubject[int]()
	stop := make(chan struct{})

	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-stop:
				out.Complete()
				return
			case <-ticker.C:
				out.Next(i)
				i++
			}
		}
	}()

	var once sync.Once
	cancel := func() { once.Do(func() { close(stop) }) }
	return out, cancel
}
