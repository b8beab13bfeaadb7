package stream

import "sync"

// BehaviorSubject carries a "current" value: every new subscriber
// immediately receives it, then subsequent values, per spec §4.3.
type BehaviorSubject[T any] struct {
	inner Subject[T]

	mu      sync.Mutex
	current T
}

// NewBehaviorSubject creates a BehaviorSubject seeded with initial.
func NewBehaviorSubject[T any](initial T) *BehaviorSubject[T] {
	return &BehaviorSubject[T]{current: initial}
}

// Subscribe immediately delivers the current value to obs, then
// subsequent values/terminal signals. If the subject has already
// terminated, only the terminal signal is delivered (no replay of the
// last value), matching the inner Subject's terminal-replay behavior.
func (b *BehaviorSubject[T]) Subscribe(obs Observer[T]) Subscription {
	b.mu.Lock()
	current := b.current
	b.mu.Unlock()

	// Register with the inner Subject first, then deliver the current
	// value captured above. If the subject has already terminated, the
	// inner Subscribe has delivered the terminal signal and returned an
	// inactive subscription, so no current value is delivered.
	delivered := false
	wrapped := Observer[T]{
		OnNext: func(v T) {
			obs.next(v)
		},
		OnError:     obs.err,
		OnCompleted: obs.completed,
	}
	sub := b.inner.Subscribe(wrapped)
	if sub.IsActive() {
		obs.next(current)
		delivered = true
	}
	_ = delivered
	return sub
}

// SubscribeFunc is a convenience wrapper for a value-only observer.
func (b *BehaviorSubject[T]) SubscribeFunc(fn func(T)) Subscription {
	return b.Subscribe(ObserveNext(fn))
}

// Next stores v as the current value and publishes it to subscribers.
func (b *BehaviorSubject[T]) Next(v T) {
	b.mu.Lock()
	b.current = v
	b.mu.Unlock()
	b.inner.Next(v)
}

// Value returns the current value.
func (b *BehaviorSubject[T]) Value() T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Error terminates the subject with an error.
func (b *BehaviorSubject[T]) Error(err error) { b.inner.Error(err) }

// Complete terminates the subject successfully.
func (b *BehaviorSubject[T]) Complete() { b.inner.Complete() }

// Dispose completes the subject.
func (b *BehaviorSubject[T]) Dispose() { b.inner.Dispose() }
