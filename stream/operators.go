package stream

import "sync"

// Source is satisfied by any stream primitive observers can subscribe
// to — both Subject and BehaviorSubject already implement it.
type Source[T any] interface {
	Subscribe(Observer[T]) Subscription
}

// CombineLatest2 subscribes to both a and b and emits combine(av, bv)
// every time either source produces a value, once both have produced at
// least one. If a and b are BehaviorSubjects already carrying a value,
// subscribing to the returned Subject delivers the combined value
// immediately (spec §8 S7).
func CombineLatest2[A, B, R any](a Source[A], b Source[B], combine func(A, B) R) *Subject[R] {
	out := NewSubject[R]()

	var mu sync.Mutex
	var av A
	var bv B
	var haveA, haveB bool

	emit := func() {
		if haveA && haveB {
			out.Next(combine(av, bv))
		}
	}

	a.Subscribe(Observer[A]{
		OnNext: func(v A) {
			mu.Lock()
			av, haveA = v, true
			emit()
			mu.Unlock()
		},
		OnError:     out.Error,
		OnCompleted: out.Complete,
	})
	b.Subscribe(Observer[B]{
		OnNext: func(v B) {
			mu.Lock()
			bv, haveB = v, true
			emit()
			mu.Unlock()
		},
		OnError:     out.Error,
		OnCompleted: out.Complete,
	})

	return out
}

// DistinctUntilChanged re-emits only values that differ from the
// previously emitted one, according to equal.
func DistinctUntilChanged[T any](source Source[T], equal func(a, b T) bool) *Subject[T] {
	out := NewSubject[T]()

	var mu sync.Mutex
	var last T
	var have bool

	source.Subscribe(Observer[T]{
		OnNext: func(v T) {
			mu.Lock()
			changed := !have || !equal(last, v)
			if changed {
				last, have = v, true
			}
			mu.Unlock()
			if changed {
				out.Next(v)
			}
		},
		OnError:     out.Error,
		OnCompleted: out.Complete,
	})

	return out
}

// Select maps each value from source through fn.
func Select[T, R any](source Source[T], fn func(T) R) *Subject[R] {
	out := NewSubject[R]()
	source.Subscribe(Observer[T]{
		OnNext:      func(v T) { out.Next(fn(v)) },
		OnError:     out.Error,
		OnCompleted: out.Complete,
	})
	return out
}

// Where re-emits only values for which predicate returns true.
func Where[T any](source Source[T], predicate func(T) bool) *Subject[T] {
	out := NewSubject[T]()
	source.Subscribe(Observer[T]{
		OnNext: func(v T) {
			if predicate(v) {
				out.Next(v)
			}
		},
		OnError:     out.Error,
		OnCompleted: out.Complete,
	})
	return out
}

// Take re-emits the first n values then completes.
func Take[T any](source Source[T], n int) *Subject[T] {
	out := NewSubject[T]()
	if n <= 0 {
		out.Complete()
		return out
	}

	var mu sync.Mutex
	seen := 0
	var sub Subscription
	sub = source.Subscribe(Observer[T]{
		OnNext: func(v T) {
			mu.Lock()
			if seen >= n {
				mu.Unlock()
				return
			}
			seen++
			done := seen >= n
			mu.Unlock()

			out.Next(v)
			if done {
				out.Complete()
				if sub != nil {
					sub.Unsubscribe()
				}
			}
		},
		OnError:     out.Error,
		OnCompleted: out.Complete,
	})
	return out
}

// Skip discards the first n values then re-emits the rest.
func Skip[T any](source Source[T], n int) *Subject[T] {
	out := NewSubject[T]()
	var mu sync.Mutex
	skipped := 0
	source.Subscribe(Observer[T]{
		OnNext: func(v T) {
			mu.Lock()
			if skipped < n {
				skipped++
				mu.Unlock()
				return
			}
			mu.Unlock()
			out.Next(v)
		},
		OnError:     out.Error,
		OnCompleted: out.Complete,
	})
	return out
}
