package stream

import "sync"

// Observer is the triple of callbacks a Subject delivers to. OnNext may be
// called any number of times; OnError and OnCompleted are each terminal
// and mutually exclusive with every later call, matching spec §4.3.
type Observer[T any] struct {
	OnNext      func(value T)
	OnError     func(err error)
	OnCompleted func()
}

// ObserveNext builds an Observer that only reacts to OnNext, ignoring
// terminal signals. Most internal subscribers in this module only care
// about values, so this is the common case.
func ObserveNext[T any](fn func(T)) Observer[T] {
	return Observer[T]{OnNext: fn}
}

func (o Observer[T]) next(v T) {
	if o.OnNext != nil {
		o.OnNext(v)
	}
}

func (o Observer[T]) err(e error) {
	if o.OnError != nil {
		o.OnError(e)
	}
}

func (o Observer[T]) completed() {
	if o.OnCompleted != nil {
		o.OnCompleted()
	}
}

// Subscription represents a live subscription to a Subject or
// BehaviorSubject. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
	IsActive() bool
}

type subjectSub[T any] struct {
	mu       sync.Mutex
	observer Observer[T]
	active   bool
	owner    *Subject[T]
}

func (s *subjectSub[T]) Unsubscribe() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()
	if s.owner != nil {
		s.owner.remove(s)
	}
}

func (s *subjectSub[T]) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Subject is a hot multicast stream with no replay: late subscribers only
// receive events published after they subscribe.
type Subject[T any] struct {
	mu         sync.Mutex
	subs       []*subjectSub[T]
	terminated bool
	terminal   func(Observer[T])
}

// NewSubject creates an empty Subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Subscribe registers an observer and returns a Subscription that can be
// cancelled with Unsubscribe. Subscribing after the subject has
// terminated immediately delivers the terminal signal and returns an
// already-inactive subscription.
func (s *Subject[T]) Subscribe(obs Observer[T]) Subscription {
	s.mu.Lock()
	if s.terminated {
		terminal := s.terminal
		s.mu.Unlock()
		if terminal != nil {
			terminal(obs)
		}
		return &subjectSub[T]{active: false}
	}

	sub := &subjectSub[T]{observer: obs, active: true, owner: s}
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return sub
}

// SubscribeFunc is a convenience wrapper for a value-only observer.
func (s *Subject[T]) SubscribeFunc(fn func(T)) Subscription {
	return s.Subscribe(ObserveNext(fn))
}

// Next publishes a value to every currently-active subscriber. Delivery
// happens outside the lock, over a snapshot of the subscriber slice, so a
// handler that subscribes or unsubscribes during delivery cannot corrupt
// iteration and is never re-entered for the in-progress Next call.
func (s *Subject[T]) Next(value T) {
	for _, sub := range s.snapshot() {
		if sub.IsActive() {
			sub.observer.next(value)
		}
	}
}

// Error delivers a terminal error to every current subscriber and tears
// down the subject: subsequent Next calls are ignored, and any later
// Subscribe immediately receives the same error.
func (s *Subject[T]) Error(err error) {
	s.terminate(func(o Observer[T]) { o.err(err) })
}

// Complete delivers a terminal completion to every current subscriber.
// Subsequent Next calls are ignored, and any later Subscribe immediately
// receives completion.
func (s *Subject[T]) Complete() {
	s.terminate(func(o Observer[T]) { o.completed() })
}

// Dispose completes the subject, matching spec §4.3 ("disposing a
// subject completes all current subscribers").
func (s *Subject[T]) Dispose() {
	s.Complete()
}

func (s *Subject[T]) terminate(deliver func(Observer[T])) {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return
	}
	s.terminated = true
	s.terminal = deliver
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		if sub.IsActive() {
			deliver(sub.observer)
		}
	}
}

func (s *Subject[T]) snapshot() []*subjectSub[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*subjectSub[T], len(s.subs))
	copy(out, s.subs)
	return out
}

func (s *Subject[T]) remove(target *subjectSub[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub == target {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Count returns the number of currently active subscribers.
func (s *Subject[T]) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sub := range s.subs {
		if sub.IsActive() {
			n++
		}
	}
	return n
}
