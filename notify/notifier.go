// Package notify implements the property-notification graph at the
// heart of the module (spec §4.1): a per-object event plus a hot stream
// of property changes, dependency fan-out, deferred batching, and the
// process-wide property descriptor registry.
package notify

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/dshills/reactivemodel/rmerrors"
	"github.com/dshills/reactivemodel/stream"
	"github.com/google/uuid"
)

// Change is the payload delivered on a Notifier's hot stream: the
// sender and the name of the property that changed.
type Change struct {
	Sender   any
	Property string
}

// Handler is a property-changed callback, carrying (sender, property
// name) per spec §4.1.
type Handler func(sender any, property string)

// Subscription is a live registration on a Notifier's classic event.
type Subscription interface {
	Unsubscribe()
	IsActive() bool
	// ID uniquely identifies this registration for the lifetime of the
	// process, for logging/correlation purposes.
	ID() string
}

type handlerSub struct {
	mu     sync.Mutex
	id     uuid.UUID
	fn     Handler
	active bool
	owner  *Notifier
}

func (h *handlerSub) ID() string { return h.id.String() }

func (h *handlerSub) Unsubscribe() {
	h.mu.Lock()
	if !h.active {
		h.mu.Unlock()
		return
	}
	h.active = false
	h.mu.Unlock()
	h.owner.removeHandler(h)
}

func (h *handlerSub) IsActive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Notifier is embedded (directly or via model.ObservableBase) in every
// observable object. It is not safe for concurrent mutation from
// multiple writers (spec §5 "single-owner"), but subscribe/unsubscribe
// and delivery are race-safe so that observers may live on other
// goroutines.
type Notifier struct {
	mu       sync.Mutex
	handlers []*handlerSub

	streamOnce   sync.Once
	changeStream *stream.Subject[Change]

	deferring  bool
	pendingSet map[string]bool
	pending    []string
	lastSender any
}

// New creates an empty Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Subscribe registers h on the classic property-changed event.
func (n *Notifier) Subscribe(h Handler) Subscription {
	sub := &handlerSub{id: uuid.New(), fn: h, active: true, owner: n}
	n.mu.Lock()
	n.handlers = append(n.handlers, sub)
	n.mu.Unlock()
	return sub
}

func (n *Notifier) removeHandler(target *handlerSub) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, h := range n.handlers {
		if h == target {
			n.handlers = append(n.handlers[:i], n.handlers[i+1:]...)
			return
		}
	}
}

// Stream returns the hot property-changed stream, allocating it on
// first access (spec §4.1 "created lazily on first read").
func (n *Notifier) Stream() *stream.Subject[Change] {
	n.streamOnce.Do(func() {
		n.changeStream = stream.NewSubject[Change]()
	})
	return n.changeStream
}

// DeferScope is the scoped handle returned by Defer. Release flushes
// accumulated notifications; it is safe to call more than once.
type DeferScope struct {
	n        *Notifier
	released bool
}

// Release ends the deferral scope, flushing every distinct property
// name accumulated during it, in first-observed order (spec §3, §8 S2).
func (d *DeferScope) Release() {
	if d == nil || d.released {
		return
	}
	d.released = true
	d.n.endDefer()
}

// Defer begins a deferred-notification scope: until the returned
// scope's Release is called, raised changes accumulate (deduplicated by
// name) instead of delivering immediately. Nesting is not supported;
// calling Defer while already deferred returns ErrAlreadyDeferred.
func (n *Notifier) Defer() (*DeferScope, error) {
	n.mu.Lock()
	if n.deferring {
		n.mu.Unlock()
		return nil, ErrAlreadyDeferred
	}
	n.deferring = true
	n.pendingSet = make(map[string]bool)
	n.pending = nil
	n.mu.Unlock()
	return &DeferScope{n: n}, nil
}

// ErrAlreadyDeferred is returned by Defer when a deferral scope is
// already active.
var ErrAlreadyDeferred = fmt.Errorf("%w: defer_property_changes called while already deferred", rmerrors.ErrInvalidOperation)

// endDefer flushes every distinct property name accumulated during the
// scope, in first-observed order, fanning each out to its dependents
// exactly as an undeferred raise would (spec §3 "equivalent to raising
// each accumulated property once, in order, on release").
func (n *Notifier) endDefer() {
	n.mu.Lock()
	n.deferring = false
	pending := n.pending
	sender := n.lastSender
	n.pending = nil
	n.pendingSet = nil
	n.mu.Unlock()

	for _, name := range pending {
		n.fanOut(sender, name)
	}
}

// RaisePropertyChanged raises a change for name on sender, then raises
// a change (in the same batch, breadth-first, never including name
// itself) for every property that transitively depends on it, per spec
// §3/§4.1/§8 invariant 1. While a deferral scope is active, the raise
// is recorded (deduplicated by name) instead of delivered immediately.
func (n *Notifier) RaisePropertyChanged(sender any, name string) {
	n.mu.Lock()
	n.lastSender = sender
	deferring := n.deferring
	n.mu.Unlock()

	if deferring {
		n.enqueue(name)
		return
	}

	n.fanOut(sender, name)
}

// fanOut delivers name and then every property that transitively
// depends on it, in breadth-first order.
func (n *Notifier) fanOut(sender any, name string) {
	n.deliverOnly(sender, name)

	if t := reflect.TypeOf(sender); t != nil {
		for _, dep := range Dependents(t, name) {
			n.deliverOnly(sender, dep)
		}
	}
}

func (n *Notifier) enqueue(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pendingSet[name] {
		return
	}
	n.pendingSet[name] = true
	n.pending = append(n.pending, name)
}

// deliverOnly delivers a single property-changed notification (no
// dependency fan-out) to the classic handlers and the hot stream.
func (n *Notifier) deliverOnly(sender any, name string) {
	n.mu.Lock()
	handlers := make([]*handlerSub, len(n.handlers))
	copy(handlers, n.handlers)
	st := n.changeStream
	n.mu.Unlock()

	for _, h := range handlers {
		if h.IsActive() {
			h.fn(sender, name)
		}
	}
	if st != nil {
		st.Next(Change{Sender: sender, Property: name})
	}
}
