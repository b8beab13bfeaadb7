package pathobserve

import (
	"reflect"
	"sync"

	"github.com/dshills/reactivemodel/notify"
	"github.com/dshills/reactivemodel/stream"
	"github.com/tidwall/match"
)

// Observable is implemented by any object whose property writes are
// announced via a notify.Notifier — the contract an intermediate node
// must satisfy to be watched rather than treated as a plain value.
type Observable interface {
	Notifier() *notify.Notifier
}

type boundNode struct {
	step    Step
	parent  any
	current any
	missing bool
	sub     notify.Subscription
}

// Observer republishes compute(), recomputed whenever any step on the
// path changes, deduplicated by structural equality (spec §4.4.4). All
// state mutation happens under o.mu; emission to the underlying stream
// always happens after releasing it, so a subscriber that re-enters
// Subscribe from within its own callback (spec §8 S6) never deadlocks.
type Observer[R any] struct {
	mu      sync.Mutex
	root    any
	steps   []Step
	compute func() R

	nodes  []*boundNode
	active int

	hasLast   bool
	lastValue R

	subj *stream.Subject[R]
}

// Observe builds a path observer rooted at root, walking steps in
// order, and producing each terminal value via compute. The chain is
// inert until the first Subscribe (spec §4.4.5).
func Observe[R any](root any, compute func() R, steps ...Step) *Observer[R] {
	return &Observer[R]{
		root:    root,
		steps:   steps,
		compute: compute,
		subj:    stream.NewSubject[R](),
	}
}

// Subscribe registers fn for terminal-value emissions. The first
// Subscribe call activates the binding tree; the matching Unsubscribe
// that drops the subscriber count to zero deactivates it.
func (o *Observer[R]) Subscribe(fn func(R)) stream.Subscription {
	o.mu.Lock()
	emit, value := false, *new(R)
	if o.active == 0 {
		emit, value = o.activateLocked()
	}
	o.active++
	o.mu.Unlock()

	inner := o.subj.SubscribeFunc(fn)
	if emit {
		o.subj.Next(value)
	}
	return &pathSubscription[R]{o: o, inner: inner}
}

type pathSubscription[R any] struct {
	mu    sync.Mutex
	o     *Observer[R]
	inner stream.Subscription
}

func (s *pathSubscription[R]) Unsubscribe() {
	s.mu.Lock()
	if s.inner == nil {
		s.mu.Unlock()
		return
	}
	inner := s.inner
	s.inner = nil
	s.mu.Unlock()

	inner.Unsubscribe()

	s.o.mu.Lock()
	s.o.active--
	if s.o.active == 0 {
		s.o.deactivateLocked()
	}
	s.o.mu.Unlock()
}

func (s *pathSubscription[R]) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner != nil && s.inner.IsActive()
}

// activateLocked builds every node in the chain from root and computes
// the initial terminal value, returning it for the caller to emit after
// releasing o.mu. Must be called with o.mu held.
func (o *Observer[R]) activateLocked() (emit bool, value R) {
	o.nodes = make([]*boundNode, len(o.steps))
	o.rebindFromLocked(0, o.root)
	return o.recomputeLocked()
}

// deactivateLocked tears down every node subscription and discards the
// memoized last value, so reactivation starts fresh.
func (o *Observer[R]) deactivateLocked() {
	for _, n := range o.nodes {
		if n != nil && n.sub != nil {
			n.sub.Unsubscribe()
		}
	}
	o.nodes = nil
	o.hasLast = false
}

// rebindFromLocked rebuilds nodes[i:] given that parent is the value to
// feed into steps[i]. Must be called with o.mu held. A node whose
// parent implements Observable is watched on the parent's notifier for
// the node's step name, which may in turn call
// onNodeChanged from another goroutine or re-entrantly — that call
// always reacquires o.mu itself, so rebindFromLocked never calls back
// into the Notifier synchronously during its own critical section.
func (o *Observer[R]) rebindFromLocked(i int, parent any) {
	for j := i; j < len(o.steps); j++ {
		if old := o.nodes[j]; old != nil && old.sub != nil {
			old.sub.Unsubscribe()
		}

		step := o.steps[j]
		value, err := step.Get(parent)
		node := &boundNode{step: step, parent: parent, current: value, missing: err != nil}
		o.nodes[j] = node

		if !node.missing {
			if obs, ok := parent.(Observable); ok {
				idx := j
				node.sub = obs.Notifier().Subscribe(func(_ any, property string) {
					if match.Match(property, node.step.Name) {
						o.onNodeChanged(idx)
					}
				})
			}
		}

		parent = value
	}
}

// onNodeChanged handles a property_changed event for node index i: it
// re-resolves that node's value and, only if the value actually
// differs from what was cached, rebinds every downstream node and
// recomputes. Skipping the rebind when the value is unchanged is what
// keeps a handler that re-assigns an intermediate node to itself from
// looping (spec §4.4 failure modes).
func (o *Observer[R]) onNodeChanged(i int) {
	o.mu.Lock()
	if i >= len(o.nodes) || o.nodes[i] == nil {
		o.mu.Unlock()
		return
	}
	parent := o.nodes[i].parent
	newValue, err := o.steps[i].Get(parent)
	old := o.nodes[i]

	if err == nil && !old.missing && reflect.DeepEqual(old.current, newValue) {
		o.mu.Unlock()
		return
	}

	o.rebindFromLocked(i, parent)
	emit, value := o.recomputeLocked()
	o.mu.Unlock()

	if emit {
		o.subj.Next(value)
	}
}

// recomputeLocked evaluates compute() and reports whether it differs
// (structural equality) from the last emitted value. Must be called
// with o.mu held; it does not itself deliver to o.subj so that callers
// can emit after releasing the lock.
func (o *Observer[R]) recomputeLocked() (emit bool, value R) {
	value = o.compute()
	if o.hasLast && reflect.DeepEqual(o.lastValue, value) {
		return false, value
	}
	o.hasLast = true
	o.lastValue = value
	return true, value
}
