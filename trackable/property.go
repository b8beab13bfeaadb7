package trackable

import (
	"reflect"

	"github.com/dshills/reactivemodel/notify"
	"github.com/dshills/reactivemodel/rmerrors"
)

// TrackablePropertyOption configures a TrackableProperty at
// construction.
type TrackablePropertyOption[T any] func(*TrackableProperty[T])

// WithEqual overrides the default structural-equality comparison used
// to decide whether current differs from original.
func WithEqual[T any](equal func(a, b T) bool) TrackablePropertyOption[T] {
	return func(p *TrackableProperty[T]) { p.equal = equal }
}

// ReadOnly marks the property as having no setter: its original slot is
// set once at construction, and subsequent change only flows up
// through a nested trackable child.
func ReadOnly[T any]() TrackablePropertyOption[T] {
	return func(p *TrackableProperty[T]) { p.readOnly = true }
}

// TrackableProperty is a single trackable field: Set performs the
// synthesized trackable setter contract from spec §4.5 (detach old
// child, write-through during init, diff against original, update the
// changed-set (raising IsChanged when it toggles), raise the property
// itself, attach new child).
type TrackableProperty[T any] struct {
	owner    *TrackableBase
	propName string
	current  T
	original T
	readOnly bool
	equal    func(a, b T) bool
	childSub notify.Subscription
}

// NewTrackableProperty declares a trackable property named name on
// owner, with both slots seeded to initial, and registers it with
// owner for object-level accept/reject and GetChanges.
func NewTrackableProperty[T any](owner *TrackableBase, name string, initial T, opts ...TrackablePropertyOption[T]) *TrackableProperty[T] {
	p := &TrackableProperty[T]{owner: owner, propName: name, current: initial, original: initial, equal: func(a, b T) bool { return reflect.DeepEqual(a, b) }}
	for _, opt := range opts {
		opt(p)
	}
	owner.register(p)
	p.attachChild(initial)
	return p
}

func (p *TrackableProperty[T]) name() string { return p.propName }

// Get returns the current value.
func (p *TrackableProperty[T]) Get() T { return p.current }

// GetOriginal returns the original (baseline) value.
func (p *TrackableProperty[T]) GetOriginal() T { return p.original }

// Set stores incoming per the trackable setter contract. Returns
// ErrNoSetter if the property was declared ReadOnly.
func (p *TrackableProperty[T]) Set(incoming T) error {
	if p.readOnly {
		return rmerrors.NewPropertyError(p.propName, rmerrors.ErrNoSetter)
	}
	p.apply(incoming)
	return nil
}

func (p *TrackableProperty[T]) apply(incoming T) {
	p.detachChild()

	if p.owner.IsInitializing() {
		p.original = incoming
	}

	p.current = incoming

	different := p.recomputeDifferent()
	p.owner.markChanged(p.propName, different)

	p.owner.RaisePropertyChanged(p.propName)

	p.attachChild(incoming)
}

// recomputeDifferent reports whether current differs from original by
// the configured comparison, or — for a trackable-kinded value — is
// itself currently changed.
func (p *TrackableProperty[T]) recomputeDifferent() bool {
	different := !p.equal(p.original, p.current)
	if child, ok := any(p.current).(Trackable); ok && !isNilTrackable(child) {
		if child.IsChanged() {
			different = true
		}
	}
	return different
}

func (p *TrackableProperty[T]) detachChild() {
	if p.childSub != nil {
		p.childSub.Unsubscribe()
		p.childSub = nil
	}
}

func (p *TrackableProperty[T]) attachChild(v T) {
	child, ok := any(v).(Trackable)
	if !ok || isNilTrackable(child) {
		return
	}
	p.childSub = child.Notifier().Subscribe(func(_ any, property string) {
		if property == "IsChanged" {
			p.owner.markChanged(p.propName, p.recomputeDifferent())
		}
	})
}

// acceptChanges commits current as the new original, recursing into a
// trackable child, then clears this property from the changed-set.
func (p *TrackableProperty[T]) acceptChanges() {
	p.original = p.current
	if child, ok := any(p.current).(Trackable); ok && !isNilTrackable(child) {
		child.AcceptChanges()
	}
	p.owner.markChanged(p.propName, false)
}

// rejectChanges restores original into current (for mutable
// properties), recursing into the child's own RejectChanges first, then
// clears this property from the changed-set.
func (p *TrackableProperty[T]) rejectChanges() {
	if child, ok := any(p.original).(Trackable); ok && !isNilTrackable(child) {
		child.RejectChanges()
	}
	if !p.readOnly {
		p.current = p.original
	}
	p.owner.markChanged(p.propName, false)
	p.owner.RaisePropertyChanged(p.propName)
}

func (p *TrackableProperty[T]) setOriginalAny(v any) error {
	val, ok := v.(T)
	if !ok {
		return rmerrors.NewPropertyError(p.propName, rmerrors.ErrInvalidOperation)
	}
	wasChanged := p.owner.isMarkedChanged(p.propName)
	p.original = val
	if !wasChanged {
		p.current = val
	} else {
		p.owner.markChanged(p.propName, p.recomputeDifferent())
	}
	return nil
}

func (p *TrackableProperty[T]) resetValueAny(v any) error {
	val, ok := v.(T)
	if !ok {
		return rmerrors.NewPropertyError(p.propName, rmerrors.ErrInvalidOperation)
	}
	p.current = val
	p.original = val
	p.owner.RaisePropertyChanged(p.propName)
	p.owner.markChanged(p.propName, false)
	return nil
}

func (p *TrackableProperty[T]) changeTuple() (original, current any) {
	return p.original, p.current
}

func (p *TrackableProperty[T]) equalsCurrent(other trackableProp) bool {
	op, ok := other.(*TrackableProperty[T])
	if !ok {
		return false
	}
	childA, okA := any(p.current).(Trackable)
	if okA && !isNilTrackable(childA) {
		childB, okB := any(op.current).(Trackable)
		if !okB || isNilTrackable(childB) {
			return false
		}
		return childA.OriginalEquals(childB)
	}
	return p.equal(p.current, op.current)
}

// matchesOriginal reports whether p's original value equals other's
// current value, recursing via MatchesOriginal for a trackable-kinded
// original.
func (p *TrackableProperty[T]) matchesOriginal(other trackableProp) bool {
	op, ok := other.(*TrackableProperty[T])
	if !ok {
		return false
	}
	origChild, okA := any(p.original).(Trackable)
	if okA && !isNilTrackable(origChild) {
		curChild, okB := any(op.current).(Trackable)
		if !okB || isNilTrackable(curChild) {
			return false
		}
		return origChild.MatchesOriginal(curChild)
	}
	return p.equal(p.original, op.current)
}
