package model

import "reflect"

// changeRaiser is the obligation a Property's owner must satisfy: raise
// a property-changed notification (with dependency fan-out) under its
// own name. ObservableBase implements it.
type changeRaiser interface {
	RaisePropertyChanged(name string)
}

// Option configures a Property at construction.
type Option[T any] func(*Property[T])

// WithEqual overrides the default structural-equality comparison
// (reflect.DeepEqual) used to decide whether a Set call represents an
// actual change.
func WithEqual[T any](equal func(a, b T) bool) Option[T] {
	return func(p *Property[T]) { p.equal = equal }
}

// Property is a single observable field: Set performs the synthesized
// setter contract from spec §4.1 — compare old against new using the
// comparison discipline, and if different, store and raise a
// property-changed notification for Name on the owner.
type Property[T any] struct {
	owner changeRaiser
	name  string
	value T
	equal func(a, b T) bool
}

// NewProperty declares a property named name on owner, with the given
// initial value. No notification is raised for the initial value — a
// constructor that wants an initial raise should call Set explicitly,
// or raise manually after construction.
func NewProperty[T any](owner changeRaiser, name string, initial T, opts ...Option[T]) *Property[T] {
	p := &Property[T]{owner: owner, name: name, value: initial, equal: func(a, b T) bool { return reflect.DeepEqual(a, b) }}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the current value.
func (p *Property[T]) Get() T {
	return p.value
}

// Name returns the property's registered name.
func (p *Property[T]) Name() string {
	return p.name
}

// Set stores v if it differs from the current value (per the
// configured comparison discipline) and raises a property-changed
// notification for Name, including dependency fan-out. It reports
// whether the value actually changed.
func (p *Property[T]) Set(v T) bool {
	if p.equal(p.value, v) {
		return false
	}
	p.value = v
	p.owner.RaisePropertyChanged(p.name)
	return true
}

// SetSilent stores v without raising any notification, for bookkeeping
// writes that must not notify; ordinary client code should use Set.
func (p *Property[T]) SetSilent(v T) {
	p.value = v
}
