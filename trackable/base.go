package trackable

import (
	"reflect"

	"github.com/dshills/reactivemodel/model"
	"github.com/dshills/reactivemodel/notify"
	"github.com/dshills/reactivemodel/rmerrors"
)

// Notifiable is the minimum contract for an object whose property
// writes announce themselves, shared with pathobserve.Observable.
type Notifiable interface {
	Notifier() *notify.Notifier
}

// Trackable is the contract every nested child property must satisfy
// to participate in change tracking: it reports its own changed state,
// accepts/rejects recursively, exposes its TrackableBase so a parent
// can compare originals, and compares structurally against a sibling.
type Trackable interface {
	Notifiable
	IsChanged() bool
	AcceptChanges() error
	RejectChanges() error
	TrackableState() *TrackableBase
	OriginalEquals(other Trackable) bool
	MatchesOriginal(candidate Trackable) bool
}

// Change is one entry of GetChanges/GetChangedItems: a property name
// with its original and current values.
type Change struct {
	Property string
	Original any
	Current  any
}

type trackableProp interface {
	name() string
	acceptChanges()
	rejectChanges()
	setOriginalAny(v any) error
	resetValueAny(v any) error
	changeTuple() (original, current any)
	equalsCurrent(other trackableProp) bool
	matchesOriginal(other trackableProp) bool
	recomputeDifferent() bool
}

// TrackableBase is embedded by every trackable domain type. It owns the
// changed-property set, the begin_init/end_init counter, and the
// declaration-ordered list of trackable properties needed for
// object-level accept/reject and GetChanges.
type TrackableBase struct {
	model.ObservableBase

	changed   map[string]bool
	initCount int
	props     []trackableProp
	propIndex map[string]int
}

// TrackableState returns b itself, letting a sibling Trackable compare
// against this object's property set.
func (b *TrackableBase) TrackableState() *TrackableBase {
	return b
}

// IsChanged reports whether any property is currently in the
// changed-set.
func (b *TrackableBase) IsChanged() bool {
	return len(b.changed) > 0
}

// IsInitializing reports whether begin_init has been called without a
// matching end_init.
func (b *TrackableBase) IsInitializing() bool {
	return b.initCount > 0
}

// BeginInit enters initialization mode, reentrantly. Refuses while the
// object currently has changes (spec §4.5).
func (b *TrackableBase) BeginInit() error {
	if b.IsChanged() {
		return rmerrors.ErrInvalidOperation
	}
	b.initCount++
	return nil
}

// EndInit leaves one level of initialization mode.
func (b *TrackableBase) EndInit() error {
	if b.initCount == 0 {
		return rmerrors.ErrInvalidOperation
	}
	b.initCount--
	return nil
}

func (b *TrackableBase) register(p trackableProp) {
	if b.propIndex == nil {
		b.propIndex = make(map[string]int)
	}
	b.propIndex[p.name()] = len(b.props)
	b.props = append(b.props, p)
}

func (b *TrackableBase) isMarkedChanged(name string) bool {
	return b.changed[name]
}

// markChanged updates the changed-set for name, raising
// property_changed("IsChanged") exactly when the set's emptiness
// toggles.
func (b *TrackableBase) markChanged(name string, on bool) {
	wasEmpty := len(b.changed) == 0
	if on {
		if b.changed == nil {
			b.changed = make(map[string]bool)
		}
		b.changed[name] = true
	} else {
		delete(b.changed, name)
	}
	nowEmpty := len(b.changed) == 0
	if wasEmpty != nowEmpty {
		b.RaisePropertyChanged("IsChanged")
	}
}

// AcceptChanges commits every changed property's current value as its
// new original, recursing into trackable children, then clears the
// changed-set. Fails with InvalidOperation while initializing.
func (b *TrackableBase) AcceptChanges() error {
	if b.IsInitializing() {
		return rmerrors.ErrInvalidOperation
	}
	for _, p := range b.props {
		if b.isMarkedChanged(p.name()) {
			p.acceptChanges()
		}
	}
	return nil
}

// RejectChanges restores every changed property's original value,
// recursing into trackable children, then clears the changed-set.
// Fails with InvalidOperation while initializing.
func (b *TrackableBase) RejectChanges() error {
	if b.IsInitializing() {
		return rmerrors.ErrInvalidOperation
	}
	for _, p := range b.props {
		if b.isMarkedChanged(p.name()) {
			p.rejectChanges()
		}
	}
	return nil
}

// SetOriginalValue rewrites name's original slot. If the property is
// not currently changed, the current slot is rewritten too; if it is
// changed, the changed-set is re-evaluated against the new original.
func (b *TrackableBase) SetOriginalValue(name string, v any) error {
	idx, ok := b.propIndex[name]
	if !ok {
		return rmerrors.NewPropertyError(name, rmerrors.ErrMissingProperty)
	}
	return b.props[idx].setOriginalAny(v)
}

// ResetValue writes both the original and current slot of name to v,
// raising property_changed for it; is_changed becomes false if name
// was the only changed property.
func (b *TrackableBase) ResetValue(name string, v any) error {
	idx, ok := b.propIndex[name]
	if !ok {
		return rmerrors.NewPropertyError(name, rmerrors.ErrMissingProperty)
	}
	return b.props[idx].resetValueAny(v)
}

// GetChanges returns (property, original, current) for every property
// currently in the changed-set, in declaration order.
func (b *TrackableBase) GetChanges() []Change {
	var out []Change
	for _, p := range b.props {
		if b.isMarkedChanged(p.name()) {
			orig, cur := p.changeTuple()
			out = append(out, Change{Property: p.name(), Original: orig, Current: cur})
		}
	}
	return out
}

// OriginalEquals reports whether other is structurally equal to b:
// same declared properties, and for each, equal current values
// (recursing via OriginalEquals for trackable-kinded properties).
func (b *TrackableBase) OriginalEquals(other Trackable) bool {
	if other == nil || reflect.ValueOf(other).IsNil() {
		return false
	}
	ob := other.TrackableState()
	if ob == nil || len(b.props) != len(ob.props) {
		return false
	}
	for _, p := range b.props {
		idx, ok := ob.propIndex[p.name()]
		if !ok {
			return false
		}
		if !p.equalsCurrent(ob.props[idx]) {
			return false
		}
	}
	return true
}

// MatchesOriginal reports whether candidate's current property values
// equal b's own original values, property by property (recursing via
// MatchesOriginal for trackable-kinded properties). Unlike
// OriginalEquals, which compares both sides' current values, this
// compares b's baseline against candidate's live state — the
// comparison a collection needs when its captured baseline item has
// itself drifted from its own original before capture.
func (b *TrackableBase) MatchesOriginal(candidate Trackable) bool {
	if candidate == nil || reflect.ValueOf(candidate).IsNil() {
		return false
	}
	cb := candidate.TrackableState()
	if cb == nil || len(b.props) != len(cb.props) {
		return false
	}
	for _, p := range b.props {
		idx, ok := cb.propIndex[p.name()]
		if !ok {
			return false
		}
		if !p.matchesOriginal(cb.props[idx]) {
			return false
		}
	}
	return true
}

func isNilTrackable(t Trackable) bool {
	v := reflect.ValueOf(t)
	return !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil())
}
