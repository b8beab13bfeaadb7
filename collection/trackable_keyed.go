package collection

import (
	"reflect"

	"github.com/dshills/reactivemodel/rmerrors"
)

// KeyedDiff is one element of the keyed change set: a Change carries
// both Current and Original; Add/Remove carry only the side that
// exists.
type KeyedDiff[T any] struct {
	Kind     DiffKind
	Current  T
	Original T
}

// TrackableKeyedList overlays original-snapshot accounting on
// KeyedList, comparing as maps key→value (spec §4.8 "Keyed variant").
type TrackableKeyedList[K comparable, T any] struct {
	kl          *KeyedList[K, T]
	original    map[K]T
	hasOriginal bool
	isChanged   bool
	initCount   int
	equalValue  func(a, b T) bool
}

// NewTrackableKeyedList creates a trackable keyed list, optionally
// seeded with initial items as its starting baseline.
func NewTrackableKeyedList[K comparable, T any](keyOf func(T) K, initial []T, opts ...Option[T]) (*TrackableKeyedList[K, T], error) {
	kl, err := NewKeyed[K, T](keyOf, initial, opts...)
	if err != nil {
		return nil, err
	}
	tkl := &TrackableKeyedList[K, T]{kl: kl, equalValue: func(a, b T) bool { return reflect.DeepEqual(a, b) }}
	if stream, err := kl.List().ItemsChanges(); err == nil {
		stream.SubscribeFunc(func(ic ItemChange[T]) {
			if ic.Property == "IsChanged" {
				tkl.recompute()
			}
		})
	}
	return tkl, nil
}

// KeyedList returns the underlying keyed list.
func (tkl *TrackableKeyedList[K, T]) KeyedList() *KeyedList[K, T] { return tkl.kl }

// IsChanged reports whether the collection differs from its captured
// original.
func (tkl *TrackableKeyedList[K, T]) IsChanged() bool { return tkl.isChanged }

// IsInitializing reports whether begin_init is active.
func (tkl *TrackableKeyedList[K, T]) IsInitializing() bool { return tkl.initCount > 0 }

// BeginInit enters initialization mode, reentrantly.
func (tkl *TrackableKeyedList[K, T]) BeginInit() { tkl.initCount++ }

// EndInit leaves one level of initialization mode.
func (tkl *TrackableKeyedList[K, T]) EndInit() error {
	if tkl.initCount == 0 {
		return rmerrors.ErrInvalidOperation
	}
	tkl.initCount--
	return nil
}

func (tkl *TrackableKeyedList[K, T]) ensureOriginalCaptured() {
	if !tkl.hasOriginal {
		tkl.original = snapshotMap(tkl.kl)
		tkl.hasOriginal = true
	}
}

func snapshotMap[K comparable, T any](kl *KeyedList[K, T]) map[K]T {
	m := make(map[K]T, kl.Count())
	for _, it := range kl.Items() {
		m[kl.GetKey(it)] = it
	}
	return m
}

// Add appends value, failing with DuplicateKey if its key exists.
func (tkl *TrackableKeyedList[K, T]) Add(value T) error {
	if tkl.IsInitializing() {
		if err := tkl.kl.Add(value); err != nil {
			return err
		}
		if tkl.hasOriginal {
			tkl.original[tkl.kl.GetKey(value)] = value
		}
		return nil
	}
	tkl.ensureOriginalCaptured()
	if err := tkl.kl.Add(value); err != nil {
		return err
	}
	tkl.recompute()
	return nil
}

// AddOrUpdate replaces the existing entry for value's key, or appends.
func (tkl *TrackableKeyedList[K, T]) AddOrUpdate(value T) {
	if tkl.IsInitializing() {
		tkl.kl.AddOrUpdate(value)
		if tkl.hasOriginal {
			tkl.original[tkl.kl.GetKey(value)] = value
		}
		return
	}
	tkl.ensureOriginalCaptured()
	tkl.kl.AddOrUpdate(value)
	tkl.recompute()
}

// RemoveKey removes the entry for key.
func (tkl *TrackableKeyedList[K, T]) RemoveKey(key K) bool {
	if tkl.IsInitializing() {
		removed := tkl.kl.RemoveKey(key)
		if removed && tkl.hasOriginal {
			delete(tkl.original, key)
		}
		return removed
	}
	tkl.ensureOriginalCaptured()
	removed := tkl.kl.RemoveKey(key)
	if removed {
		tkl.recompute()
	}
	return removed
}

// Reset replaces the contents wholesale; see TrackableList.Reset for
// the meaning of initialize.
func (tkl *TrackableKeyedList[K, T]) Reset(items []T, initialize bool) error {
	if initialize {
		tkl.initCount++
		tkl.hasOriginal = false
		err := tkl.kl.Reset(items)
		tkl.initCount--
		if err != nil {
			return err
		}
		tkl.recompute()
		return nil
	}
	tkl.ensureOriginalCaptured()
	if err := tkl.kl.Reset(items); err != nil {
		return err
	}
	tkl.recompute()
	return nil
}

// AcceptChanges discards the captured original, recursively accepting
// every trackable item, then recaptures the (now unchanged) baseline.
func (tkl *TrackableKeyedList[K, T]) AcceptChanges() error {
	if tkl.IsInitializing() {
		return rmerrors.ErrInvalidOperation
	}
	for _, it := range tkl.kl.Items() {
		if tr, ok := asTrackable(it); ok {
			_ = tr.AcceptChanges()
		}
	}
	tkl.hasOriginal = false
	tkl.ensureOriginalCaptured()
	tkl.recompute()
	return nil
}

// RejectChanges rejects every trackable item and restores the captured
// original, if any.
func (tkl *TrackableKeyedList[K, T]) RejectChanges() error {
	if tkl.IsInitializing() {
		return rmerrors.ErrInvalidOperation
	}
	if tkl.hasOriginal {
		values := make([]T, 0, len(tkl.original))
		for _, it := range tkl.original {
			if tr, ok := asTrackable(it); ok {
				_ = tr.RejectChanges()
			}
			values = append(values, it)
		}
		_ = tkl.kl.Reset(values)
	} else {
		for _, it := range tkl.kl.Items() {
			if tr, ok := asTrackable(it); ok {
				_ = tr.RejectChanges()
			}
		}
	}
	tkl.hasOriginal = false
	tkl.setChanged(false)
	return nil
}

func (tkl *TrackableKeyedList[K, T]) recompute() {
	if !tkl.hasOriginal {
		tkl.setChanged(tkl.anyItemChanged())
		return
	}
	tkl.setChanged(!tkl.originalEquals())
}

// anyItemChanged reports whether any live trackable item currently
// reports IsChanged — the only signal available before a baseline has
// ever been captured.
func (tkl *TrackableKeyedList[K, T]) anyItemChanged() bool {
	for _, it := range tkl.kl.Items() {
		if tr, ok := asTrackable(it); ok && tr.IsChanged() {
			return true
		}
	}
	return false
}

func (tkl *TrackableKeyedList[K, T]) setChanged(v bool) {
	if v == tkl.isChanged {
		return
	}
	tkl.isChanged = v
	tkl.kl.Notifier().RaisePropertyChanged(tkl, "IsChanged")
}

func (tkl *TrackableKeyedList[K, T]) originalEquals() bool {
	cur := snapshotMap(tkl.kl)
	if len(cur) != len(tkl.original) {
		return false
	}
	for k, cv := range cur {
		ov, ok := tkl.original[k]
		if !ok {
			return false
		}
		if !tkl.valueEquals(cv, ov) {
			return false
		}
	}
	return true
}

// valueEquals reports whether cur matches orig, orig being the
// captured baseline value: for trackable items this compares orig's
// own original against cur's current (via MatchesOriginal), so a
// baseline item that had already drifted from its own original before
// capture still compares correctly once cur is edited back to it.
func (tkl *TrackableKeyedList[K, T]) valueEquals(cur, orig T) bool {
	if trO, ok := asTrackable(orig); ok {
		trC, ok := asTrackable(cur)
		return ok && trO.MatchesOriginal(trC)
	}
	return tkl.equalValue(cur, orig)
}

// TryGetChange reports the single change for key — Add, Remove, or
// Change(current, original) — or ok=false if key is unchanged or
// unknown to both sides. Before any baseline has been captured, a
// present key is reported changed iff its own trackable item reports
// IsChanged (spec §4.8's per-item toggle rule, independent of whether a
// collection-level original has been captured).
func (tkl *TrackableKeyedList[K, T]) TryGetChange(key K) (KeyedDiff[T], bool) {
	cur, curOK := tkl.kl.TryGet(key)

	if !tkl.hasOriginal {
		if curOK {
			if tr, ok := asTrackable(cur); ok && tr.IsChanged() {
				return KeyedDiff[T]{Kind: DiffChange, Current: cur, Original: cur}, true
			}
		}
		var zero KeyedDiff[T]
		return zero, false
	}

	orig, origOK := tkl.original[key]

	switch {
	case curOK && !origOK:
		return KeyedDiff[T]{Kind: DiffAdd, Current: cur}, true
	case !curOK && origOK:
		return KeyedDiff[T]{Kind: DiffRemove, Original: orig}, true
	case curOK && origOK:
		if !tkl.valueEquals(cur, orig) {
			return KeyedDiff[T]{Kind: DiffChange, Current: cur, Original: orig}, true
		}
	}
	var zero KeyedDiff[T]
	return zero, false
}

// IsValueChanged reports whether TryGetChange would find a change.
func (tkl *TrackableKeyedList[K, T]) IsValueChanged(key K) bool {
	_, ok := tkl.TryGetChange(key)
	return ok
}

// AddOrUpdateOriginal edits the captured-original map in place for
// key's value, re-evaluating is_changed if that toggles the value's
// change state.
func (tkl *TrackableKeyedList[K, T]) AddOrUpdateOriginal(v T) {
	tkl.ensureOriginalCaptured()
	tkl.original[tkl.kl.GetKey(v)] = v
	tkl.recompute()
}

// GetChangedItems diffs every key present in either side.
func (tkl *TrackableKeyedList[K, T]) GetChangedItems() []KeyedDiff[T] {
	seen := make(map[K]bool)
	var out []KeyedDiff[T]
	for _, it := range tkl.kl.Items() {
		k := tkl.kl.GetKey(it)
		seen[k] = true
		if d, ok := tkl.TryGetChange(k); ok {
			out = append(out, d)
		}
	}
	for k := range tkl.original {
		if seen[k] {
			continue
		}
		if d, ok := tkl.TryGetChange(k); ok {
			out = append(out, d)
		}
	}
	return out
}
