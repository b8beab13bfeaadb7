package collection

import (
	"reflect"

	"github.com/dshills/reactivemodel/rmerrors"
	"github.com/dshills/reactivemodel/trackable"
)

// DiffKind tags one entry of GetChangedItems.
type DiffKind int

const (
	DiffAdd DiffKind = iota
	DiffRemove
	DiffChange
)

// ItemDiff is one element of the change set produced by
// TrackableList.GetChangedItems.
type ItemDiff[T any] struct {
	Kind     DiffKind
	Item     T
	Original T
}

// TrackableList overlays original-snapshot accounting on List (spec
// §4.8). Every structural mutation, outside begin_init/end_init, first
// ensures the original has been captured, then recomputes is_changed.
type TrackableList[T any] struct {
	list        *List[T]
	original    []T
	hasOriginal bool
	isChanged   bool
	initCount   int
	equalValue  func(a, b T) bool
}

// NewTrackableList creates a trackable list, optionally seeded with
// initial items as its starting (unchanged) baseline.
func NewTrackableList[T any](initial []T, opts ...Option[T]) *TrackableList[T] {
	tl := &TrackableList[T]{list: New[T](initial, opts...), equalValue: func(a, b T) bool { return reflect.DeepEqual(a, b) }}
	if stream, err := tl.list.ItemsChanges(); err == nil {
		stream.SubscribeFunc(func(ic ItemChange[T]) {
			if ic.Property == "IsChanged" {
				tl.recompute()
			}
		})
	}
	return tl
}

// List returns the underlying observable list.
func (tl *TrackableList[T]) List() *List[T] { return tl.list }

// IsChanged reports whether the collection differs from its captured
// original.
func (tl *TrackableList[T]) IsChanged() bool { return tl.isChanged }

// IsInitializing reports whether begin_init is active.
func (tl *TrackableList[T]) IsInitializing() bool { return tl.initCount > 0 }

// BeginInit enters initialization mode, reentrantly.
func (tl *TrackableList[T]) BeginInit() { tl.initCount++ }

// EndInit leaves one level of initialization mode.
func (tl *TrackableList[T]) EndInit() error {
	if tl.initCount == 0 {
		return rmerrors.ErrInvalidOperation
	}
	tl.initCount--
	return nil
}

func (tl *TrackableList[T]) ensureOriginalCaptured() {
	if !tl.hasOriginal {
		tl.original = append([]T(nil), tl.list.Items()...)
		tl.hasOriginal = true
	}
}

// Add appends item.
func (tl *TrackableList[T]) Add(item T) {
	if tl.IsInitializing() {
		tl.list.Add(item)
		if tl.hasOriginal {
			tl.original = append(tl.original, item)
		}
		return
	}
	tl.ensureOriginalCaptured()
	tl.list.Add(item)
	tl.recompute()
}

// RemoveAt removes the item at index i.
func (tl *TrackableList[T]) RemoveAt(i int) error {
	if tl.IsInitializing() {
		if err := tl.list.RemoveAt(i); err != nil {
			return err
		}
		if tl.hasOriginal && i < len(tl.original) {
			tl.original = append(tl.original[:i], tl.original[i+1:]...)
		}
		return nil
	}
	tl.ensureOriginalCaptured()
	if err := tl.list.RemoveAt(i); err != nil {
		return err
	}
	tl.recompute()
	return nil
}

// Remove removes the first occurrence of item.
func (tl *TrackableList[T]) Remove(item T) bool {
	idx := tl.list.IndexOf(item)
	if idx < 0 {
		return false
	}
	_ = tl.RemoveAt(idx)
	return true
}

// Move relocates the item at oldIndex to newIndex.
func (tl *TrackableList[T]) Move(oldIndex, newIndex int) error {
	if tl.IsInitializing() {
		return tl.list.Move(oldIndex, newIndex)
	}
	tl.ensureOriginalCaptured()
	if err := tl.list.Move(oldIndex, newIndex); err != nil {
		return err
	}
	tl.recompute()
	return nil
}

// Clear removes every item.
func (tl *TrackableList[T]) Clear() {
	if tl.IsInitializing() {
		tl.list.Clear()
		if tl.hasOriginal {
			tl.original = nil
		}
		return
	}
	tl.ensureOriginalCaptured()
	tl.list.Clear()
	tl.recompute()
}

// Reset replaces the contents wholesale. When initialize is true, the
// collection enters init, discards any captured original, resets, then
// leaves init: the result is an unchanged collection with items as the
// new baseline. When false, it is a plain tracked mutation.
func (tl *TrackableList[T]) Reset(items []T, initialize bool) {
	if initialize {
		tl.initCount++
		tl.hasOriginal = false
		tl.list.Reset(items)
		tl.initCount--
		tl.recompute()
		return
	}
	tl.ensureOriginalCaptured()
	tl.list.Reset(items)
	tl.recompute()
}

// AcceptChanges discards the captured original, recursively accepting
// every trackable item, then recaptures the (now unchanged) baseline.
// Fails with InvalidOperation while initializing.
func (tl *TrackableList[T]) AcceptChanges() error {
	if tl.IsInitializing() {
		return rmerrors.ErrInvalidOperation
	}
	for _, it := range tl.list.Items() {
		if tr, ok := asTrackable(it); ok {
			_ = tr.AcceptChanges()
		}
	}
	tl.hasOriginal = false
	tl.ensureOriginalCaptured()
	tl.recompute()
	return nil
}

// RejectChanges rejects every trackable item (against the captured
// original if present, else against self), restores the list to the
// captured original if one was taken, and clears is_changed. Fails with
// InvalidOperation while initializing.
func (tl *TrackableList[T]) RejectChanges() error {
	if tl.IsInitializing() {
		return rmerrors.ErrInvalidOperation
	}
	if tl.hasOriginal {
		for _, it := range tl.original {
			if tr, ok := asTrackable(it); ok {
				_ = tr.RejectChanges()
			}
		}
		tl.list.Reset(tl.original)
	} else {
		for _, it := range tl.list.Items() {
			if tr, ok := asTrackable(it); ok {
				_ = tr.RejectChanges()
			}
		}
	}
	tl.hasOriginal = false
	tl.setChanged(false)
	return nil
}

// OriginalEquals reports whether the current items (same length,
// element-wise compared) match other taken as the baseline: a
// trackable-kinded element compares its current value against other's
// own original (via MatchesOriginal, so a baseline item that had
// already drifted from its own original before capture still compares
// correctly), otherwise by value equality.
func (tl *TrackableList[T]) OriginalEquals(other []T) bool {
	cur := tl.list.Items()
	if len(cur) != len(other) {
		return false
	}
	for i := range cur {
		if trB, ok := asTrackable(other[i]); ok {
			trA, ok := asTrackable(cur[i])
			if !ok || !trB.MatchesOriginal(trA) {
				return false
			}
			continue
		}
		if !tl.equalValue(cur[i], other[i]) {
			return false
		}
	}
	return true
}

// anyItemChanged reports whether any live trackable item currently
// reports IsChanged — the only signal available before a baseline has
// ever been captured.
func (tl *TrackableList[T]) anyItemChanged() bool {
	for _, it := range tl.list.Items() {
		if tr, ok := asTrackable(it); ok && tr.IsChanged() {
			return true
		}
	}
	return false
}

func (tl *TrackableList[T]) recompute() {
	if !tl.hasOriginal {
		tl.setChanged(tl.anyItemChanged())
		return
	}
	tl.setChanged(!tl.OriginalEquals(tl.original))
}

func (tl *TrackableList[T]) setChanged(v bool) {
	if v == tl.isChanged {
		return
	}
	tl.isChanged = v
	tl.list.Notifier().RaisePropertyChanged(tl, "IsChanged")
}

// GetChangedItems diffs the current items against the captured
// original (spec §4.8 "List variant").
func (tl *TrackableList[T]) GetChangedItems() []ItemDiff[T] {
	cur := tl.list.Items()

	if !tl.hasOriginal {
		var out []ItemDiff[T]
		for _, it := range cur {
			if tr, ok := asTrackable(it); ok && tr.IsChanged() {
				out = append(out, ItemDiff[T]{Kind: DiffChange, Item: it, Original: it})
			}
		}
		return out
	}

	matched := make([]bool, len(tl.original))
	var out []ItemDiff[T]

	for i, it := range cur {
		if i < len(tl.original) && tl.identical(it, tl.original[i]) {
			matched[i] = true
			if tr, ok := asTrackable(it); ok && tr.IsChanged() {
				out = append(out, ItemDiff[T]{Kind: DiffChange, Item: it, Original: tl.original[i]})
			}
			continue
		}

		found := -1
		for j, o := range tl.original {
			if !matched[j] && tl.identical(it, o) {
				found = j
				break
			}
		}
		if found >= 0 {
			matched[found] = true
			out = append(out, ItemDiff[T]{Kind: DiffChange, Item: it, Original: tl.original[found]})
			continue
		}

		out = append(out, ItemDiff[T]{Kind: DiffAdd, Item: it})
	}

	for j, o := range tl.original {
		if !matched[j] {
			out = append(out, ItemDiff[T]{Kind: DiffRemove, Original: o})
		}
	}

	return out
}

// asTrackable type-asserts v to trackable.Trackable, treating a typed
// nil pointer as "not trackable" rather than a trackable nil.
func asTrackable[T any](v T) (trackable.Trackable, bool) {
	tr, ok := any(v).(trackable.Trackable)
	if !ok {
		return nil, false
	}
	rv := reflect.ValueOf(tr)
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil, false
	}
	return tr, true
}

// identical reports whether a and b are the same entity: reference
// identity for trackable items (a distinct trackable object is never
// "the same item" regardless of content), structural equality via
// equalValue otherwise (spec §4.8 "Items that match by identity, or by
// structural equality, for non-trackable items").
func (tl *TrackableList[T]) identical(a, b T) bool {
	trA, okA := asTrackable(a)
	trB, okB := asTrackable(b)
	if okA || okB {
		return okA && okB && trA == trB
	}
	return tl.equalValue(a, b)
}
