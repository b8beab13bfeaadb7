package collection

import (
	"reflect"
	"sort"

	"github.com/dshills/reactivemodel/notify"
	"github.com/dshills/reactivemodel/rmerrors"
	"github.com/dshills/reactivemodel/stream"
)

// Action tags a structural collection change, mirroring the source's
// standard action kinds (spec §4.6).
type Action int

const (
	ActionAdd Action = iota
	ActionRemove
	ActionReplace
	ActionMove
	ActionReset
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "Add"
	case ActionRemove:
		return "Remove"
	case ActionReplace:
		return "Replace"
	case ActionMove:
		return "Move"
	case ActionReset:
		return "Reset"
	default:
		return "Unknown"
	}
}

// Change describes one collection_changed event.
type Change[T any] struct {
	Action   Action
	NewIndex int
	OldIndex int
	NewItem  T
	OldItem  T
}

// ItemChange is delivered on ItemsChanges: a contained item raised a
// property change.
type ItemChange[T any] struct {
	Item     T
	Property string
}

// Notifiable is implemented by items whose property writes announce
// themselves; List watches such items when not suppressed.
type Notifiable interface {
	Notifier() *notify.Notifier
}

// BindTarget is an external mutable collection a List can mirror
// itself onto (spec §4.6 bind).
type BindTarget[T any] interface {
	Add(item T)
	Remove(item T)
	Clear()
}

// Option configures a List at construction.
type Option[T any] func(*List[T])

// WithEqual overrides the default structural-equality comparison
// (reflect.DeepEqual) used by Contains/IndexOf/Remove.
func WithEqual[T any](equal func(a, b T) bool) Option[T] {
	return func(l *List[T]) { l.equal = equal }
}

// SuppressItemTracking opts out of attaching to contained items' own
// property changes even when T is Notifiable.
func SuppressItemTracking[T any]() Option[T] {
	return func(l *List[T]) { l.suppressTracking = true }
}

// List is an ordered, observable container (spec §4.6).
type List[T any] struct {
	notifier notify.Notifier
	items    []T
	itemSubs []notify.Subscription

	equal            func(a, b T) bool
	suppressTracking bool

	persisted bool
	cmp       func(a, b T) int

	changeStream *stream.Subject[Change[T]]
	itemsStream  *stream.Subject[ItemChange[T]]
}

// New creates an empty List, or one seeded from initial.
func New[T any](initial []T, opts ...Option[T]) *List[T] {
	l := &List[T]{equal: func(a, b T) bool { return reflect.DeepEqual(a, b) }, changeStream: stream.NewSubject[Change[T]]()}
	for _, opt := range opts {
		opt(l)
	}
	if len(initial) > 0 {
		l.items = append([]T(nil), initial...)
		l.itemSubs = make([]notify.Subscription, len(l.items))
		for i, it := range l.items {
			l.itemSubs[i] = l.watch(it)
		}
	}
	return l
}

// Notifier exposes the underlying notifier so a List can itself be
// observed (count/first/last/is_empty as ordinary properties).
func (l *List[T]) Notifier() *notify.Notifier { return &l.notifier }

// Changes returns the hot stream of structural changes.
func (l *List[T]) Changes() *stream.Subject[Change[T]] { return l.changeStream }

// Count returns the number of items.
func (l *List[T]) Count() int { return len(l.items) }

// IsEmpty reports whether the list has no items.
func (l *List[T]) IsEmpty() bool { return len(l.items) == 0 }

// First returns the first item, or ok=false if empty.
func (l *List[T]) First() (item T, ok bool) {
	if len(l.items) == 0 {
		return item, false
	}
	return l.items[0], true
}

// Last returns the last item, or ok=false if empty.
func (l *List[T]) Last() (item T, ok bool) {
	if len(l.items) == 0 {
		return item, false
	}
	return l.items[len(l.items)-1], true
}

// At returns the item at index i.
func (l *List[T]) At(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(l.items) {
		return zero, rmerrors.NewIndexError(i, len(l.items))
	}
	return l.items[i], nil
}

// Items returns a snapshot copy of the current items.
func (l *List[T]) Items() []T {
	return append([]T(nil), l.items...)
}

// Contains reports whether item is present, per the configured
// equality.
func (l *List[T]) Contains(item T) bool {
	return l.IndexOf(item) >= 0
}

// IndexOf returns the index of the first occurrence of item, or -1.
func (l *List[T]) IndexOf(item T) int {
	for i, it := range l.items {
		if l.equal(it, item) {
			return i
		}
	}
	return -1
}

// Add appends item, or — when a persisted sort is active — inserts it
// at its sorted position, after any existing equal elements (spec
// §4.6 "Persisted sort").
func (l *List[T]) Add(item T) {
	if l.persisted {
		idx := l.sortedInsertIndex(item, -1)
		l.insertAt(idx, item)
		return
	}
	l.insertAt(len(l.items), item)
}

// AddRange adds each item in order; under a persisted sort each is
// placed individually, so the result is sorted throughout.
func (l *List[T]) AddRange(items []T) {
	for _, it := range items {
		l.Add(it)
	}
}

// Insert places item at index i, raising an Add change. Ignores any
// persisted sort (an explicit position request).
func (l *List[T]) Insert(i int, item T) error {
	if i < 0 || i > len(l.items) {
		return rmerrors.NewIndexError(i, len(l.items))
	}
	l.insertAt(i, item)
	return nil
}

func (l *List[T]) insertAt(i int, item T) {
	l.items = append(l.items, item)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = item

	sub := l.watch(item)
	l.itemSubs = append(l.itemSubs, nil)
	copy(l.itemSubs[i+1:], l.itemSubs[i:])
	l.itemSubs[i] = sub

	l.raiseStructural()
	l.raise(Change[T]{Action: ActionAdd, NewIndex: i, NewItem: item})
}

// Remove removes the first occurrence of item, reporting whether
// anything was removed.
func (l *List[T]) Remove(item T) bool {
	idx := l.IndexOf(item)
	if idx < 0 {
		return false
	}
	_ = l.RemoveAt(idx)
	return true
}

// RemoveAt removes the item at index i.
func (l *List[T]) RemoveAt(i int) error {
	if i < 0 || i >= len(l.items) {
		return rmerrors.NewIndexError(i, len(l.items))
	}
	item := l.items[i]
	if l.itemSubs[i] != nil {
		l.itemSubs[i].Unsubscribe()
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.itemSubs = append(l.itemSubs[:i], l.itemSubs[i+1:]...)

	l.raiseStructural()
	l.raise(Change[T]{Action: ActionRemove, OldIndex: i, OldItem: item})
	return nil
}

// RemoveAll removes every item matching pred, iterating high-to-low and
// calling RemoveAt per match, so exactly one Remove event is raised per
// removed element — never a single Reset (design decision, spec §9
// open question 3). Returns the number of items removed.
func (l *List[T]) RemoveAll(pred func(T) bool) int {
	n := 0
	for i := len(l.items) - 1; i >= 0; i-- {
		if pred(l.items[i]) {
			_ = l.RemoveAt(i)
			n++
		}
	}
	return n
}

// Move relocates the item at oldIndex to newIndex.
func (l *List[T]) Move(oldIndex, newIndex int) error {
	if oldIndex < 0 || oldIndex >= len(l.items) {
		return rmerrors.NewIndexError(oldIndex, len(l.items))
	}
	if newIndex < 0 || newIndex >= len(l.items) {
		return rmerrors.NewIndexError(newIndex, len(l.items))
	}
	if oldIndex == newIndex {
		return nil
	}
	item := l.items[oldIndex]
	sub := l.itemSubs[oldIndex]

	l.items = append(l.items[:oldIndex], l.items[oldIndex+1:]...)
	l.itemSubs = append(l.itemSubs[:oldIndex], l.itemSubs[oldIndex+1:]...)

	l.items = append(l.items, item)
	copy(l.items[newIndex+1:], l.items[newIndex:])
	l.items[newIndex] = item

	l.itemSubs = append(l.itemSubs, nil)
	copy(l.itemSubs[newIndex+1:], l.itemSubs[newIndex:])
	l.itemSubs[newIndex] = sub

	l.raise(Change[T]{Action: ActionMove, OldIndex: oldIndex, NewIndex: newIndex, NewItem: item})
	return nil
}

// replaceAt swaps the item at index i in place, raising a single
// Replace change rather than a Remove+Add pair.
func (l *List[T]) replaceAt(i int, value T) {
	old := l.items[i]
	if l.itemSubs[i] != nil {
		l.itemSubs[i].Unsubscribe()
	}
	l.items[i] = value
	l.itemSubs[i] = l.watch(value)
	l.raise(Change[T]{Action: ActionReplace, NewIndex: i, OldIndex: i, NewItem: value, OldItem: old})
}

// Clear removes every item, raising a single Reset.
func (l *List[T]) Clear() {
	l.Reset(nil)
}

// Reset replaces the contents wholesale, raising a single Reset.
func (l *List[T]) Reset(items []T) {
	for _, sub := range l.itemSubs {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
	l.items = append([]T(nil), items...)
	l.itemSubs = make([]notify.Subscription, len(l.items))
	for i, it := range l.items {
		l.itemSubs[i] = l.watch(it)
	}
	l.raiseStructural()
	l.raise(Change[T]{Action: ActionReset})
}

// Sort reorders items by cmp, stably. When persist is true, the
// comparator is retained and future Add calls insert in sorted
// position (spec §4.6 "Persisted sort"). Go's sort.SliceStable already
// implements the index-array/tie-break-on-original-index technique the
// source describes for languages without a built-in stable sort.
func (l *List[T]) Sort(cmp func(a, b T) int, persist bool) {
	idx := make([]int, len(l.items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return cmp(l.items[idx[i]], l.items[idx[j]]) < 0
	})

	newItems := make([]T, len(l.items))
	newSubs := make([]notify.Subscription, len(l.items))
	for i, oi := range idx {
		newItems[i] = l.items[oi]
		newSubs[i] = l.itemSubs[oi]
	}
	l.items = newItems
	l.itemSubs = newSubs

	if persist {
		l.persisted = true
		l.cmp = cmp
	}
	l.raise(Change[T]{Action: ActionReset})
}

// SortByKey sorts by comparing key(item) with natural ordering of
// comparable keys.
func SortByKey[T any, K interface{ ~string | ~int | ~int64 | ~float64 }](l *List[T], key func(T) K, persist bool) {
	l.Sort(func(a, b T) int {
		ka, kb := key(a), key(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	}, persist)
}

// UpdateSortPosition recomputes item's position under the active
// persisted sort and issues a Move if it changed.
func (l *List[T]) UpdateSortPosition(item T) error {
	if !l.persisted {
		return rmerrors.ErrInvalidOperation
	}
	idx := l.IndexOf(item)
	if idx < 0 {
		return rmerrors.NewKeyError(item, rmerrors.ErrKeyNotFound)
	}
	target := l.sortedInsertIndex(item, idx)
	if target > idx {
		target--
	}
	if target == idx {
		return nil
	}
	return l.Move(idx, target)
}

// sortedInsertIndex returns the position at which item should be
// inserted to keep the persisted order, appending after any existing
// equal elements. excludeIdx, if >= 0, is ignored while searching (used
// by UpdateSortPosition to reposition an item already present).
func (l *List[T]) sortedInsertIndex(item T, excludeIdx int) int {
	n := len(l.items)
	return sort.Search(n, func(i int) bool {
		if i == excludeIdx {
			// Treat the excluded slot as absent: it answers for its right
			// neighbour, which keeps the predicate monotonic.
			if i+1 == n {
				return true
			}
			i++
		}
		return l.cmp(l.items[i], item) > 0
	})
}

// Bind mirrors this list onto target: existing items are added
// immediately, and every subsequent structural change is translated
// into Add/Remove/Clear calls. On Reset, target is cleared, restored to
// the snapshot of items present at bind time, then the current items
// are appended (spec §4.6).
func (l *List[T]) Bind(target BindTarget[T]) stream.Subscription {
	for _, it := range l.items {
		target.Add(it)
	}
	snapshotAtBind := append([]T(nil), l.items...)

	return l.changeStream.SubscribeFunc(func(c Change[T]) {
		switch c.Action {
		case ActionAdd:
			target.Add(c.NewItem)
		case ActionRemove:
			target.Remove(c.OldItem)
		case ActionReplace:
			target.Remove(c.OldItem)
			target.Add(c.NewItem)
		case ActionMove:
			// Position only; target has no move primitive.
		case ActionReset:
			target.Clear()
			for _, it := range snapshotAtBind {
				target.Add(it)
			}
			for _, it := range l.items {
				target.Add(it)
			}
		}
	})
}

// ItemsChanges returns the lazily allocated stream of per-item property
// changes. Fails with NotSupported if T does not implement Notifiable.
func (l *List[T]) ItemsChanges() (*stream.Subject[ItemChange[T]], error) {
	if l.itemsStream == nil {
		var zero T
		t := reflect.TypeOf(&zero).Elem()
		ntf := reflect.TypeOf((*Notifiable)(nil)).Elem()
		if !t.Implements(ntf) {
			return nil, rmerrors.ErrNotSupported
		}
		l.itemsStream = stream.NewSubject[ItemChange[T]]()
	}
	return l.itemsStream, nil
}

// watch subscribes to item's property changes, feeding ItemsChanges,
// if item is Notifiable and tracking is not suppressed.
func (l *List[T]) watch(item T) notify.Subscription {
	if l.suppressTracking {
		return nil
	}
	ntf, ok := any(item).(Notifiable)
	if !ok {
		return nil
	}
	return ntf.Notifier().Subscribe(func(_ any, property string) {
		if l.itemsStream != nil {
			l.itemsStream.Next(ItemChange[T]{Item: item, Property: property})
		}
	})
}

func (l *List[T]) raise(c Change[T]) {
	l.changeStream.Next(c)
}

// raiseStructural raises property_changed for count/first/last/is_empty
// — the ordinary properties affected by every size-changing mutation.
func (l *List[T]) raiseStructural() {
	l.notifier.RaisePropertyChanged(l, "Count")
	l.notifier.RaisePropertyChanged(l, "First")
	l.notifier.RaisePropertyChanged(l, "Last")
	l.notifier.RaisePropertyChanged(l, "IsEmpty")
}
