package collection

import (
	"reflect"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"weak"

	"github.com/dshills/reactivemodel/notify"
	"github.com/dshills/reactivemodel/stream"
	"github.com/tidwall/match"
)

// ReadOnlyList exposes a List's read-only surface. Every derived view in
// this file (§4.9) owns a backing List as its sole mutator and returns
// one of these to callers, so a consumer cannot structurally mutate a
// view directly.
type ReadOnlyList[T any] struct {
	l *List[T]
}

func (r *ReadOnlyList[T]) Notifier() *notify.Notifier { return r.l.Notifier() }
func (r *ReadOnlyList[T]) Changes() *stream.Subject[Change[T]] { return r.l.Changes() }
func (r *ReadOnlyList[T]) Count() int { return r.l.Count() }
func (r *ReadOnlyList[T]) IsEmpty() bool { return r.l.IsEmpty() }
func (r *ReadOnlyList[T]) First() (T, bool) { return r.l.First() }
func (r *ReadOnlyList[T]) Last() (T, bool) { return r.l.Last() }
func (r *ReadOnlyList[T]) At(i int) (T, error) { return r.l.At(i) }
func (r *ReadOnlyList[T]) Items() []T { return r.l.Items() }
func (r *ReadOnlyList[T]) Contains(item T) bool { return r.l.Contains(item) }
func (r *ReadOnlyList[T]) IndexOf(item T) int { return r.l.IndexOf(item) }
func (r *ReadOnlyList[T]) ItemsChanges() (*stream.Subject[ItemChange[T]], error) {
	return r.l.ItemsChanges()
}

// Map yields a read-only observable list whose items are selector(item)
// in source order (spec §4.9 "Map view"). The view subscribes weakly to
// source: once source is unreachable from anywhere else, the view's
// subscription self-removes on the next event rather than keeping
// source alive.
func Map[S, T any](source *List[S], selector func(S) T) *ReadOnlyList[T] {
	derived := New[T](mapSlice(source.Items(), selector))
	wp := weak.Make(source)

	var sub stream.Subscription
	sub = source.Changes().SubscribeFunc(func(c Change[S]) {
		s := wp.Value()
		if s == nil {
			sub.Unsubscribe()
			return
		}
		applyMapChange(s, derived, selector, c)
	})
	runtime.AddCleanup(source, func(s stream.Subscription) { s.Unsubscribe() }, sub)

	return &ReadOnlyList[T]{l: derived}
}

func mapSlice[S, T any](items []S, selector func(S) T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = selector(it)
	}
	return out
}

func applyMapChange[S, T any](source *List[S], derived *List[T], selector func(S) T, c Change[S]) {
	switch c.Action {
	case ActionAdd:
		_ = derived.Insert(c.NewIndex, selector(c.NewItem))
	case ActionRemove:
		_ = derived.RemoveAt(c.OldIndex)
	case ActionReplace:
		derived.replaceAt(c.NewIndex, selector(c.NewItem))
	case ActionMove:
		_ = derived.Move(c.OldIndex, c.NewIndex)
	case ActionReset:
		derived.Reset(mapSlice(source.Items(), selector))
	}
}

// CombineOption configures a Combine view.
type CombineOption[T any] func(*combineState[T])

// WithCombineFilter restricts which items from either side are mirrored
// into the combined view: keyOf extracts a string key per item, and
// only items whose key matches pattern (glob syntax, per
// github.com/tidwall/match) are included.
func WithCombineFilter[T any](keyOf func(T) string, pattern string) CombineOption[T] {
	return func(s *combineState[T]) {
		s.keyOf = keyOf
		s.pattern = pattern
	}
}

type combineState[T any] struct {
	derived  *List[T]
	boundary int
	keyOf    func(T) string
	pattern  string
}

func (s *combineState[T]) included(item T) bool {
	if s.keyOf == nil || s.pattern == "" {
		return true
	}
	return match.Match(s.keyOf(item), s.pattern)
}

func (s *combineState[T]) filtered(items []T) []T {
	if s.keyOf == nil || s.pattern == "" {
		return append([]T(nil), items...)
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if s.included(it) {
			out = append(out, it)
		}
	}
	return out
}

// Combine presents a followed by b as a single read-only observable
// list, maintaining a boundary index between the two sides (spec §4.9
// "Combine view"). A Reset on either side re-emits a local reset that
// preserves the other side's current contents.
func Combine[T any](a, b *List[T], opts ...CombineOption[T]) *ReadOnlyList[T] {
	st := &combineState[T]{}
	for _, opt := range opts {
		opt(st)
	}

	aItems := st.filtered(a.Items())
	bItems := st.filtered(b.Items())
	st.derived = New[T](append(append([]T(nil), aItems...), bItems...))
	st.boundary = len(aItems)

	wpA, wpB := weak.Make(a), weak.Make(b)

	var subA, subB stream.Subscription
	subA = a.Changes().SubscribeFunc(func(c Change[T]) {
		sa := wpA.Value()
		if sa == nil {
			subA.Unsubscribe()
			return
		}
		applyCombineSideA(st, sa, c)
	})
	subB = b.Changes().SubscribeFunc(func(c Change[T]) {
		sb := wpB.Value()
		if sb == nil {
			subB.Unsubscribe()
			return
		}
		applyCombineSideB(st, sb, c)
	})

	runtime.AddCleanup(a, func(s stream.Subscription) { s.Unsubscribe() }, subA)
	runtime.AddCleanup(b, func(s stream.Subscription) { s.Unsubscribe() }, subB)

	return &ReadOnlyList[T]{l: st.derived}
}

// filterActive reports whether a key filter is configured. When it is,
// per-index translation between a source side and the combined list no
// longer holds (a filtered-out source item has no counterpart in
// derived), so every event on that side is handled by a full rebuild of
// just that side rather than an index-precise Insert/Remove/Move.
func (s *combineState[T]) filterActive() bool {
	return s.keyOf != nil && s.pattern != ""
}

func applyCombineSideA[T any](st *combineState[T], a *List[T], c Change[T]) {
	if st.filterActive() {
		bSide := st.derived.Items()[st.boundary:]
		newA := st.filtered(a.Items())
		st.derived.Reset(append(append([]T(nil), newA...), bSide...))
		st.boundary = len(newA)
		return
	}

	switch c.Action {
	case ActionAdd:
		_ = st.derived.Insert(c.NewIndex, c.NewItem)
		st.boundary++
	case ActionRemove:
		_ = st.derived.RemoveAt(c.OldIndex)
		st.boundary--
	case ActionReplace:
		st.derived.replaceAt(c.NewIndex, c.NewItem)
	case ActionMove:
		_ = st.derived.Move(c.OldIndex, c.NewIndex)
	case ActionReset:
		bSide := st.derived.Items()[st.boundary:]
		st.derived.Reset(append(append([]T(nil), a.Items()...), bSide...))
		st.boundary = a.Count()
	}
}

func applyCombineSideB[T any](st *combineState[T], b *List[T], c Change[T]) {
	if st.filterActive() {
		aSide := st.derived.Items()[:st.boundary]
		newB := st.filtered(b.Items())
		st.derived.Reset(append(append([]T(nil), aSide...), newB...))
		return
	}

	off := st.boundary
	switch c.Action {
	case ActionAdd:
		_ = st.derived.Insert(off+c.NewIndex, c.NewItem)
	case ActionRemove:
		_ = st.derived.RemoveAt(off + c.OldIndex)
	case ActionReplace:
		st.derived.replaceAt(off+c.NewIndex, c.NewItem)
	case ActionMove:
		_ = st.derived.Move(off+c.OldIndex, off+c.NewIndex)
	case ActionReset:
		aSide := st.derived.Items()[:st.boundary]
		st.derived.Reset(append(append([]T(nil), aSide...), b.Items()...))
	}
}

// Initializing is implemented by a trackable collection to report
// whether begin_init is currently active. NewNewItemsView checks its
// source for it (spec §9 OQ2); that source is a *List, which does not
// implement it, so the check never succeeds.
type Initializing interface {
	IsInitializing() bool
}

// NewItemsView yields, for each add/replace/reset on source, the subset
// of items newly present — not present immediately before the change
// (spec §4.9 "New items view"). Remove and Move introduce no new items,
// so the view goes empty on those. An optional key pattern restricts
// which items are eligible to ever be considered "new".
type NewItemsView[T any] struct {
	derived        *List[T]
	equal          func(a, b T) bool
	seen           []T
	isInitializing func() bool
}

// NewNewItemsView constructs the view. equal defaults to structural
// equality if nil. The view always reports IsInitializing as true:
// *List does not implement Initializing, so per §9 OQ2's default the
// begin_init state of a TrackableList or TrackableKeyedList whose List()
// is passed in is not consulted.
func NewNewItemsView[T any](source *List[T], equal func(a, b T) bool, opts ...CombineOption[T]) *NewItemsView[T] {
	if equal == nil {
		equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
	st := &combineState[T]{}
	for _, opt := range opts {
		opt(st)
	}

	niv := &NewItemsView[T]{
		derived: New[T](nil),
		equal:   equal,
		seen:    st.filtered(source.Items()),
	}
	if init, ok := any(source).(Initializing); ok {
		niv.isInitializing = init.IsInitializing
	}

	wp := weak.Make(source)
	var sub stream.Subscription
	sub = source.Changes().SubscribeFunc(func(c Change[T]) {
		s := wp.Value()
		if s == nil {
			sub.Unsubscribe()
			return
		}
		niv.apply(st, s, c)
	})
	runtime.AddCleanup(source, func(s stream.Subscription) { s.Unsubscribe() }, sub)

	return niv
}

func (v *NewItemsView[T]) apply(st *combineState[T], source *List[T], c Change[T]) {
	var fresh []T
	switch c.Action {
	case ActionAdd:
		if st.included(c.NewItem) && !v.containsSeen(c.NewItem) {
			fresh = append(fresh, c.NewItem)
		}
	case ActionReplace:
		if st.included(c.NewItem) && !v.containsSeen(c.NewItem) {
			fresh = append(fresh, c.NewItem)
		}
	case ActionReset:
		for _, it := range st.filtered(source.Items()) {
			if !v.containsSeen(it) {
				fresh = append(fresh, it)
			}
		}
	case ActionRemove, ActionMove:
		// No new items are introduced by these actions.
	}
	// seen always mirrors the source as it stands after this change, so
	// an item removed or replaced earlier counts as new if it returns.
	v.seen = st.filtered(source.Items())
	v.derived.Reset(fresh)
}

func (v *NewItemsView[T]) containsSeen(item T) bool {
	for _, it := range v.seen {
		if v.equal(it, item) {
			return true
		}
	}
	return false
}

// List returns the read-only view of currently-new items.
func (v *NewItemsView[T]) List() *ReadOnlyList[T] { return &ReadOnlyList[T]{l: v.derived} }

// IsInitializing reports true. A source that does not expose its
// begin_init state is treated as initializing (§9 OQ2), and the *List
// source never exposes it, so a trackable collection's own initializing
// state is not reflected here.
func (v *NewItemsView[T]) IsInitializing() bool {
	if v.isInitializing == nil {
		return true
	}
	return v.isInitializing()
}

// AggregateOption configures an Aggregate at construction.
type AggregateOption[R any] func(*aggregateConfig[R])

type aggregateConfig[R any] struct {
	equal    func(a, b R) bool
	exprText string
}

// WithAggregateEqual overrides the default structural-equality
// comparison used to decide whether a recomputed value differs from the
// last pushed one.
func WithAggregateEqual[R any](equal func(a, b R) bool) AggregateOption[R] {
	return func(c *aggregateConfig[R]) { c.equal = equal }
}

// WithExpressionText supplies the source text of f, when available, so
// per-item notifications for properties it never references can be
// ignored cheaply (spec §4.9).
func WithExpressionText[R any](expr string) AggregateOption[R] {
	return func(c *aggregateConfig[R]) { c.exprText = expr }
}

// Aggregate is a lazily recomputed fold over a list's current items
// (spec §4.9 "Aggregate"). It exposes Value (recomputed on the next
// relevant notification), raises property_changed("Value") on every
// notification that might change the result, and pushes to its stream
// only when the computed value actually differs from the last one.
type Aggregate[T, R any] struct {
	mu       sync.Mutex
	notifier notify.Notifier
	list     *List[T]
	seed     R
	fold     func(acc R, item T) R
	equal    func(a, b R) bool
	relevant map[string]bool // nil means "no filter, everything relevant"

	dirty  bool
	cached R
	stream *stream.Subject[R]
}

var identRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// NewAggregate constructs an aggregate over list, folding from seed with
// fold in current item order.
func NewAggregate[T, R any](list *List[T], seed R, fold func(acc R, item T) R, opts ...AggregateOption[R]) *Aggregate[T, R] {
	cfg := aggregateConfig[R]{equal: func(a, b R) bool { return reflect.DeepEqual(a, b) }}
	for _, opt := range opts {
		opt(&cfg)
	}

	agg := &Aggregate[T, R]{
		list:   list,
		seed:   seed,
		fold:   fold,
		equal:  cfg.equal,
		dirty:  true,
		stream: stream.NewSubject[R](),
	}
	if cfg.exprText != "" {
		names := identRe.FindAllString(cfg.exprText, -1)
		agg.relevant = make(map[string]bool, len(names))
		for _, n := range names {
			agg.relevant[n] = true
		}
	}

	list.Changes().SubscribeFunc(func(Change[T]) {
		agg.onPossibleChange("")
	})
	if itemsChanges, err := list.ItemsChanges(); err == nil {
		itemsChanges.SubscribeFunc(func(ic ItemChange[T]) {
			agg.onPossibleChange(ic.Property)
		})
	}

	return agg
}

// Notifier exposes the aggregate's own property-changed notifications
// (currently only "Value").
func (agg *Aggregate[T, R]) Notifier() *notify.Notifier { return &agg.notifier }

// Changes is a hot stream of distinct recomputed values.
func (agg *Aggregate[T, R]) Changes() *stream.Subject[R] { return agg.stream }

// Value returns the current folded value. It is computed on the first
// read; after that every relevant notification recomputes it eagerly
// (see onPossibleChange), so Value returns the cached result.
func (agg *Aggregate[T, R]) Value() R {
	agg.mu.Lock()
	defer agg.mu.Unlock()
	if agg.dirty {
		agg.cached = agg.computeLocked()
		agg.dirty = false
	}
	return agg.cached
}

func (agg *Aggregate[T, R]) computeLocked() R {
	acc := agg.seed
	for _, it := range agg.list.Items() {
		acc = agg.fold(acc, it)
	}
	return acc
}

func (agg *Aggregate[T, R]) isRelevant(property string) bool {
	if property == "" || agg.relevant == nil {
		return true
	}
	return agg.relevant[strings.TrimSpace(property)]
}

func (agg *Aggregate[T, R]) onPossibleChange(property string) {
	if !agg.isRelevant(property) {
		return
	}

	agg.mu.Lock()
	old, hadValue := agg.cached, !agg.dirty
	newVal := agg.computeLocked()
	agg.cached = newVal
	agg.dirty = false
	agg.mu.Unlock()

	agg.notifier.RaisePropertyChanged(agg, "Value")

	if !hadValue || !agg.equal(old, newVal) {
		agg.stream.Next(newVal)
	}
}
