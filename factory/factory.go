package factory

import (
	"errors"
	"reflect"
	"sync"

	"github.com/dshills/reactivemodel/rmerrors"
	"github.com/dshills/reactivemodel/trackable"
)

// Option customizes an already-constructed instance — typically a
// handful of property Set calls. An option returning a
// NonVirtualProperty or NoSetter error marks T's construction itself as
// permanently failing (spec §7); any other error is just that call's
// own failure and is not cached.
type Option[T any] func(*T) error

type cacheEntry struct {
	err error
}

var (
	mu    sync.Mutex
	cache = make(map[reflect.Type]*cacheEntry)
)

func cachedFailure(t reflect.Type) (error, bool) {
	mu.Lock()
	defer mu.Unlock()
	entry, ok := cache[t]
	if !ok || entry.err == nil {
		return nil, false
	}
	return entry.err, true
}

func rememberOutcome(t reflect.Type, err error) {
	mu.Lock()
	defer mu.Unlock()
	cache[t] = &cacheEntry{err: err}
}

func isConstructionFailure(err error) bool {
	return errors.Is(err, rmerrors.ErrNonVirtualProperty) || errors.Is(err, rmerrors.ErrNoSetter)
}

func build[T any](newFn func() *T, opts []Option[T]) (*T, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()

	if cached, ok := cachedFailure(t); ok {
		return nil, cached
	}

	inst := newFn()
	for _, opt := range opts {
		if err := opt(inst); err != nil {
			if isConstructionFailure(err) {
				rememberOutcome(t, err)
			}
			return nil, err
		}
	}

	rememberOutcome(t, nil)
	return inst, nil
}

// CreateObservable produces an observable instance via newFn, applying
// opts in order. newFn is the caller-supplied zero-argument
// constructor for T (there is no runtime subtype synthesis to drive —
// see the package doc).
func CreateObservable[T any](newFn func() *T, opts ...Option[T]) (*T, error) {
	return build(newFn, opts)
}

// CreateObservableWithArgs is CreateObservable, passing args through to
// newFn. A caller with more than one logical argument should bundle
// them into a struct A — the "single structural tuple" form spec §6
// requires variadic constructor args to also accept.
func CreateObservableWithArgs[T, A any](newFn func(A) *T, args A, opts ...Option[T]) (*T, error) {
	return build(func() *T { return newFn(args) }, opts)
}

// CreateTrackable produces a tracked instance via newFn: *T must
// implement trackable.Trackable, so is_tracked(x) — spec §6 — is
// statically true for every T usable here, there being no separate
// untracked sibling type for this function to ever hand back.
func CreateTrackable[T any](newFn func() *T, opts ...Option[T]) (*T, error) {
	inst, err := build(newFn, opts)
	if err != nil {
		return nil, err
	}
	if _, ok := any(inst).(trackable.Trackable); !ok {
		return nil, errors.New("reactivemodel: factory: T does not implement trackable.Trackable")
	}
	return inst, nil
}

// CreateTrackableWithArgs is CreateTrackable, passing args through to
// newFn.
func CreateTrackableWithArgs[T, A any](newFn func(A) *T, args A, opts ...Option[T]) (*T, error) {
	inst, err := build(func() *T { return newFn(args) }, opts)
	if err != nil {
		return nil, err
	}
	if _, ok := any(inst).(trackable.Trackable); !ok {
		return nil, errors.New("reactivemodel: factory: T does not implement trackable.Trackable")
	}
	return inst, nil
}

// IsTracked reports whether v was produced (directly or indirectly) by
// CreateTrackable — equivalently, whether it satisfies
// trackable.Trackable at all, since in this module a type either always
// embeds TrackableBase or never does.
func IsTracked(v any) bool {
	_, ok := v.(trackable.Trackable)
	return ok
}
