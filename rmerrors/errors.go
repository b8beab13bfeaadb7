// Package rmerrors defines the error taxonomy shared by every package in
// this module. Centralizing the sentinel kinds here (rather than one
// errors.go per package, as the teacher does for its per-subsystem
// errors) reflects that these specific kinds are cross-cutting: the same
// NotTracked failure, for instance, can originate from the trackable,
// collection, or factory package.
package rmerrors

import "errors"

// Sentinel error kinds, per spec §7.
var (
	// ErrNotTracked is returned when an operation requiring an
	// original-value shadow is called on an instance produced without
	// the tracking factory.
	ErrNotTracked = errors.New("reactivemodel: instance is not tracked")

	// ErrInvalidOperation covers begin_init while changed, end_init
	// without begin_init, accept/reject while initializing, and
	// defer_property_changes while already deferred.
	ErrInvalidOperation = errors.New("reactivemodel: invalid operation for current state")

	// ErrNonVirtualProperty is raised at construction when a declared
	// trackable property cannot be overridden because it is sealed.
	ErrNonVirtualProperty = errors.New("reactivemodel: property cannot be overridden")

	// ErrNoSetter is raised at construction when a declared trackable
	// property has no setter-shaped hook.
	ErrNoSetter = errors.New("reactivemodel: property has no setter")

	// ErrDuplicateKey is returned by Reset of a keyed collection when
	// the supplied iterable contains repeated keys.
	ErrDuplicateKey = errors.New("reactivemodel: duplicate key")

	// ErrKeyNotFound is returned by GetValue on a missing key (TryGet
	// reports absence with ok=false instead), and by UpdateSortPosition
	// for an item that is not in the list.
	ErrKeyNotFound = errors.New("reactivemodel: key not found")

	// ErrMissingProperty is returned when a path observer cannot
	// resolve a property name at a dynamic step.
	ErrMissingProperty = errors.New("reactivemodel: missing property")

	// ErrOutOfRange is returned for list-index arguments outside
	// [0, Count) (or [0, Count] for Insert).
	ErrOutOfRange = errors.New("reactivemodel: index out of range")

	// ErrNotSupported is returned by ItemsChanges when T is not
	// observable, and by comparators that do not support hashing.
	ErrNotSupported = errors.New("reactivemodel: operation not supported")

	// ErrEmptySequence is returned by FirstAsync on a stream that
	// completes without ever emitting a value.
	ErrEmptySequence = errors.New("reactivemodel: sequence completed without a value")
)

// PropertyError wraps an error with the property name that caused it.
type PropertyError struct {
	Property string
	Err      error
}

func (e *PropertyError) Error() string {
	return "reactivemodel: property " + e.Property + ": " + e.Err.Error()
}

func (e *PropertyError) Unwrap() error { return e.Err }

// Is allows errors.Is(err, ErrXxx) to match through a PropertyError.
func (e *PropertyError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewPropertyError wraps err with the offending property name.
func NewPropertyError(property string, err error) *PropertyError {
	return &PropertyError{Property: property, Err: err}
}

// KeyError wraps an error with the offending collection key.
type KeyError struct {
	Key any
	Err error
}

func (e *KeyError) Error() string {
	return "reactivemodel: key error: " + e.Err.Error()
}

func (e *KeyError) Unwrap() error { return e.Err }

func (e *KeyError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewKeyError wraps err with the offending key.
func NewKeyError(key any, err error) *KeyError {
	return &KeyError{Key: key, Err: err}
}

// IndexError wraps ErrOutOfRange with the offending index and bound.
type IndexError struct {
	Index int
	Bound int
	Err   error
}

func (e *IndexError) Error() string {
	return "reactivemodel: index error"
}

func (e *IndexError) Unwrap() error { return e.Err }

func (e *IndexError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewIndexError wraps ErrOutOfRange with the offending index and bound.
func NewIndexError(index, bound int) *IndexError {
	return &IndexError{Index: index, Bound: bound, Err: ErrOutOfRange}
}
