package collection

import (
	"github.com/dshills/reactivemodel/notify"
	"github.com/dshills/reactivemodel/rmerrors"
	"github.com/dshills/reactivemodel/stream"
)

// KeyedList extends List with a key→index mapping, kept in sync with
// every structural change (spec §4.7).
type KeyedList[K comparable, T any] struct {
	list     *List[T]
	keyOf    func(T) K
	keyIndex map[K]int
}

// NewKeyed creates an empty KeyedList, or one seeded from initial.
// Duplicate keys in initial fail with DuplicateKey.
func NewKeyed[K comparable, T any](keyOf func(T) K, initial []T, opts ...Option[T]) (*KeyedList[K, T], error) {
	kl := &KeyedList[K, T]{list: New[T](nil, opts...), keyOf: keyOf, keyIndex: make(map[K]int)}
	if len(initial) > 0 {
		if err := kl.checkDuplicates(initial); err != nil {
			return nil, err
		}
		kl.list.Reset(initial)
		kl.reindex()
	}
	return kl, nil
}

func (kl *KeyedList[K, T]) checkDuplicates(items []T) error {
	seen := make(map[K]bool, len(items))
	for _, it := range items {
		k := kl.keyOf(it)
		if seen[k] {
			return rmerrors.NewKeyError(k, rmerrors.ErrDuplicateKey)
		}
		seen[k] = true
	}
	return nil
}

func (kl *KeyedList[K, T]) reindex() {
	kl.keyIndex = make(map[K]int, kl.list.Count())
	for i, it := range kl.list.Items() {
		kl.keyIndex[kl.keyOf(it)] = i
	}
}

// List returns the underlying observable list.
func (kl *KeyedList[K, T]) List() *List[T] { return kl.list }

// Notifier forwards to the underlying list's notifier.
func (kl *KeyedList[K, T]) Notifier() *notify.Notifier { return kl.list.Notifier() }

// Changes forwards to the underlying list's hot structural stream.
func (kl *KeyedList[K, T]) Changes() *stream.Subject[Change[T]] { return kl.list.Changes() }

// Count, IsEmpty mirror List.
func (kl *KeyedList[K, T]) Count() int    { return kl.list.Count() }
func (kl *KeyedList[K, T]) IsEmpty() bool { return kl.list.IsEmpty() }

// GetKey returns the key for value.
func (kl *KeyedList[K, T]) GetKey(value T) K { return kl.keyOf(value) }

// ContainsKey reports whether key is present.
func (kl *KeyedList[K, T]) ContainsKey(key K) bool {
	_, ok := kl.keyIndex[key]
	return ok
}

// IndexOfKey returns the current index of key, or -1.
func (kl *KeyedList[K, T]) IndexOfKey(key K) int {
	idx, ok := kl.keyIndex[key]
	if !ok {
		return -1
	}
	return idx
}

// TryGet returns the value for key, if present.
func (kl *KeyedList[K, T]) TryGet(key K) (T, bool) {
	idx, ok := kl.keyIndex[key]
	if !ok {
		var zero T
		return zero, false
	}
	v, _ := kl.list.At(idx)
	return v, true
}

// GetValue returns the value for key, or KeyNotFound.
func (kl *KeyedList[K, T]) GetValue(key K) (T, error) {
	v, ok := kl.TryGet(key)
	if !ok {
		return v, rmerrors.NewKeyError(key, rmerrors.ErrKeyNotFound)
	}
	return v, nil
}

// Add appends value, failing with DuplicateKey if its key is already
// present.
func (kl *KeyedList[K, T]) Add(value T) error {
	k := kl.keyOf(value)
	if _, exists := kl.keyIndex[k]; exists {
		return rmerrors.NewKeyError(k, rmerrors.ErrDuplicateKey)
	}
	kl.list.Add(value)
	kl.reindex()
	return nil
}

// AddOrUpdate replaces the existing entry with value's key, or appends
// if no such key exists.
func (kl *KeyedList[K, T]) AddOrUpdate(value T) {
	k := kl.keyOf(value)
	if idx, exists := kl.keyIndex[k]; exists {
		kl.list.replaceAt(idx, value)
		kl.reindex()
		return
	}
	kl.list.Add(value)
	kl.reindex()
}

// RemoveKey removes the entry for key, reporting whether it was
// present.
func (kl *KeyedList[K, T]) RemoveKey(key K) bool {
	idx, ok := kl.keyIndex[key]
	if !ok {
		return false
	}
	_ = kl.list.RemoveAt(idx)
	kl.reindex()
	return true
}

// RemoveAt removes the entry at index i.
func (kl *KeyedList[K, T]) RemoveAt(i int) error {
	if err := kl.list.RemoveAt(i); err != nil {
		return err
	}
	kl.reindex()
	return nil
}

// Clear removes every entry.
func (kl *KeyedList[K, T]) Clear() {
	kl.list.Clear()
	kl.keyIndex = make(map[K]int)
}

// Reset replaces the contents wholesale. Duplicate keys in items fail
// with DuplicateKey and leave the collection unmodified.
func (kl *KeyedList[K, T]) Reset(items []T) error {
	if err := kl.checkDuplicates(items); err != nil {
		return err
	}
	kl.list.Reset(items)
	kl.reindex()
	return nil
}

// Items returns a snapshot copy of the current values.
func (kl *KeyedList[K, T]) Items() []T { return kl.list.Items() }
