package collection

import (
	"testing"

	"github.com/dshills/reactivemodel/trackable"
)

// keyedItem is a minimal trackable keyed item, with a nullable value
// property, used to exercise TrackableKeyedList.
type keyedItem struct {
	trackable.TrackableBase
	key   int
	value *trackable.TrackableProperty[*string]
}

func newKeyedItem(key int, value *string) *keyedItem {
	it := &keyedItem{key: key}
	it.value = trackable.NewTrackableProperty(&it.TrackableBase, "Value", value)
	it.Init(it)
	return it
}

func (it *keyedItem) Key() int            { return it.key }
func (it *keyedItem) Value() *string      { return it.value.Get() }
func (it *keyedItem) SetValue(v *string) error { return it.value.Set(v) }

func strp(s string) *string { return &s }

func keyedItemKeyOf(it *keyedItem) int { return it.key }

func TestTrackableKeyedListItemToggleChangesCollectionBeforeBaseline(t *testing.T) {
	a := newKeyedItem(1, strp("a"))
	tkl, err := NewTrackableKeyedList[int, *keyedItem](keyedItemKeyOf, []*keyedItem{a})
	if err != nil {
		t.Fatalf("NewTrackableKeyedList error = %v", err)
	}

	if tkl.IsChanged() {
		t.Fatal("expected !is_changed right after construction")
	}

	if err := a.SetValue(strp("z")); err != nil {
		t.Fatalf("SetValue error = %v", err)
	}

	if !tkl.IsChanged() {
		t.Fatal("expected is_changed after a contained item's own IsChanged toggle, before any structural mutation")
	}

	diff, ok := tkl.TryGetChange(1)
	if !ok || diff.Kind != DiffChange {
		t.Fatalf("TryGetChange(1) = %+v, %v, want a DiffChange", diff, ok)
	}

	diffs := tkl.GetChangedItems()
	if len(diffs) != 1 || diffs[0].Kind != DiffChange {
		t.Fatalf("GetChangedItems() = %+v, want single DiffChange", diffs)
	}
}

func TestTrackableKeyedListAcceptChanges(t *testing.T) {
	a := newKeyedItem(1, strp("a"))
	tkl, err := NewTrackableKeyedList[int, *keyedItem](keyedItemKeyOf, []*keyedItem{a})
	if err != nil {
		t.Fatalf("NewTrackableKeyedList error = %v", err)
	}

	if err := tkl.Add(newKeyedItem(2, nil)); err != nil {
		t.Fatalf("Add error = %v", err)
	}
	if !tkl.IsChanged() {
		t.Fatal("expected is_changed after Add")
	}

	if err := tkl.AcceptChanges(); err != nil {
		t.Fatalf("AcceptChanges error = %v", err)
	}
	if tkl.IsChanged() {
		t.Fatal("expected !is_changed after AcceptChanges")
	}
	if len(tkl.GetChangedItems()) != 0 {
		t.Fatalf("GetChangedItems() after accept = %+v, want none", tkl.GetChangedItems())
	}
}

func TestTrackableKeyedListRejectChanges(t *testing.T) {
	a := newKeyedItem(1, strp("a"))
	b := newKeyedItem(2, strp("b"))
	tkl, err := NewTrackableKeyedList[int, *keyedItem](keyedItemKeyOf, []*keyedItem{a, b})
	if err != nil {
		t.Fatalf("NewTrackableKeyedList error = %v", err)
	}

	if !tkl.RemoveKey(1) {
		t.Fatal("expected RemoveKey(1) to succeed")
	}
	if !tkl.IsChanged() {
		t.Fatal("expected is_changed after RemoveKey")
	}

	if err := tkl.RejectChanges(); err != nil {
		t.Fatalf("RejectChanges error = %v", err)
	}
	if tkl.IsChanged() {
		t.Fatal("expected !is_changed after RejectChanges")
	}
	if _, ok := tkl.KeyedList().TryGet(1); !ok {
		t.Fatal("expected key 1 restored after RejectChanges")
	}
}

// TestTrackableKeyedListS5Scenario exercises the documented end-to-end
// scenario: begin_init seeds two items (one with a null value); the
// collection starts unchanged; a per-item value toggle, a removal, a
// re-add under the same key, and finally editing the re-added item back
// to the original value must each produce the documented is_changed
// sequence.
func TestTrackableKeyedListS5Scenario(t *testing.T) {
	tkl, err := NewTrackableKeyedList[int, *keyedItem](keyedItemKeyOf, nil)
	if err != nil {
		t.Fatalf("NewTrackableKeyedList error = %v", err)
	}

	tkl.BeginInit()
	item1 := newKeyedItem(1, strp("a"))
	item2 := newKeyedItem(2, nil)
	if err := tkl.Add(item1); err != nil {
		t.Fatalf("Add(item1) error = %v", err)
	}
	if err := tkl.Add(item2); err != nil {
		t.Fatalf("Add(item2) error = %v", err)
	}
	if err := tkl.EndInit(); err != nil {
		t.Fatalf("EndInit error = %v", err)
	}

	if tkl.IsChanged() {
		t.Fatal("expected !is_changed after begin_init; add(1,\"a\"),(2,null); end_init")
	}

	if err := item1.SetValue(strp("b")); err != nil {
		t.Fatalf("SetValue error = %v", err)
	}
	if !tkl.IsChanged() {
		t.Fatal(`expected is_changed after item1.value = "b"`)
	}

	if !tkl.RemoveKey(1) {
		t.Fatal("expected RemoveKey(1) to remove item1")
	}
	if !tkl.IsChanged() {
		t.Fatal("expected is_changed after remove_key(1)")
	}

	item1c := newKeyedItem(1, strp("c"))
	if err := tkl.Add(item1c); err != nil {
		t.Fatalf("Add(item1c) error = %v", err)
	}
	if !tkl.IsChanged() {
		t.Fatal(`expected is_changed after add(Item(1,"c"))`)
	}

	got, ok := tkl.KeyedList().TryGet(1)
	if !ok {
		t.Fatal("expected key 1 present")
	}
	if err := got.SetValue(strp("a")); err != nil {
		t.Fatalf("SetValue error = %v", err)
	}

	if tkl.IsChanged() {
		t.Fatal(`expected !is_changed after item_for(1).value = "a"`)
	}
}
