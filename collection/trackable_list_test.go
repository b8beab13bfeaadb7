package collection

import (
	"testing"

	"github.com/dshills/reactivemodel/trackable"
)

// tag is a minimal trackable item used to exercise TrackableList's
// per-item IsChanged propagation.
type tag struct {
	trackable.TrackableBase
	value *trackable.TrackableProperty[string]
}

func newTag(v string) *tag {
	tg := &tag{}
	tg.value = trackable.NewTrackableProperty(&tg.TrackableBase, "Value", v)
	tg.Init(tg)
	return tg
}

func (tg *tag) Value() string          { return tg.value.Get() }
func (tg *tag) SetValue(v string) error { return tg.value.Set(v) }

// label is a plain, non-trackable item used to exercise GetChangedItems'
// structural-equality matching for items that don't implement Trackable.
type label struct {
	Name string
}

func TestTrackableListItemToggleChangesCollectionBeforeBaseline(t *testing.T) {
	a, b := newTag("a"), newTag("b")
	tl := NewTrackableList[*tag]([]*tag{a, b})

	if tl.IsChanged() {
		t.Fatal("expected !is_changed right after construction")
	}

	if err := a.SetValue("z"); err != nil {
		t.Fatalf("SetValue error = %v", err)
	}

	if !tl.IsChanged() {
		t.Fatal("expected is_changed after a contained item's own IsChanged toggle, before any structural mutation")
	}

	diffs := tl.GetChangedItems()
	if len(diffs) != 1 || diffs[0].Kind != DiffChange || diffs[0].Item != a {
		t.Fatalf("GetChangedItems() = %+v, want single DiffChange for a", diffs)
	}
}

func TestTrackableListAcceptChanges(t *testing.T) {
	a := newTag("a")
	tl := NewTrackableList[*tag]([]*tag{a})

	tl.Add(newTag("b"))
	if !tl.IsChanged() {
		t.Fatal("expected is_changed after Add")
	}

	if err := tl.AcceptChanges(); err != nil {
		t.Fatalf("AcceptChanges error = %v", err)
	}
	if tl.IsChanged() {
		t.Fatal("expected !is_changed after AcceptChanges")
	}
	if len(tl.GetChangedItems()) != 0 {
		t.Fatalf("GetChangedItems() after accept = %+v, want none", tl.GetChangedItems())
	}

	if err := a.SetValue("z"); err != nil {
		t.Fatalf("SetValue error = %v", err)
	}
	if !tl.IsChanged() {
		t.Fatal("expected is_changed after editing a previously-accepted item")
	}
}

func TestTrackableListRejectChanges(t *testing.T) {
	a, b := newTag("a"), newTag("b")
	tl := NewTrackableList[*tag]([]*tag{a, b})

	tl.RemoveAt(0)
	if !tl.IsChanged() {
		t.Fatal("expected is_changed after RemoveAt")
	}

	if err := tl.RejectChanges(); err != nil {
		t.Fatalf("RejectChanges error = %v", err)
	}
	if tl.IsChanged() {
		t.Fatal("expected !is_changed after RejectChanges")
	}
	if got := tl.List().Items(); len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("Items() after reject = %v, want [a b]", got)
	}
}

// TestTrackableListIdenticalMatchesNonTrackableItemsByValue exercises
// the identical() fix: a non-trackable pointer item that is removed and
// re-added as a distinct pointer with equal content must be matched to
// its captured original by value equality, not reported as a spurious
// Add/Remove pair (spec §4.8 "Items that match by identity, or by
// structural equality, for non-trackable items"). Both items end up at
// a different index than in the original, so each is a position Change.
func TestTrackableListIdenticalMatchesNonTrackableItemsByValue(t *testing.T) {
	x, y := &label{Name: "x"}, &label{Name: "y"}
	tl := NewTrackableList[*label]([]*label{x, y})

	tl.RemoveAt(0) // captures original=[x,y]; current=[y]
	tl.Add(&label{Name: "x"}) // distinct pointer, equal content; current=[y, x2]

	diffs := tl.GetChangedItems()
	for _, d := range diffs {
		if d.Kind == DiffAdd || d.Kind == DiffRemove {
			t.Fatalf("GetChangedItems() = %+v, want no Add/Remove for value-equal replacement", diffs)
		}
	}
	if len(diffs) != 2 {
		t.Fatalf("GetChangedItems() = %+v, want 2 Change entries (positions swapped)", diffs)
	}
}
