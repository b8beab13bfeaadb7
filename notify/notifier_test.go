package notify

import (
	"errors"
	"reflect"
	"testing"
)

func TestRaisePropertyChangedFansOutDependents(t *testing.T) {
	Reset()
	defer Reset()

	sender := &person{firstName: "Ada", lastName: "Lovelace"}
	typ := reflect.TypeOf(sender)
	RegisterProperty(typ, Descriptor{Name: "FirstName"})
	RegisterProperty(typ, Descriptor{Name: "LastName"})
	RegisterProperty(typ, Descriptor{Name: "FullName", DependsOn: []string{"FirstName", "LastName"}})

	n := New()
	var got []string
	n.Subscribe(func(_ any, property string) { got = append(got, property) })

	n.RaisePropertyChanged(sender, "FirstName")

	want := []string{"FirstName", "FullName"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDeferBatchesAndDeduplicates(t *testing.T) {
	Reset()
	defer Reset()

	sender := &person{}
	typ := reflect.TypeOf(sender)
	RegisterProperty(typ, Descriptor{Name: "FirstName"})
	RegisterProperty(typ, Descriptor{Name: "LastName"})

	n := New()
	var got []string
	n.Subscribe(func(_ any, property string) { got = append(got, property) })

	scope, err := n.Defer()
	if err != nil {
		t.Fatalf("Defer() error = %v", err)
	}

	n.RaisePropertyChanged(sender, "FirstName")
	n.RaisePropertyChanged(sender, "LastName")
	n.RaisePropertyChanged(sender, "FirstName") // duplicate, must not repeat

	if len(got) != 0 {
		t.Fatalf("expected no delivery while deferred, got %v", got)
	}

	scope.Release()

	want := []string{"FirstName", "LastName"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDeferRejectsReentry(t *testing.T) {
	Reset()
	defer Reset()

	n := New()
	scope, err := n.Defer()
	if err != nil {
		t.Fatalf("Defer() error = %v", err)
	}
	defer scope.Release()

	_, err = n.Defer()
	if !errors.Is(err, ErrAlreadyDeferred) {
		t.Fatalf("second Defer() error = %v, want ErrAlreadyDeferred", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	Reset()
	defer Reset()

	n := New()
	sender := &person{}
	var calls int
	n.Subscribe(func(any, string) { calls++ })

	scope, err := n.Defer()
	if err != nil {
		t.Fatalf("Defer() error = %v", err)
	}
	n.RaisePropertyChanged(sender, "X")
	scope.Release()
	scope.Release() // must be a no-op

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	Reset()
	defer Reset()

	n := New()
	var calls int
	sub := n.Subscribe(func(any, string) { calls++ })

	n.RaisePropertyChanged(&person{}, "X")
	sub.Unsubscribe()
	n.RaisePropertyChanged(&person{}, "X")

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if sub.IsActive() {
		t.Fatal("expected subscription to be inactive after Unsubscribe")
	}
}

func TestStreamReceivesChanges(t *testing.T) {
	Reset()
	defer Reset()

	n := New()
	var got []Change
	n.Stream().SubscribeFunc(func(c Change) { got = append(got, c) })

	sender := &person{}
	n.RaisePropertyChanged(sender, "FirstName")

	if len(got) != 1 || got[0].Property != "FirstName" || got[0].Sender != sender {
		t.Fatalf("got %v", got)
	}
}
