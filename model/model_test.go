package model

import (
	"reflect"
	"testing"

	"github.com/dshills/reactivemodel/notify"
)

type point struct {
	ObservableBase
	x *Property[int]
	y *Property[int]
}

func newPoint(x, y int) *point {
	p := &point{}
	p.x = NewProperty[int](p, "X", x)
	p.y = NewProperty[int](p, "Y", y)
	p.Init(p)
	return p
}

func (p *point) X() int      { return p.x.Get() }
func (p *point) SetX(v int)  { p.x.Set(v) }
func (p *point) Y() int      { return p.y.Get() }
func (p *point) SetY(v int)  { p.y.Set(v) }

func TestSetterRaisesOnlyWhenChanged(t *testing.T) {
	p := newPoint(1, 2)
	var got []string
	p.PropertyChanged(func(sender any, property string) {
		if sender != p {
			t.Fatalf("sender = %v, want %v", sender, p)
		}
		got = append(got, property)
	})

	p.SetX(1) // unchanged
	if len(got) != 0 {
		t.Fatalf("got %v, want none", got)
	}

	p.SetX(5)
	if !reflect.DeepEqual(got, []string{"X"}) {
		t.Fatalf("got %v, want [X]", got)
	}
}

func TestDeferBatchesPropertyRaises(t *testing.T) {
	notify.Reset()
	defer notify.Reset()

	p := newPoint(0, 0)
	var got []string
	p.PropertyChanged(func(_ any, property string) { got = append(got, property) })

	scope, err := p.DeferPropertyChanges()
	if err != nil {
		t.Fatalf("DeferPropertyChanges error = %v", err)
	}
	p.SetX(1)
	p.SetY(2)
	if len(got) != 0 {
		t.Fatalf("expected no delivery while deferred, got %v", got)
	}
	scope.Release()

	if !reflect.DeepEqual(got, []string{"X", "Y"}) {
		t.Fatalf("got %v, want [X Y]", got)
	}
}

func TestDeclaredDependencyFansOut(t *testing.T) {
	notify.Reset()
	defer notify.Reset()

	typ := reflect.TypeOf(&point{})
	DeclareProperty(typ, notify.Descriptor{Name: "X"})
	DeclareProperty(typ, notify.Descriptor{Name: "Y"})
	DeclareProperty(typ, notify.Descriptor{Name: "Magnitude", DependsOn: []string{"X", "Y"}})

	p := newPoint(0, 0)
	var got []string
	p.PropertyChanged(func(_ any, property string) { got = append(got, property) })

	p.SetX(3)

	if !reflect.DeepEqual(got, []string{"X", "Magnitude"}) {
		t.Fatalf("got %v, want [X Magnitude]", got)
	}
}
