package pathobserve

import (
	"testing"

	"github.com/dshills/reactivemodel/notify"
)

type owner struct {
	n    notify.Notifier
	name string
}

func (o *owner) Notifier() *notify.Notifier { return &o.n }

func (o *owner) SetName(v string) {
	if o.name == v {
		return
	}
	o.name = v
	o.n.RaisePropertyChanged(o, "Name")
}

type dog struct {
	n     notify.Notifier
	owner *owner
}

func (d *dog) Notifier() *notify.Notifier { return &d.n }

func (d *dog) SetOwner(v *owner) {
	if d.owner == v {
		return
	}
	d.owner = v
	d.n.RaisePropertyChanged(d, "Owner")
}

func TestObserverEmitsInitialValue(t *testing.T) {
	d := &dog{owner: &owner{name: "Ada"}}
	obs := Observe(d, func() string { return d.owner.name },
		Field("Owner", func(x *dog) any { return x.owner }),
		Field("Name", func(x *owner) any { return x.name }),
	)

	var got []string
	obs.Subscribe(func(v string) { got = append(got, v) })

	if len(got) != 1 || got[0] != "Ada" {
		t.Fatalf("got %v, want [Ada]", got)
	}
}

func TestObserverRewiresOnIntermediateChange(t *testing.T) {
	d := &dog{owner: &owner{name: "Ada"}}
	obs := Observe(d, func() string { return d.owner.name },
		Field("Owner", func(x *dog) any { return x.owner }),
		Field("Name", func(x *owner) any { return x.name }),
	)

	var got []string
	obs.Subscribe(func(v string) { got = append(got, v) })

	oldOwner := d.owner
	newOwner := &owner{name: "Grace"}
	d.SetOwner(newOwner)

	if len(got) != 2 || got[1] != "Grace" {
		t.Fatalf("got %v, want [Ada Grace]", got)
	}

	newOwner.SetName("Grace") // same value, must not re-emit
	if len(got) != 2 {
		t.Fatalf("got %v, expected no duplicate emission", got)
	}

	newOwner.SetName("Hopper")
	if len(got) != 3 || got[2] != "Hopper" {
		t.Fatalf("got %v, want [... Hopper]", got)
	}

	// The old owner no longer affects the observer.
	oldOwner.SetName("Ignored")
	if len(got) != 3 {
		t.Fatalf("got %v, old owner's rename must not emit", got)
	}
	newOwner.name = "also ignored without raising"
	_ = newOwner
}

func TestObserverReentrantSubscribeNotNotifiedForInProgressEvent(t *testing.T) {
	d := &dog{owner: &owner{name: "Ada"}}
	obs := Observe(d, func() string { return d.owner.name },
		Field("Owner", func(x *dog) any { return x.owner }),
		Field("Name", func(x *owner) any { return x.name }),
	)

	var second []string
	obs.Subscribe(func(v string) {
		if v == "Grace" {
			obs.Subscribe(func(v2 string) { second = append(second, v2) })
		}
	})

	d.SetOwner(&owner{name: "Grace"})
	if len(second) != 0 {
		t.Fatalf("re-entrant subscriber received in-progress event: %v", second)
	}
}

func TestObserverDeactivatesOnLastUnsubscribe(t *testing.T) {
	d := &dog{owner: &owner{name: "Ada"}}
	obs := Observe(d, func() string { return d.owner.name },
		Field("Owner", func(x *dog) any { return x.owner }),
		Field("Name", func(x *owner) any { return x.name }),
	)

	sub := obs.Subscribe(func(string) {})
	if len(obs.nodes) == 0 {
		t.Fatal("expected nodes to be bound after first subscribe")
	}
	sub.Unsubscribe()
	if obs.nodes != nil {
		t.Fatal("expected nodes to be released after last unsubscribe")
	}
}
