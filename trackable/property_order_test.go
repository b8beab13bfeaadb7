package trackable

import (
	"reflect"
	"testing"

	"github.com/dshills/reactivemodel/notify"
)

// TestSetRaisesIsChangedBeforeDependents exercises the documented
// end-to-end scenario: setting a trackable property with a dependent
// derived property, on an otherwise clean object, must raise IsChanged
// before the property itself and its dependents.
func TestSetRaisesIsChangedBeforeDependents(t *testing.T) {
	notify.Reset()
	defer notify.Reset()

	typ := reflect.TypeOf(&person{})
	notify.RegisterProperty(typ, notify.Descriptor{Name: "Mother", Trackable: true})
	notify.RegisterProperty(typ, notify.Descriptor{Name: "MotherId", DependsOn: []string{"Mother"}})

	p := newPerson("Ada", 30)
	mother := newPerson("Grace", 60)

	var got []string
	p.Notifier().Subscribe(func(_ any, property string) { got = append(got, property) })

	if err := p.SetMother(mother); err != nil {
		t.Fatalf("SetMother error = %v", err)
	}

	want := []string{"IsChanged", "Mother", "MotherId"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("subscriber order = %v, want %v", got, want)
	}
}
