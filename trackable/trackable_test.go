package trackable

import "testing"

type person struct {
	TrackableBase
	name   *TrackableProperty[string]
	age    *TrackableProperty[int]
	mother *TrackableProperty[*person]
}

func newPerson(name string, age int) *person {
	p := &person{}
	p.name = NewTrackableProperty(&p.TrackableBase, "Name", name)
	p.age = NewTrackableProperty(&p.TrackableBase, "Age", age)
	p.mother = NewTrackableProperty[*person](&p.TrackableBase, "Mother", nil)
	p.Init(p)
	return p
}

func (p *person) Age() int           { return p.age.Get() }
func (p *person) SetAge(v int) error { return p.age.Set(v) }
func (p *person) Mother() *person    { return p.mother.Get() }
func (p *person) SetMother(m *person) error {
	return p.mother.Set(m)
}

func TestTrackableNestedAcceptReject(t *testing.T) {
	p := newPerson("M", 36)

	if err := p.SetAge(37); err != nil {
		t.Fatalf("SetAge error = %v", err)
	}
	if !p.IsChanged() {
		t.Fatal("expected is_changed after SetAge")
	}
	if p.age.GetOriginal() != 36 {
		t.Fatalf("original age = %d, want 36", p.age.GetOriginal())
	}

	if err := p.RejectChanges(); err != nil {
		t.Fatalf("RejectChanges error = %v", err)
	}
	if p.IsChanged() || p.Age() != 36 {
		t.Fatalf("after reject: is_changed=%v age=%d, want false/36", p.IsChanged(), p.Age())
	}

	mother := newPerson("N", 60)
	if err := p.SetMother(mother); err != nil {
		t.Fatalf("SetMother error = %v", err)
	}
	if err := p.AcceptChanges(); err != nil {
		t.Fatalf("AcceptChanges error = %v", err)
	}
	if p.IsChanged() || mother.IsChanged() {
		t.Fatalf("after accept: p.is_changed=%v mother.is_changed=%v, want false/false", p.IsChanged(), mother.IsChanged())
	}

	if err := mother.SetAge(61); err != nil {
		t.Fatalf("mother.SetAge error = %v", err)
	}
	if !p.IsChanged() || !mother.IsChanged() {
		t.Fatalf("after mother.SetAge: p.is_changed=%v mother.is_changed=%v, want true/true", p.IsChanged(), mother.IsChanged())
	}

	if err := mother.SetOriginalValue("Age", 61); err != nil {
		t.Fatalf("SetOriginalValue error = %v", err)
	}
	if p.IsChanged() {
		t.Fatalf("after mother.set_original_value: p.is_changed = true, want false")
	}
}

func TestBeginInitWritesBothSlots(t *testing.T) {
	p := newPerson("M", 36)
	if err := p.BeginInit(); err != nil {
		t.Fatalf("BeginInit error = %v", err)
	}
	if err := p.SetAge(10); err != nil {
		t.Fatalf("SetAge error = %v", err)
	}
	if err := p.EndInit(); err != nil {
		t.Fatalf("EndInit error = %v", err)
	}
	if p.IsChanged() || p.age.GetOriginal() != 10 {
		t.Fatalf("is_changed=%v original=%d, want false/10", p.IsChanged(), p.age.GetOriginal())
	}
}

func TestBeginInitRefusedWhileChanged(t *testing.T) {
	p := newPerson("M", 36)
	if err := p.SetAge(37); err != nil {
		t.Fatalf("SetAge error = %v", err)
	}
	if err := p.BeginInit(); err == nil {
		t.Fatal("expected BeginInit to fail while changed")
	}
}

func TestResetValueClearsChangedWhenOnlyOne(t *testing.T) {
	p := newPerson("M", 36)
	if err := p.SetAge(37); err != nil {
		t.Fatalf("SetAge error = %v", err)
	}
	if err := p.ResetValue("Age", 40); err != nil {
		t.Fatalf("ResetValue error = %v", err)
	}
	if p.IsChanged() || p.Age() != 40 {
		t.Fatalf("is_changed=%v age=%d, want false/40", p.IsChanged(), p.Age())
	}
}

func TestGetChanges(t *testing.T) {
	p := newPerson("M", 36)
	if err := p.SetAge(37); err != nil {
		t.Fatalf("SetAge error = %v", err)
	}
	changes := p.GetChanges()
	if len(changes) != 1 || changes[0].Property != "Age" || changes[0].Original != 36 || changes[0].Current != 37 {
		t.Fatalf("GetChanges = %+v", changes)
	}
}
