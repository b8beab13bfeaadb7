package pathobserve

import "testing"

func TestDynamicFieldReadsJSONString(t *testing.T) {
	step := DynamicField("name")
	v, err := step.Get(`{"name":"ada","age":30}`)
	if err != nil {
		t.Fatalf("Get error = %v", err)
	}
	if v != "ada" {
		t.Fatalf("Get() = %v, want ada", v)
	}
}

func TestDynamicFieldMissingKeyIsMissingProperty(t *testing.T) {
	step := DynamicField("missing")
	_, err := step.Get(`{"name":"ada"}`)
	if err == nil {
		t.Fatal("Get() error = nil, want MissingProperty")
	}
}

func TestDynamicFieldReadsMap(t *testing.T) {
	step := DynamicField("name")
	v, err := step.Get(map[string]any{"name": "grace"})
	if err != nil {
		t.Fatalf("Get error = %v", err)
	}
	if v != "grace" {
		t.Fatalf("Get() = %v, want grace", v)
	}
}

func TestSetDynamicFieldWritesBackJSONString(t *testing.T) {
	out, err := SetDynamicField(`{"name":"ada"}`, "name", "grace")
	if err != nil {
		t.Fatalf("SetDynamicField error = %v", err)
	}
	next := DynamicField("name")
	v, err := next.Get(out)
	if err != nil {
		t.Fatalf("Get on patched document error = %v", err)
	}
	if v != "grace" {
		t.Fatalf("patched name = %v, want grace", v)
	}
}

func TestSetDynamicFieldWritesBackJSONBytes(t *testing.T) {
	out, err := SetDynamicField([]byte(`{"age":30}`), "age", 31)
	if err != nil {
		t.Fatalf("SetDynamicField error = %v", err)
	}
	next := DynamicField("age")
	v, err := next.Get(out)
	if err != nil {
		t.Fatalf("Get on patched document error = %v", err)
	}
	if v != float64(31) {
		t.Fatalf("patched age = %v, want 31", v)
	}
}

func TestSetDynamicFieldRejectsUnsupportedParent(t *testing.T) {
	_, err := SetDynamicField(42, "name", "grace")
	if err == nil {
		t.Fatal("SetDynamicField error = nil, want MissingProperty")
	}
}
