package trackable

import "testing"

func TestChangeStringPrettyPrintsJSONPayload(t *testing.T) {
	c := Change{Property: "Profile", Original: `{"name":"ada"}`, Current: `{"name":"grace"}`}
	s := c.String()
	if !contains(s, "\"name\": \"grace\"") {
		t.Fatalf("String() = %q, want pretty-printed current JSON", s)
	}
	if !contains(s, "\"name\": \"ada\"") {
		t.Fatalf("String() = %q, want pretty-printed original JSON", s)
	}
}

func TestChangeStringFallsBackForNonJSONPayload(t *testing.T) {
	c := Change{Property: "Age", Original: 30, Current: 31}
	if got, want := c.String(), "Age: 30 -> 31"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
