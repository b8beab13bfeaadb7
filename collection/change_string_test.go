package collection

import (
	"strings"
	"testing"
)

func TestChangeStringPrettyPrintsJSONItems(t *testing.T) {
	c := Change[string]{Action: ActionReplace, OldIndex: 0, NewIndex: 0, OldItem: `{"n":1}`, NewItem: `{"n":2}`}
	s := c.String()
	if !strings.Contains(s, "\"n\": 2") {
		t.Fatalf("String() = %q, want pretty-printed new item", s)
	}
	if !strings.HasPrefix(s, "Replace[0->0]:") {
		t.Fatalf("String() = %q, want Replace[0->0]: prefix", s)
	}
}

func TestChangeStringFallsBackForNonJSONItems(t *testing.T) {
	c := Change[int]{Action: ActionAdd, OldIndex: -1, NewIndex: 2, NewItem: 7}
	if got, want := c.String(), "Add[-1->2]: 0 -> 7"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
