// Package collection implements observable, keyed, and trackable list
// containers (spec §4.6-§4.8) and their derived views (§4.9): ordered
// containers that raise structural change events, maintain an optional
// persisted stable sort, and — in their trackable variants — produce a
// change set against a lazily captured original snapshot.
package collection
