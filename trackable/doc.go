// Package trackable implements the trackable property and trackable
// object contract (spec §4.5): per-property shadow storage of original
// values, an incrementally maintained is-changed set, accept/reject
// semantics, and nested-child propagation so that a trackable object's
// is_changed reflects trackable descendants too.
//
// As in model, the source's per-type synthesized subtype becomes a
// generic value-bag property (TrackableProperty[T]) plus explicit
// registration with the embedding TrackableBase, per design note
// alternative (b)+(c).
package trackable
