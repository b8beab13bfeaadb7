// Package factory implements the library's construction surface (spec
// §6): create_observable/create_trackable. Go has no runtime subtype
// synthesis, so the "synthesized type" of §6/§7 is simply T itself —
// a concrete struct embedding model.ObservableBase or
// trackable.TrackableBase, written by the caller in the ordinary way.
// What this package still owns is the cached-failure-rethrow contract:
// once construction of a given T fails with a NonVirtualProperty or
// NoSetter error, every subsequent Create call for that same T rethrows
// the cached failure without re-running construction (spec §5's
// "write-once on first observation of a type" applied to construction
// outcomes rather than property descriptors).
package factory
