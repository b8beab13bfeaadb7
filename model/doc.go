// Package model provides the observable-object building block (spec
// §4.1): a generic Property[T] whose setter diffs and raises through an
// embedded notify.Notifier, and ObservableBase, which every domain type
// embeds to pick up property_changed, the hot change stream, and
// deferred batching for free.
//
// The source generates a concrete override subtype per declared type at
// process start (a dynamic subtype synthesis mechanism that has no
// portable Go equivalent). This package instead takes design note
// alternative (b): a generic value-bag property (Property[T]) that
// every field is declared as, combined with (c) explicit dependency
// registration via DeclareProperty (a notify.Descriptor whose DependsOn
// lists the source properties). Client types look like:
//
//	type Person struct {
//	    model.ObservableBase
//	    firstName *model.Property[string]
//	    lastName  *model.Property[string]
//	}
//
// with each field created by model.NewProperty, and each Property[T]
// performs the diff-then-raise setter contract itself, rather than the
// base synthesizing one per type.
package model
