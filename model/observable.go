package model

import (
	"reflect"

	"github.com/dshills/reactivemodel/notify"
	"github.com/dshills/reactivemodel/stream"
)

// ObservableBase is embedded by every observable domain type. It owns
// the notify.Notifier that backs property_changed, property_changes,
// and defer_property_changes (spec §4.1), and tracks the embedding
// type's concrete self-pointer so notifications carry the real sender
// rather than the embedded base.
type ObservableBase struct {
	notifier notify.Notifier
	self     any
}

// Init records self (normally called once, at the end of a
// constructor, as `o.Init(o)`) so that raised notifications carry the
// concrete instance as sender rather than *ObservableBase.
func (b *ObservableBase) Init(self any) {
	b.self = self
}

// Notifier returns the underlying notify.Notifier, satisfying
// pathobserve.Observable and any other consumer that needs direct
// access.
func (b *ObservableBase) Notifier() *notify.Notifier {
	return &b.notifier
}

// PropertyChanged subscribes h to the classic property-changed event.
func (b *ObservableBase) PropertyChanged(h notify.Handler) notify.Subscription {
	return b.notifier.Subscribe(h)
}

// Changes returns the hot stream of property changes, created lazily on
// first access.
func (b *ObservableBase) Changes() *stream.Subject[notify.Change] {
	return b.notifier.Stream()
}

// DeferPropertyChanges begins a deferred-notification scope; see
// notify.Notifier.Defer.
func (b *ObservableBase) DeferPropertyChanges() (*notify.DeferScope, error) {
	return b.notifier.Defer()
}

// RaisePropertyChanged manually raises a change for name, with
// dependency fan-out, using the sender recorded by Init.
func (b *ObservableBase) RaisePropertyChanged(name string) {
	sender := b.self
	if sender == nil {
		sender = b
	}
	b.notifier.RaisePropertyChanged(sender, name)
}

// DeclareProperty registers a property descriptor for t (spec §3's
// global registry), thinly forwarding to notify.RegisterProperty so
// that domain packages need only import model.
func DeclareProperty(t reflect.Type, d notify.Descriptor) *notify.Descriptor {
	return notify.RegisterProperty(t, d)
}
