package notify

import (
	"runtime"
	"weak"

	"github.com/google/uuid"
)

// SubscribeWeak registers a handler bound to target without the
// Notifier holding a strong reference to it: only a weak.Pointer is
// stored, so the subscription is never the reason target outlives its
// natural owner (spec §4.2 "weak event handlers"). get is called with
// target only while it is still reachable; once target is collected,
// the subscription tears itself down and further raises silently skip
// it.
func SubscribeWeak[T any](n *Notifier, target *T, get func(*T) Handler) Subscription {
	wp := weak.Make(target)

	sub := &handlerSub{id: uuid.New(), active: true, owner: n}
	sub.fn = func(sender any, property string) {
		strong := wp.Value()
		if strong == nil {
			sub.Unsubscribe()
			return
		}
		get(strong)(sender, property)
	}

	n.mu.Lock()
	n.handlers = append(n.handlers, sub)
	n.mu.Unlock()

	runtime.AddCleanup(target, func(s *handlerSub) {
		s.Unsubscribe()
	}, sub)

	return sub
}
