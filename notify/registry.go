package notify

import (
	"reflect"
	"sync"

	"github.com/dshills/reactivemodel/notify/internal/rlog"
)

// Descriptor describes one property of one concrete type, per spec §3.
// The registry is process-wide; registering the same (type, name) again
// replaces the earlier descriptor (see RegisterProperty).
type Descriptor struct {
	// Name is the property name, in declaration order relative to its
	// siblings (insertion order into the registry is preserved by
	// Descriptors).
	Name string

	// DependsOn lists the properties this one is derived from. Raising
	// a change for any of them also raises a change for Name.
	DependsOn []string

	// Trackable is true when the property's value kind itself
	// implements the trackable contract.
	Trackable bool

	// ReferenceOnly is true when the property compares by identity and
	// is not recursed into for nested tracking.
	ReferenceOnly bool

	// ReadOnly is true when the property has no setter.
	ReadOnly bool
}

// registry is the process-wide (type, name) -> Descriptor map plus the
// memoized transitive-dependents closure, guarded by a single RWMutex
// favoring reads once a type's descriptors have been published — the
// same shape as internal/config/registry/registry.go's settings map and
// internal/event/registry.go's subscription registry.
type registry struct {
	mu         sync.RWMutex
	byType     map[reflect.Type][]*Descriptor
	byTypeName map[reflect.Type]map[string]*Descriptor
	dependents map[reflect.Type]map[string][]string

	// ifaceTypes holds every interface type that has had a dependency
	// descriptor registered against it directly, so concrete types that
	// implement it pick up its descriptors too ("interface-default
	// properties", spec §4.1).
	ifaceTypes []reflect.Type
}

var global = &registry{
	byType:     make(map[reflect.Type][]*Descriptor),
	byTypeName: make(map[reflect.Type]map[string]*Descriptor),
	dependents: make(map[reflect.Type]map[string][]string),
}

// RegisterProperty publishes a property descriptor for t. Calling it a
// second time for the same (t, d.Name) overwrites the prior descriptor
// and invalidates the cached dependents closure for t.
func RegisterProperty(t reflect.Type, d Descriptor) *Descriptor {
	global.mu.Lock()
	defer global.mu.Unlock()

	cp := d
	names := global.byTypeName[t]
	if names == nil {
		names = make(map[string]*Descriptor)
		global.byTypeName[t] = names
	}
	if _, exists := names[d.Name]; !exists {
		global.byType[t] = append(global.byType[t], &cp)
	} else {
		for i, existing := range global.byType[t] {
			if existing.Name == d.Name {
				global.byType[t][i] = &cp
				break
			}
		}
	}
	names[d.Name] = &cp
	delete(global.dependents, t)

	if t.Kind() == reflect.Interface {
		known := false
		for _, existing := range global.ifaceTypes {
			if existing == t {
				known = true
				break
			}
		}
		if !known {
			global.ifaceTypes = append(global.ifaceTypes, t)
		}
		// Any concrete type's cached closure may now be missing
		// dependents contributed by this interface.
		global.dependents = make(map[reflect.Type]map[string][]string)
	}

	return &cp
}

// descriptorsIncludingInterfacesLocked returns t's own descriptors plus
// those registered against every interface t implements. Must be called
// with global.mu held.
func descriptorsIncludingInterfacesLocked(t reflect.Type) []*Descriptor {
	descs := append([]*Descriptor(nil), global.byType[t]...)
	if t == nil {
		return descs
	}
	for _, iface := range global.ifaceTypes {
		if t.Implements(iface) {
			descs = append(descs, global.byType[iface]...)
		}
	}
	return descs
}

// Descriptors returns a type's property descriptors in declaration
// (registration) order.
func Descriptors(t reflect.Type) []*Descriptor {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return append([]*Descriptor(nil), global.byType[t]...)
}

// DescriptorFor returns a single named descriptor, if registered.
func DescriptorFor(t reflect.Type, name string) (*Descriptor, bool) {
	global.mu.RLock()
	defer global.mu.RUnlock()
	d, ok := global.byTypeName[t][name]
	return d, ok
}

// Dependents returns the transitive, self-edge-free closure of
// properties that depend (directly or indirectly) on name, in
// breadth-first order, per spec §3/§4.1. The result is memoized per
// (type, name).
func Dependents(t reflect.Type, name string) []string {
	global.mu.RLock()
	if cached, ok := global.dependents[t]; ok {
		if deps, ok := cached[name]; ok {
			global.mu.RUnlock()
			return deps
		}
	}
	global.mu.RUnlock()

	global.mu.Lock()
	defer global.mu.Unlock()

	// Re-check under the write lock in case another goroutine computed
	// it first.
	if cached, ok := global.dependents[t]; ok {
		if deps, ok := cached[name]; ok {
			return deps
		}
	}

	deps := computeDependentsLocked(t, name)

	if global.dependents[t] == nil {
		global.dependents[t] = make(map[string][]string)
	}
	global.dependents[t][name] = deps
	return deps
}

// computeDependentsLocked must be called with global.mu held.
func computeDependentsLocked(t reflect.Type, root string) []string {
	descs := descriptorsIncludingInterfacesLocked(t)

	visited := map[string]bool{root: true}
	var order []string
	queue := []string{root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range descs {
			for _, dep := range d.DependsOn {
				if dep != current {
					continue
				}
				if d.Name == root {
					// Self-edge via the transitive closure: the
					// property would depend on itself. Drop it and
					// warn, per spec §4.1.
					rlog.Warnf("property %q on %s depends on itself transitively; dropping self-edge", root, t)
					continue
				}
				if visited[d.Name] {
					continue
				}
				visited[d.Name] = true
				order = append(order, d.Name)
				queue = append(queue, d.Name)
			}
		}
	}

	return order
}

// Reset clears the entire global registry. Exposed for tests only.
func Reset() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.byType = make(map[reflect.Type][]*Descriptor)
	global.byTypeName = make(map[reflect.Type]map[string]*Descriptor)
	global.dependents = make(map[reflect.Type]map[string][]string)
	global.ifaceTypes = nil
}
