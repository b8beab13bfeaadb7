// Package pathobserve implements the property-path observer (spec
// §4.4): given a root value and a chain of named property steps, it
// subscribes at each level, rewires downstream nodes whenever an
// intermediate value changes, and republishes the terminal value
// whenever anything on the path changes.
package pathobserve
