package pathobserve

import (
	"github.com/dshills/reactivemodel/rmerrors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Step is one named hop in a property path: given the current node's
// value, Get resolves the next value. A Step returning a MissingProperty
// error corresponds to spec §4.4's "missing property on a dynamic
// intermediate value" failure mode.
type Step struct {
	Name string
	Get  func(parent any) (any, error)
}

// Field builds a statically typed Step: it type-asserts parent to P and
// applies get. Used for ordinary struct-backed property chains, where
// the property is known never to be "missing" at compile time.
func Field[P any, V any](name string, get func(P) V) Step {
	return Step{
		Name: name,
		Get: func(parent any) (any, error) {
			p, ok := parent.(P)
			if !ok {
				return nil, rmerrors.NewPropertyError(name, rmerrors.ErrMissingProperty)
			}
			return get(p), nil
		},
	}
}

// DynamicField builds a Step over loosely typed intermediate values —
// a map[string]any (name resolved by plain key lookup) or a raw JSON
// string/[]byte (name resolved via gjson path syntax). It reports MissingProperty when the key is absent, matching
// the source's dynamic-lookup failure mode.
func DynamicField(name string) Step {
	return Step{
		Name: name,
		Get: func(parent any) (any, error) {
			switch v := parent.(type) {
			case map[string]any:
				val, ok := v[name]
				if !ok {
					return nil, rmerrors.NewPropertyError(name, rmerrors.ErrMissingProperty)
				}
				return val, nil
			case string:
				res := gjson.Get(v, name)
				if !res.Exists() {
					return nil, rmerrors.NewPropertyError(name, rmerrors.ErrMissingProperty)
				}
				return res.Value(), nil
			case []byte:
				res := gjson.GetBytes(v, name)
				if !res.Exists() {
					return nil, rmerrors.NewPropertyError(name, rmerrors.ErrMissingProperty)
				}
				return res.Value(), nil
			default:
				return nil, rmerrors.NewPropertyError(name, rmerrors.ErrMissingProperty)
			}
		},
	}
}

// SetDynamicField writes value at name into a JSON-shaped intermediate
// node (a raw JSON string or []byte), returning the updated document in
// the same representation it was given. It is the write-back
// counterpart to DynamicField: a plugin-supplied dynamic object that
// can be read by path can also be patched by path, without the caller
// hand-rolling JSON surgery.
func SetDynamicField(parent any, name string, value any) (any, error) {
	switch v := parent.(type) {
	case string:
		out, err := sjson.Set(v, name, value)
		if err != nil {
			return nil, rmerrors.NewPropertyError(name, rmerrors.ErrMissingProperty)
		}
		return out, nil
	case []byte:
		out, err := sjson.SetBytes(v, name, value)
		if err != nil {
			return nil, rmerrors.NewPropertyError(name, rmerrors.ErrMissingProperty)
		}
		return out, nil
	default:
		return nil, rmerrors.NewPropertyError(name, rmerrors.ErrMissingProperty)
	}
}
