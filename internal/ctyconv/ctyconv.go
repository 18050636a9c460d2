// Package ctyconv converts between native Go values (as produced by YAML
// decoding and plugin handlers) and cty values, which are the engine's
// runtime value representation.
package ctyconv

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// ToCty converts a native Go value into its cty equivalent.
//
// Sequences become tuple values rather than list values because YAML
// sequences may mix element types; mappings with string keys become object
// values. A cty.Value passes through unchanged.
func ToCty(v any) (cty.Value, error) {
	switch val := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return val, nil
	case bool:
		return cty.BoolVal(val), nil
	case int:
		return cty.NumberIntVal(int64(val)), nil
	case int64:
		return cty.NumberIntVal(val), nil
	case uint64:
		return cty.NumberUIntVal(val), nil
	case float64:
		return cty.NumberFloatVal(val), nil
	case *big.Float:
		return cty.NumberVal(val), nil
	case string:
		return cty.StringVal(val), nil
	case []any:
		if len(val) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(val))
		for i, elem := range val {
			ev, err := ToCty(elem)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems = append(elems, ev)
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		if len(val) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(val))
		for k, elem := range val {
			ev, err := ToCty(elem)
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", k, err)
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("cannot represent Go value of type %T", v)
	}
}

// FromCty converts a cty value back into a plain Go value, primarily for
// logging and result rendering. Integral numbers come back as int64.
func FromCty(v cty.Value) any {
	if v.IsNull() {
		return nil
	}
	t := v.Type()
	switch {
	case t == cty.Bool:
		return v.True()
	case t == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			i, _ := bf.Int64()
			return i
		}
		f, _ := bf.Float64()
		return f
	case t == cty.String:
		return v.AsString()
	case t.IsTupleType() || t.IsListType() || t.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, FromCty(ev))
		}
		return out
	case t.IsObjectType() || t.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			out[kv.AsString()] = FromCty(ev)
		}
		return out
	case t.IsCapsuleType():
		if name, ok := OpaqueName(t); ok {
			return fmt.Sprintf("<%s>", name)
		}
		return fmt.Sprintf("<%s>", t.FriendlyName())
	default:
		return v.GoString()
	}
}

// SortedKeys returns the keys of an object or map value in sorted order.
// Used wherever deterministic iteration over attribute names is needed.
func SortedKeys(v cty.Value) []string {
	keys := make([]string, 0, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		kv, _ := it.Element()
		keys = append(keys, kv.AsString())
	}
	sort.Strings(keys)
	return keys
}
