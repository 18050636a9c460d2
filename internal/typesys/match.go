package typesys

import (
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgrid/internal/ctyconv"
)

// Match reports whether a concrete runtime value satisfies a declared
// type. It is a pure predicate; use Explain for the mismatch reason.
func Match(t *Type, v cty.Value) bool {
	return Explain(t, v) == nil
}

// Explain checks a concrete runtime value against a declared type and
// returns nil on success or a *MismatchError describing the first
// structural incompatibility found.
func Explain(t *Type, v cty.Value) error {
	switch t.Kind {
	case KindPrimitive:
		return explainPrimitive(t, v)
	case KindAlias:
		name, ok := ctyconv.OpaqueName(v.Type())
		if !ok {
			return mismatchf(t, "got %s, want opaque %q value", describeValue(v), t.Name)
		}
		if name != t.Name {
			return mismatchf(t, "got opaque %q value", name)
		}
		return nil
	case KindList:
		return explainList(t, v)
	case KindMapping:
		return explainMapping(t, v)
	case KindTuple:
		return explainTuple(t, v)
	case KindUnion:
		// A union succeeds on the first matching branch, regardless of
		// branch order.
		var details []string
		for _, alt := range t.Alts {
			err := Explain(alt, v)
			if err == nil {
				return nil
			}
			details = append(details, err.Error())
		}
		return mismatchf(t, "no union alternative matched: %s", strings.Join(details, "; "))
	default:
		return mismatchf(t, "invalid declared type")
	}
}

func explainPrimitive(t *Type, v cty.Value) error {
	switch t.Prim {
	case Any:
		return nil
	case Null:
		if v.IsNull() {
			return nil
		}
		return mismatchf(t, "got %s, want null", describeValue(v))
	}
	if v.IsNull() {
		return mismatchf(t, "got null")
	}
	switch t.Prim {
	case Integer:
		if v.Type() != cty.Number {
			return mismatchf(t, "got %s", describeValue(v))
		}
		if !v.AsBigFloat().IsInt() {
			return mismatchf(t, "got non-integral number %s", v.AsBigFloat().Text('g', -1))
		}
		return nil
	case Number:
		// Widening only: integers satisfy number, never the reverse.
		if v.Type() != cty.Number {
			return mismatchf(t, "got %s", describeValue(v))
		}
		return nil
	case String, Path:
		if v.Type() != cty.String {
			return mismatchf(t, "got %s", describeValue(v))
		}
		return nil
	case Boolean:
		if v.Type() != cty.Bool {
			return mismatchf(t, "got %s", describeValue(v))
		}
		return nil
	default:
		return mismatchf(t, "unknown primitive")
	}
}

func explainList(t *Type, v cty.Value) error {
	if v.IsNull() {
		return mismatchf(t, "got null")
	}
	vt := v.Type()
	if !vt.IsTupleType() && !vt.IsListType() && !vt.IsSetType() {
		return mismatchf(t, "got %s", describeValue(v))
	}
	i := 0
	for it := v.ElementIterator(); it.Next(); i++ {
		_, ev := it.Element()
		if err := Explain(t.Elem, ev); err != nil {
			return mismatchf(t, "element %d: %s", i, err)
		}
	}
	return nil
}

func explainMapping(t *Type, v cty.Value) error {
	if v.IsNull() {
		return mismatchf(t, "got null")
	}
	vt := v.Type()
	if !vt.IsObjectType() && !vt.IsMapType() {
		return mismatchf(t, "got %s", describeValue(v))
	}
	for it := v.ElementIterator(); it.Next(); {
		kv, ev := it.Element()
		if err := Explain(t.Key, kv); err != nil {
			return mismatchf(t, "key %q: %s", kv.AsString(), err)
		}
		if err := Explain(t.Value, ev); err != nil {
			return mismatchf(t, "value at key %q: %s", kv.AsString(), err)
		}
	}
	return nil
}

func explainTuple(t *Type, v cty.Value) error {
	if v.IsNull() {
		return mismatchf(t, "got null")
	}
	vt := v.Type()
	if !vt.IsTupleType() && !vt.IsListType() {
		return mismatchf(t, "got %s", describeValue(v))
	}
	if v.LengthInt() != len(t.Elems) {
		return mismatchf(t, "got %d elements, want %d", v.LengthInt(), len(t.Elems))
	}
	i := 0
	for it := v.ElementIterator(); it.Next(); i++ {
		_, ev := it.Element()
		if err := Explain(t.Elems[i], ev); err != nil {
			return mismatchf(t, "position %d: %s", i, err)
		}
	}
	return nil
}

// describeValue renders a short human-readable description of a value's
// shape for mismatch messages.
func describeValue(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	return v.Type().FriendlyName()
}
