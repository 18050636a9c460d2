package typesys

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgrid/internal/ctyconv"
)

// Infer derives the declared-type equivalent of a concrete literal value.
// Integral numbers infer as integer (which widens to number where
// declared); heterogeneous containers fall back to element type any.
func Infer(v cty.Value) *Type {
	if v.IsNull() {
		return &Type{Kind: KindPrimitive, Prim: Null}
	}
	t := v.Type()
	switch {
	case t == cty.Bool:
		return &Type{Kind: KindPrimitive, Prim: Boolean}
	case t == cty.Number:
		if v.AsBigFloat().IsInt() {
			return &Type{Kind: KindPrimitive, Prim: Integer}
		}
		return &Type{Kind: KindPrimitive, Prim: Number}
	case t == cty.String:
		return &Type{Kind: KindPrimitive, Prim: String}
	case t.IsTupleType() || t.IsListType() || t.IsSetType():
		var elems []*Type
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			elems = append(elems, Infer(ev))
		}
		return &Type{Kind: KindTuple, Elems: elems}
	case t.IsObjectType() || t.IsMapType():
		value := unify(valuesOf(v))
		return &Type{
			Kind:  KindMapping,
			Key:   &Type{Kind: KindPrimitive, Prim: String},
			Value: value,
		}
	default:
		if name, ok := ctyconv.OpaqueName(t); ok {
			return &Type{Kind: KindAlias, Name: name}
		}
		return &Type{Kind: KindPrimitive, Prim: Any}
	}
}

func valuesOf(v cty.Value) []*Type {
	var out []*Type
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		out = append(out, Infer(ev))
	}
	return out
}

// unify collapses a set of element types to a single type: the common
// type when all agree, otherwise any.
func unify(types []*Type) *Type {
	if len(types) == 0 {
		return &Type{Kind: KindPrimitive, Prim: Any}
	}
	first := types[0]
	for _, t := range types[1:] {
		if !AssignableFrom(first, t) || !AssignableFrom(t, first) {
			return &Type{Kind: KindPrimitive, Prim: Any}
		}
	}
	return first
}
