package typesys

// AssignableFrom reports whether a value of declared type src can be bound
// where dst is declared, without seeing a concrete value. This is what
// allows whole-graph validation before execution: a symbolic reference is
// checked against the referenced output's declared type.
//
// Rules: `any` is compatible in both directions; integer widens to number;
// aliases are nominal; containers are covariant element-wise; tuples
// require equal arity; a union source requires every alternative to be
// assignable, a union destination accepts a source assignable to any
// alternative.
func AssignableFrom(dst, src *Type) bool {
	if dst == nil || src == nil {
		return false
	}
	if dst.Kind == KindPrimitive && dst.Prim == Any {
		return true
	}
	if src.Kind == KindPrimitive && src.Prim == Any {
		return true
	}
	if src.Kind == KindUnion {
		for _, alt := range src.Alts {
			if !AssignableFrom(dst, alt) {
				return false
			}
		}
		return true
	}
	if dst.Kind == KindUnion {
		for _, alt := range dst.Alts {
			if AssignableFrom(alt, src) {
				return true
			}
		}
		return false
	}

	switch dst.Kind {
	case KindPrimitive:
		if src.Kind != KindPrimitive {
			return false
		}
		if dst.Prim == src.Prim {
			return true
		}
		// Numeric widening; path and string are interchangeable on the wire.
		if dst.Prim == Number && src.Prim == Integer {
			return true
		}
		if dst.Prim == Path && src.Prim == String {
			return true
		}
		if dst.Prim == String && src.Prim == Path {
			return true
		}
		return false
	case KindAlias:
		return src.Kind == KindAlias && src.Name == dst.Name
	case KindList:
		if src.Kind == KindList {
			return AssignableFrom(dst.Elem, src.Elem)
		}
		// A tuple is assignable to a list when every position fits the
		// element type; this is how inferred literal sequences bind to
		// declared list inputs.
		if src.Kind == KindTuple {
			for _, elem := range src.Elems {
				if !AssignableFrom(dst.Elem, elem) {
					return false
				}
			}
			return true
		}
		return false
	case KindMapping:
		return src.Kind == KindMapping &&
			AssignableFrom(dst.Key, src.Key) &&
			AssignableFrom(dst.Value, src.Value)
	case KindTuple:
		if src.Kind != KindTuple || len(src.Elems) != len(dst.Elems) {
			return false
		}
		for i := range dst.Elems {
			if !AssignableFrom(dst.Elems[i], src.Elems[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
