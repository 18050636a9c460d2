// Package typesys implements the engine's type registry and type
// validation: named type tables are resolved into a canonical structural
// form, and runtime values or declared types are checked against it.
package typesys

import (
	"fmt"
	"strings"
)

// Kind discriminates the closed set of canonical type shapes.
type Kind int

const (
	KindPrimitive Kind = iota
	KindAlias
	KindList
	KindMapping
	KindTuple
	KindUnion
)

// Primitive is a built-in kind tag.
type Primitive string

const (
	Integer Primitive = "integer"
	Number  Primitive = "number"
	String  Primitive = "string"
	Boolean Primitive = "boolean"
	Path    Primitive = "path"
	Any     Primitive = "any"
	Null    Primitive = "null"
)

// IsPrimitive reports whether s names a built-in primitive.
func IsPrimitive(s string) bool {
	switch Primitive(s) {
	case Integer, Number, String, Boolean, Path, Any, Null:
		return true
	}
	return false
}

// Type is the canonical, fully resolved representation of a type. Exactly
// the fields relevant to Kind are populated. Types are immutable once a
// table has been resolved.
type Type struct {
	Kind Kind

	// Prim is set for KindPrimitive.
	Prim Primitive
	// Name is set for KindAlias: the nominal alias name.
	Name string
	// Elem is set for KindList.
	Elem *Type
	// Key and Value are set for KindMapping.
	Key   *Type
	Value *Type
	// Elems is set for KindTuple, one entry per position.
	Elems []*Type
	// Alts is set for KindUnion, one entry per alternative.
	Alts []*Type
}

// String renders the type in the declaration syntax, e.g. "list<string>".
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindPrimitive:
		return string(t.Prim)
	case KindAlias:
		return t.Name
	case KindList:
		return fmt.Sprintf("list<%s>", t.Elem)
	case KindMapping:
		return fmt.Sprintf("mapping<%s,%s>", t.Key, t.Value)
	case KindTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindUnion:
		parts := make([]string, len(t.Alts))
		for i, a := range t.Alts {
			parts[i] = a.String()
		}
		return strings.Join(parts, "|")
	default:
		return "<invalid>"
	}
}

// Decl is the raw, source-level form of a type declaration, produced by
// the document parser before resolution. Exactly one field is set.
type Decl struct {
	// Named references a primitive or another declared type by name.
	Named string
	// Alias marks an opaque alias declaration (a null body in the source).
	Alias bool
	// List declares list<T> with the given element declaration.
	List *Decl
	// Mapping declares mapping<K,V>.
	Mapping *MappingDecl
	// Tuple declares a fixed-arity tuple.
	Tuple []*Decl
	// Union declares a set of alternatives.
	Union []*Decl
}

// MappingDecl is the key/value pair of a mapping declaration.
type MappingDecl struct {
	Key   *Decl
	Value *Decl
}
