package typesys

import (
	"fmt"
	"slices"
	"sort"
)

// Table is an immutable snapshot of resolved named types for one
// validation/execution pass.
type Table struct {
	names map[string]*Type
}

// Lookup returns the resolved type for a declared name.
func (t *Table) Lookup(name string) (*Type, bool) {
	typ, ok := t.names[name]
	return typ, ok
}

// Names returns all declared type names in sorted order.
func (t *Table) Names() []string {
	out := make([]string, 0, len(t.names))
	for name := range t.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// resolver tracks one resolution pass over a declaration table.
type resolver struct {
	decls map[string]*Decl
	memo  map[string]*Type
	stack []string
}

// Resolve expands a table of raw declarations into canonical types,
// memoizing already-resolved names. Errors are collected per declaration;
// any error is terminal for the whole table and no partial registry is
// returned.
func Resolve(decls map[string]*Decl) (*Table, []error) {
	r := &resolver{
		decls: decls,
		memo:  make(map[string]*Type, len(decls)),
	}

	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if _, err := r.resolveName(name); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return &Table{names: r.memo}, nil
}

// ResolveRef resolves a single type name against an already-resolved
// table: primitives resolve directly, anything else must be declared.
func (t *Table) ResolveRef(name string) (*Type, error) {
	if IsPrimitive(name) {
		return &Type{Kind: KindPrimitive, Prim: Primitive(name)}, nil
	}
	typ, ok := t.Lookup(name)
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}
	return typ, nil
}

func (r *resolver) resolveName(name string) (*Type, error) {
	if IsPrimitive(name) {
		return &Type{Kind: KindPrimitive, Prim: Primitive(name)}, nil
	}
	if typ, ok := r.memo[name]; ok {
		return typ, nil
	}
	if slices.Contains(r.stack, name) {
		return nil, &CyclicTypeError{Chain: append(slices.Clone(r.stack), name)}
	}
	decl, ok := r.decls[name]
	if !ok {
		referrer := ""
		if len(r.stack) > 0 {
			referrer = r.stack[len(r.stack)-1]
		}
		return nil, &UnknownTypeError{Name: name, Referrer: referrer}
	}

	r.stack = append(r.stack, name)
	typ, err := r.resolveDecl(name, decl)
	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		return nil, err
	}
	r.memo[name] = typ
	return typ, nil
}

func (r *resolver) resolveDecl(name string, decl *Decl) (*Type, error) {
	switch {
	case decl.Alias:
		return &Type{Kind: KindAlias, Name: name}, nil
	case decl.Named != "":
		return r.resolveName(decl.Named)
	case decl.List != nil:
		elem, err := r.resolveDecl(name, decl.List)
		if err != nil {
			return nil, err
		}
		return &Type{Kind: KindList, Elem: elem}, nil
	case decl.Mapping != nil:
		key, err := r.resolveDecl(name, decl.Mapping.Key)
		if err != nil {
			return nil, err
		}
		value, err := r.resolveDecl(name, decl.Mapping.Value)
		if err != nil {
			return nil, err
		}
		return &Type{Kind: KindMapping, Key: key, Value: value}, nil
	case len(decl.Tuple) > 0:
		elems := make([]*Type, 0, len(decl.Tuple))
		for _, ed := range decl.Tuple {
			et, err := r.resolveDecl(name, ed)
			if err != nil {
				return nil, err
			}
			elems = append(elems, et)
		}
		return &Type{Kind: KindTuple, Elems: elems}, nil
	case len(decl.Union) > 0:
		alts := make([]*Type, 0, len(decl.Union))
		for _, ad := range decl.Union {
			at, err := r.resolveDecl(name, ad)
			if err != nil {
				return nil, err
			}
			alts = append(alts, at)
		}
		return &Type{Kind: KindUnion, Alts: alts}, nil
	default:
		return nil, fmt.Errorf("type %q: empty declaration", name)
	}
}
