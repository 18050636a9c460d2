package typesys

import (
	"fmt"
	"strings"
)

// maxNestingDepth bounds recursion in ParseString against pathological
// input like "list<list<list<...".
const maxNestingDepth = 16

// ParseString parses the compact type syntax used wherever a type is
// written as a string: plugin signatures and task input/output
// declarations. Supported forms:
//
//	integer, number, string, boolean, path, any, null
//	someName                  (reference to a declared type)
//	list<T>
//	mapping<K,V>
//	tuple<T1,T2,...>
//	T1|T2|...                 (union)
//
// The result is a raw declaration; names are resolved against a Table
// later.
func ParseString(s string) (*Decl, error) {
	return parseString(s, 0)
}

func parseString(s string, depth int) (*Decl, error) {
	if depth > maxNestingDepth {
		return nil, fmt.Errorf("type nesting too deep (max %d): %q", maxNestingDepth, s)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty type")
	}

	if alts := splitTop(s, '|'); len(alts) > 1 {
		decls := make([]*Decl, 0, len(alts))
		for _, alt := range alts {
			d, err := parseString(alt, depth+1)
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
		}
		return &Decl{Union: decls}, nil
	}

	if ctor, args, ok := splitConstructor(s); ok {
		parts := splitTop(args, ',')
		decls := make([]*Decl, 0, len(parts))
		for _, part := range parts {
			d, err := parseString(part, depth+1)
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
		}
		switch ctor {
		case "list":
			if len(decls) != 1 {
				return nil, fmt.Errorf("list takes exactly one type argument: %q", s)
			}
			return &Decl{List: decls[0]}, nil
		case "mapping":
			if len(decls) != 2 {
				return nil, fmt.Errorf("mapping takes exactly two type arguments: %q", s)
			}
			return &Decl{Mapping: &MappingDecl{Key: decls[0], Value: decls[1]}}, nil
		case "tuple":
			if len(decls) == 0 {
				return nil, fmt.Errorf("tuple requires at least one type argument: %q", s)
			}
			return &Decl{Tuple: decls}, nil
		default:
			return nil, fmt.Errorf("unknown type constructor %q", ctor)
		}
	}

	if strings.ContainsAny(s, "<>,|") {
		return nil, fmt.Errorf("malformed type %q", s)
	}
	return &Decl{Named: s}, nil
}

// splitConstructor splits "ctor<args>" into its parts.
func splitConstructor(s string) (ctor, args string, ok bool) {
	open := strings.IndexByte(s, '<')
	if open <= 0 || !strings.HasSuffix(s, ">") {
		return "", "", false
	}
	return s[:open], s[open+1 : len(s)-1], true
}

// splitTop splits on sep at angle-bracket nesting depth zero.
func splitTop(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

// ResolveDecl resolves a raw declaration against an already-resolved
// table. Unlike Resolve, this runs after table resolution, so cyclic
// references cannot occur; only unknown names can fail.
func (t *Table) ResolveDecl(decl *Decl) (*Type, error) {
	switch {
	case decl == nil:
		return nil, fmt.Errorf("nil type declaration")
	case decl.Named != "":
		return t.ResolveRef(decl.Named)
	case decl.List != nil:
		elem, err := t.ResolveDecl(decl.List)
		if err != nil {
			return nil, err
		}
		return &Type{Kind: KindList, Elem: elem}, nil
	case decl.Mapping != nil:
		key, err := t.ResolveDecl(decl.Mapping.Key)
		if err != nil {
			return nil, err
		}
		value, err := t.ResolveDecl(decl.Mapping.Value)
		if err != nil {
			return nil, err
		}
		return &Type{Kind: KindMapping, Key: key, Value: value}, nil
	case len(decl.Tuple) > 0:
		elems := make([]*Type, 0, len(decl.Tuple))
		for _, ed := range decl.Tuple {
			et, err := t.ResolveDecl(ed)
			if err != nil {
				return nil, err
			}
			elems = append(elems, et)
		}
		return &Type{Kind: KindTuple, Elems: elems}, nil
	case len(decl.Union) > 0:
		alts := make([]*Type, 0, len(decl.Union))
		for _, ad := range decl.Union {
			at, err := t.ResolveDecl(ad)
			if err != nil {
				return nil, err
			}
			alts = append(alts, at)
		}
		return &Type{Kind: KindUnion, Alts: alts}, nil
	default:
		return nil, fmt.Errorf("empty type declaration")
	}
}

// ResolveString parses and resolves a compact type string in one call.
func (t *Table) ResolveString(s string) (*Type, error) {
	decl, err := ParseString(s)
	if err != nil {
		return nil, err
	}
	return t.ResolveDecl(decl)
}
