// Package refs parses input-binding values into trees of literals and
// `$`-prefixed reference expressions. Both the static validator and the
// executor resolve bindings through this package.
package refs

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgrid/internal/ctyconv"
)

// Sigil prefixes every reference expression.
const Sigil = "$"

// refPattern matches `$name` and `$name.field`.
var refPattern = regexp.MustCompile(`^\$([A-Za-z_][A-Za-z0-9_]*)(?:\.([A-Za-z_][A-Za-z0-9_]*))?$`)

// NodeKind discriminates the binding tree node variants.
type NodeKind int

const (
	KindLiteral NodeKind = iota
	KindRef
	KindList
	KindMap
)

// Node is one element of a parsed binding tree.
type Node struct {
	Kind NodeKind

	// Literal is set for KindLiteral.
	Literal cty.Value
	// Ref is set for KindRef.
	Ref *Reference
	// List is set for KindList, preserving source order.
	List []*Node
	// Map is set for KindMap.
	Map map[string]*Node
}

// Reference is a parsed `$target` or `$target.field` expression. Whether
// the target names a global parameter or a step is decided later, once
// both namespaces are known.
type Reference struct {
	Target string
	Field  string
	Raw    string
}

func (r *Reference) String() string { return r.Raw }

// Parse converts a raw decoded binding value into a binding tree. Strings
// prefixed with the sigil become references; `$$` escapes a literal
// dollar; lists and mappings are parsed element-wise, recursively.
func Parse(raw any) (*Node, error) {
	switch val := raw.(type) {
	case string:
		return parseString(val)
	case []any:
		items := make([]*Node, 0, len(val))
		for i, elem := range val {
			n, err := Parse(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			items = append(items, n)
		}
		return &Node{Kind: KindList, List: items}, nil
	case map[string]any:
		items := make(map[string]*Node, len(val))
		for k, elem := range val {
			n, err := Parse(elem)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			items[k] = n
		}
		return &Node{Kind: KindMap, Map: items}, nil
	default:
		lit, err := ctyconv.ToCty(raw)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindLiteral, Literal: lit}, nil
	}
}

func parseString(s string) (*Node, error) {
	if strings.HasPrefix(s, Sigil+Sigil) {
		return &Node{Kind: KindLiteral, Literal: cty.StringVal(s[1:])}, nil
	}
	if !strings.HasPrefix(s, Sigil) {
		return &Node{Kind: KindLiteral, Literal: cty.StringVal(s)}, nil
	}
	m := refPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("malformed reference expression %q", s)
	}
	return &Node{
		Kind: KindRef,
		Ref:  &Reference{Target: m[1], Field: m[2], Raw: s},
	}, nil
}

// References collects every reference in a binding tree, in a
// deterministic order (source order for lists, sorted keys for maps).
func References(n *Node) []*Reference {
	var out []*Reference
	collect(n, &out)
	return out
}

func collect(n *Node, out *[]*Reference) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindRef:
		*out = append(*out, n.Ref)
	case KindList:
		for _, elem := range n.List {
			collect(elem, out)
		}
	case KindMap:
		keys := make([]string, 0, len(n.Map))
		for k := range n.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collect(n.Map[k], out)
		}
	}
}

// Resolve materializes a binding tree into a concrete value. The lookup
// callback supplies the value behind each reference.
func Resolve(n *Node, lookup func(*Reference) (cty.Value, error)) (cty.Value, error) {
	switch n.Kind {
	case KindLiteral:
		return n.Literal, nil
	case KindRef:
		return lookup(n.Ref)
	case KindList:
		if len(n.List) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(n.List))
		for i, elem := range n.List {
			v, err := Resolve(elem, lookup)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems = append(elems, v)
		}
		return cty.TupleVal(elems), nil
	case KindMap:
		if len(n.Map) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(n.Map))
		for k, elem := range n.Map {
			v, err := Resolve(elem, lookup)
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", k, err)
			}
			attrs[k] = v
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("invalid binding node")
	}
}
