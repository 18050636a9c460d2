package ctyconv

import (
	"reflect"
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// holder is the encapsulated Go type behind every opaque capsule. The
// engine never introspects the wrapped value; plugins cast it back.
type holder struct {
	v any
}

var (
	capsuleMu sync.Mutex
	capsules  = map[string]cty.Type{}
)

// OpaqueType returns the capsule type minted for the given alias name.
// Types are memoized process-wide so that values produced by one plugin
// compare equal in type to values checked elsewhere.
func OpaqueType(name string) cty.Type {
	capsuleMu.Lock()
	defer capsuleMu.Unlock()

	if t, ok := capsules[name]; ok {
		return t
	}
	t := cty.Capsule(name, reflect.TypeOf(holder{}))
	capsules[name] = t
	return t
}

// OpaqueVal wraps an arbitrary Go value as an opaque capsule value of the
// named alias type.
func OpaqueVal(name string, v any) cty.Value {
	return cty.CapsuleVal(OpaqueType(name), &holder{v: v})
}

// OpaqueName reports the alias name of a capsule type minted by this
// package, or false if the type is not one of ours.
func OpaqueName(t cty.Type) (string, bool) {
	if !t.IsCapsuleType() || t.EncapsulatedType() != reflect.TypeOf(holder{}) {
		return "", false
	}
	return t.FriendlyName(), true
}

// OpaqueValue unwraps the Go value inside an opaque capsule value.
func OpaqueValue(v cty.Value) (any, bool) {
	if _, ok := OpaqueName(v.Type()); !ok {
		return nil, false
	}
	h, ok := v.EncapsulatedValue().(*holder)
	if !ok {
		return nil, false
	}
	return h.v, true
}
