package typesys

import (
	"fmt"
	"strings"
)

// UnknownTypeError reports a reference to a type name that is neither a
// primitive nor declared in the table.
type UnknownTypeError struct {
	Name     string
	Referrer string
}

func (e *UnknownTypeError) Error() string {
	if e.Referrer != "" {
		return fmt.Sprintf("unknown type %q referenced by %q", e.Name, e.Referrer)
	}
	return fmt.Sprintf("unknown type %q", e.Name)
}

// CyclicTypeError reports a declaration chain that revisits a name already
// being resolved.
type CyclicTypeError struct {
	Chain []string
}

func (e *CyclicTypeError) Error() string {
	return fmt.Sprintf("cyclic type definition: %s", strings.Join(e.Chain, " -> "))
}

// MismatchError describes why a value (or a declared source type) does not
// satisfy a declared type.
type MismatchError struct {
	Declared *Type
	Detail   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("value does not satisfy type %s: %s", e.Declared, e.Detail)
}

func mismatchf(declared *Type, format string, args ...any) error {
	return &MismatchError{Declared: declared, Detail: fmt.Sprintf(format, args...)}
}
