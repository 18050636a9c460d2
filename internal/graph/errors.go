package graph

import (
	"fmt"
	"strings"
)

// UnknownReferenceError reports a reference to a step, parameter, task or
// output that does not exist.
type UnknownReferenceError struct {
	Step   string
	Ref    string
	Detail string
}

func (e *UnknownReferenceError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("step %q: unknown reference %q: %s", e.Step, e.Ref, e.Detail)
	}
	return fmt.Sprintf("unknown reference %q: %s", e.Ref, e.Detail)
}

// AmbiguousReferenceError reports a name occupied by both a parameter and
// a step, which makes `$name` references unresolvable.
type AmbiguousReferenceError struct {
	Name string
}

func (e *AmbiguousReferenceError) Error() string {
	return fmt.Sprintf("name %q is declared as both a parameter and a step; reference targets must be unambiguous", e.Name)
}

// CyclicGraphError reports that the step dependency graph contains a
// cycle, naming the steps along one witness cycle.
type CyclicGraphError struct {
	Path []string
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("cyclic step dependency: %s", strings.Join(e.Path, " -> "))
}

// TypeMismatchError reports a declared type that is incompatible with the
// plugin signature or with the value/reference bound to it.
type TypeMismatchError struct {
	Subject string
	Detail  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch in %s: %s", e.Subject, e.Detail)
}

func mismatch(subject, format string, args ...any) error {
	return &TypeMismatchError{Subject: subject, Detail: fmt.Sprintf(format, args...)}
}
