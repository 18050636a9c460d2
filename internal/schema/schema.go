// Package schema defines the graph-definition document model and its YAML
// decoding. The loosely-typed YAML representation is parsed eagerly into
// the record types below and never escapes this package.
package schema

import (
	"fmt"
	"strings"

	"github.com/vk/taskgrid/internal/refs"
	"github.com/vk/taskgrid/internal/typesys"
)

// Definition is a fully parsed graph-definition document.
type Definition struct {
	// Types maps declared type names to their raw declarations.
	Types map[string]*typesys.Decl
	// Parameters are the top-level parameters in declaration order.
	Parameters []*Parameter
	// Tasks maps task names to their declarations.
	Tasks map[string]*Task
	// Steps are the graph steps in declaration order. Declaration order is
	// the tie-break for topological ordering, so it must be preserved.
	Steps []*Step
}

// Parameter is a named, typed, top-level value with a default.
type Parameter struct {
	Name string
	// Type names the declared type, or is empty when the type is to be
	// inferred from the default value.
	Type    string
	Default any
}

// PluginRef addresses a plugin function as collection.plugin.function.
type PluginRef struct {
	Collection string
	Plugin     string
	Function   string
}

func (r PluginRef) String() string {
	return fmt.Sprintf("%s.%s.%s", r.Collection, r.Plugin, r.Function)
}

// ParsePluginRef splits a dotted plugin reference into its three parts.
func ParsePluginRef(s string) (PluginRef, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return PluginRef{}, fmt.Errorf("plugin reference %q must have the form collection.plugin.function", s)
	}
	return PluginRef{Collection: parts[0], Plugin: parts[1], Function: parts[2]}, nil
}

// Task is a named, typed wrapper around a plugin function.
type Task struct {
	Name    string
	Plugin  PluginRef
	Inputs  []*TaskInput
	Outputs []*TaskOutput
}

// TaskInput declares one input parameter of a task.
type TaskInput struct {
	Name     string
	Type     string
	Required bool
}

// TaskOutput declares one output of a task. A task with a single output
// whose Name is empty produces one implicit result value; multiple
// outputs are addressed by name.
type TaskOutput struct {
	Name string
	Type string
}

// Step is one invocation site of a task within the graph, with bound
// inputs and optional extra dependency edges.
type Step struct {
	Name string
	Task string
	// Inputs maps input names to parsed binding trees.
	Inputs map[string]*refs.Node
	// InputOrder preserves the binding declaration order for stable
	// diagnostics.
	InputOrder []string
	// Dependencies lists explicitly declared extra dependency step names.
	Dependencies []string
}
