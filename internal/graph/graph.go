// Package graph statically validates a whole graph definition against the
// type registry and the plugin registry, producing a topologically
// ordered, type-checked ValidatedGraph ready for execution.
package graph

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgrid/internal/dag"
	"github.com/vk/taskgrid/internal/refs"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/schema"
	"github.com/vk/taskgrid/internal/typesys"
)

// Parameter is a resolved top-level parameter: declared (or inferred)
// type plus the default value from the definition.
type Parameter struct {
	Name    string
	Type    *typesys.Type
	Default cty.Value
}

// Output is one resolved output slot of a step. Name is empty for a
// single implicit result.
type Output struct {
	Name string
	Type *typesys.Type
}

// Step is a validated graph node: the task it invokes, its resolved
// plugin signature, parsed input bindings, and the union of inferred and
// explicit dependency edges.
type Step struct {
	Name string
	Task *schema.Task
	Fn   *registry.Function
	// Inputs maps input names to binding trees; InputOrder preserves the
	// source declaration order.
	Inputs     map[string]*refs.Node
	InputOrder []string
	// InputTypes are the resolved declared types of the task's inputs.
	InputTypes map[string]*typesys.Type
	Outputs    []*Output
	// DependsOn is the sorted set of upstream step names this step waits
	// for, inferred references unioned with explicit dependencies.
	DependsOn []string
}

// OutputType returns the declared type behind a `$step` or `$step.field`
// reference against this step.
func (s *Step) OutputType(field string) (*typesys.Type, bool) {
	if field == "" {
		if len(s.Outputs) == 1 && s.Outputs[0].Name == "" {
			return s.Outputs[0].Type, true
		}
		return nil, false
	}
	for _, out := range s.Outputs {
		if out.Name == field {
			return out.Type, true
		}
	}
	return nil, false
}

// ValidatedGraph is the output of static validation: the resolved type
// table, resolved parameters, and steps in topological execution order.
type ValidatedGraph struct {
	Types      *typesys.Table
	Parameters []*Parameter
	// Steps are ordered topologically; ties follow declaration order.
	Steps []*Step

	deps       *dag.Graph
	paramIndex map[string]*Parameter
	stepIndex  map[string]*Step
}

// Parameter looks up a resolved parameter by name.
func (g *ValidatedGraph) Parameter(name string) (*Parameter, bool) {
	p, ok := g.paramIndex[name]
	return p, ok
}

// Step looks up a validated step by name.
func (g *ValidatedGraph) Step(name string) (*Step, bool) {
	s, ok := g.stepIndex[name]
	return s, ok
}

// Dependents returns the steps directly depending on the given step.
func (g *ValidatedGraph) Dependents(name string) []string {
	out, err := g.deps.Dependents(name)
	if err != nil {
		return nil
	}
	return out
}

// TransitiveDependents returns every step downstream of the given step.
func (g *ValidatedGraph) TransitiveDependents(name string) []string {
	out, err := g.deps.TransitiveDependents(name)
	if err != nil {
		return nil
	}
	return out
}
