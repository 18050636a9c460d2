package graph

import (
	"context"
	"sort"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/ctyconv"
	"github.com/vk/taskgrid/internal/dag"
	"github.com/vk/taskgrid/internal/refs"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/schema"
	"github.com/vk/taskgrid/internal/typesys"
)

// Validate statically checks a whole graph definition. Errors are
// collected exhaustively so a caller can fix an entire definition in one
// edit/validate cycle; only an unresolvable type table aborts early, since
// nothing downstream can be checked without it.
func Validate(ctx context.Context, def *schema.Definition, reg *registry.Registry) (*ValidatedGraph, []error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Validation: resolving type table.", "types", len(def.Types))

	table, terrs := typesys.Resolve(def.Types)
	if len(terrs) > 0 {
		return nil, terrs
	}

	v := &validator{
		def:      def,
		reg:      reg,
		table:    table,
		params:   map[string]*Parameter{},
		steps:    map[string]*Step{},
		taskSigs: map[string]*taskSignature{},
		deps:     dag.New(),
	}

	v.checkNamespaces()
	v.resolveParameters()
	v.resolveTasks()
	v.buildSteps()
	v.linkSteps()
	ordered := v.sortSteps()

	if len(v.errs) > 0 {
		logger.Debug("Validation failed.", "errors", len(v.errs))
		return nil, v.errs
	}

	vg := &ValidatedGraph{
		Types:      table,
		Parameters: v.paramList,
		Steps:      ordered,
		deps:       v.deps,
		paramIndex: v.params,
		stepIndex:  v.steps,
	}
	logger.Debug("Validation succeeded.", "steps", len(vg.Steps))
	return vg, nil
}

// taskSignature is the cross-checked pairing of a task declaration with
// its backing plugin function.
type taskSignature struct {
	task       *schema.Task
	fn         *registry.Function
	inputTypes map[string]*typesys.Type
	outputs    []*Output
}

type validator struct {
	def   *schema.Definition
	reg   *registry.Registry
	table *typesys.Table

	params    map[string]*Parameter
	paramList []*Parameter
	steps     map[string]*Step
	taskSigs  map[string]*taskSignature
	deps      *dag.Graph
	errs      []error
}

func (v *validator) errf(err error) {
	v.errs = append(v.errs, err)
}

// checkNamespaces enforces that parameter and step names are disjoint, so
// every `$name` reference has exactly one possible target.
func (v *validator) checkNamespaces() {
	paramNames := map[string]bool{}
	for _, p := range v.def.Parameters {
		paramNames[p.Name] = true
	}
	for _, s := range v.def.Steps {
		if paramNames[s.Name] {
			v.errf(&AmbiguousReferenceError{Name: s.Name})
		}
	}
}

func (v *validator) resolveParameters() {
	for _, p := range v.def.Parameters {
		defVal, err := ctyconv.ToCty(p.Default)
		if err != nil {
			v.errf(mismatch("parameter "+p.Name, "unrepresentable default value: %v", err))
			continue
		}

		param := &Parameter{Name: p.Name, Default: defVal}
		if p.Type != "" {
			declared, err := v.table.ResolveString(p.Type)
			if err != nil {
				v.errf(err)
				continue
			}
			param.Type = declared
			if err := typesys.Explain(declared, defVal); err != nil {
				v.errf(mismatch("parameter "+p.Name, "default value: %v", err))
				continue
			}
		} else {
			param.Type = typesys.Infer(defVal)
		}

		v.params[p.Name] = param
		v.paramList = append(v.paramList, param)
	}
}

// resolveTasks resolves every task's backing plugin signature and
// cross-checks declared input/output types against it. Mismatches are
// collected, not immediately fatal.
func (v *validator) resolveTasks() {
	names := make([]string, 0, len(v.def.Tasks))
	for name := range v.def.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		task := v.def.Tasks[name]
		fn, err := v.reg.Lookup(task.Plugin)
		if err != nil {
			v.errf(err)
			continue
		}

		sig := &taskSignature{task: task, fn: fn, inputTypes: map[string]*typesys.Type{}}
		subject := "task " + name

		paramsByName := map[string]*registry.Param{}
		for _, p := range fn.Params {
			paramsByName[p.Name] = p
		}

		for _, in := range task.Inputs {
			declared, err := v.table.ResolveString(in.Type)
			if err != nil {
				v.errf(err)
				continue
			}
			sig.inputTypes[in.Name] = declared

			p, ok := paramsByName[in.Name]
			if !ok {
				v.errf(mismatch(subject, "input %q has no matching parameter in plugin %s", in.Name, task.Plugin))
				continue
			}
			paramType, err := v.table.ResolveString(p.Type)
			if err != nil {
				v.errf(&registry.SignatureAnalysisError{Subject: task.Plugin.String(), Err: err})
				continue
			}
			if !typesys.AssignableFrom(paramType, declared) {
				v.errf(mismatch(subject, "input %q declares %s but plugin parameter expects %s", in.Name, declared, paramType))
			}
		}

		declaredInputs := map[string]bool{}
		for _, in := range task.Inputs {
			declaredInputs[in.Name] = true
		}
		for _, p := range fn.Params {
			if p.Required && !p.HasDefault() && !declaredInputs[p.Name] {
				v.errf(mismatch(subject, "plugin parameter %q is required but not declared as a task input", p.Name))
			}
		}

		v.checkOutputs(subject, sig)
		v.taskSigs[name] = sig
	}
}

func (v *validator) checkOutputs(subject string, sig *taskSignature) {
	task, fn := sig.task, sig.fn

	if len(task.Outputs) != len(fn.Returns) {
		v.errf(mismatch(subject, "declares %d outputs but plugin %s returns %d values", len(task.Outputs), task.Plugin, len(fn.Returns)))
	}

	returnsByName := map[string]*registry.Return{}
	for _, ret := range fn.Returns {
		returnsByName[ret.Name] = ret
	}

	for _, out := range task.Outputs {
		declared, err := v.table.ResolveString(out.Type)
		if err != nil {
			v.errf(err)
			continue
		}
		sig.outputs = append(sig.outputs, &Output{Name: out.Name, Type: declared})

		// A single output pairs positionally; multiple outputs pair by name.
		var ret *registry.Return
		if len(task.Outputs) == 1 && len(fn.Returns) == 1 {
			ret = fn.Returns[0]
		} else if r, ok := returnsByName[out.Name]; ok {
			ret = r
		} else {
			v.errf(mismatch(subject, "output %q has no matching return in plugin %s", out.Name, task.Plugin))
			continue
		}
		retType, err := v.table.ResolveString(ret.Type)
		if err != nil {
			v.errf(&registry.SignatureAnalysisError{Subject: task.Plugin.String(), Err: err})
			continue
		}
		if !typesys.AssignableFrom(declared, retType) {
			v.errf(mismatch(subject, "output %q declares %s but plugin returns %s", out.Name, declared, retType))
		}
	}
}

// buildSteps creates a validated step record and a graph node per step,
// in declaration order, resolving each step's output slots.
func (v *validator) buildSteps() {
	for _, s := range v.def.Steps {
		v.deps.AddNode(s.Name)

		step := &Step{
			Name:       s.Name,
			Inputs:     s.Inputs,
			InputOrder: s.InputOrder,
			InputTypes: map[string]*typesys.Type{},
		}
		v.steps[s.Name] = step

		task, ok := v.def.Tasks[s.Task]
		if !ok {
			v.errf(&UnknownReferenceError{Step: s.Name, Ref: s.Task, Detail: "no such task is declared"})
			continue
		}
		step.Task = task

		sig, ok := v.taskSigs[s.Task]
		if !ok {
			// The task itself failed to resolve; its errors are already
			// collected.
			continue
		}
		step.Fn = sig.fn
		step.InputTypes = sig.inputTypes
		step.Outputs = sig.outputs
	}
}

// linkSteps parses bindings for references, builds dependency edges
// (inferred references unioned with explicit dependencies), and checks
// binding types against declared input types.
func (v *validator) linkSteps() {
	for _, s := range v.def.Steps {
		step := v.steps[s.Name]
		if step.Task == nil {
			continue
		}

		boundInputs := map[string]bool{}
		for _, inputName := range s.InputOrder {
			boundInputs[inputName] = true
			binding := s.Inputs[inputName]

			declared, ok := step.InputTypes[inputName]
			if !ok {
				v.errf(mismatch("step "+s.Name, "binds input %q which task %q does not declare", inputName, step.Task.Name))
				continue
			}

			resolvable := true
			for _, ref := range refs.References(binding) {
				if !v.linkReference(s.Name, ref) {
					resolvable = false
				}
			}
			if !resolvable || declared == nil {
				continue
			}

			if bt, ok := v.bindingType(binding); ok {
				if !typesys.AssignableFrom(declared, bt) {
					v.errf(mismatch("step "+s.Name, "input %q: cannot bind %s where %s is declared", inputName, bt, declared))
				}
			}
		}

		for _, in := range step.Task.Inputs {
			if in.Required && !boundInputs[in.Name] {
				v.errf(mismatch("step "+s.Name, "required input %q is not bound", in.Name))
			}
		}

		// Explicit extra dependencies are unioned with inferred edges.
		// Unlike the inferred edges, they must name existing steps.
		for _, depName := range s.Dependencies {
			if depName == s.Name {
				v.errf(&CyclicGraphError{Path: []string{s.Name, s.Name}})
				continue
			}
			if !v.deps.HasNode(depName) {
				v.errf(&UnknownReferenceError{Step: s.Name, Ref: depName, Detail: "explicit dependency names no declared step"})
				continue
			}
			if err := v.deps.AddEdge(depName, s.Name); err != nil {
				v.errf(err)
			}
		}
	}
}

// linkReference resolves one `$target` or `$target.field` reference and,
// for step targets, records the dependency edge. It reports whether the
// reference resolved.
func (v *validator) linkReference(stepName string, ref *refs.Reference) bool {
	if _, ok := v.params[ref.Target]; ok {
		if ref.Field != "" {
			v.errf(&UnknownReferenceError{Step: stepName, Ref: ref.Raw, Detail: "parameters have no addressable fields"})
			return false
		}
		return true
	}

	target, ok := v.steps[ref.Target]
	if !ok {
		v.errf(&UnknownReferenceError{Step: stepName, Ref: ref.Raw, Detail: "no such step or parameter"})
		return false
	}
	if ref.Target == stepName {
		v.errf(&CyclicGraphError{Path: []string{stepName, stepName}})
		return false
	}

	if _, ok := target.OutputType(ref.Field); !ok {
		detail := "step produces multiple named outputs; select one with $" + ref.Target + ".<output>"
		if ref.Field != "" {
			detail = "step has no output named " + ref.Field
		}
		v.errf(&UnknownReferenceError{Step: stepName, Ref: ref.Raw, Detail: detail})
		return false
	}

	if err := v.deps.AddEdge(ref.Target, stepName); err != nil {
		v.errf(err)
		return false
	}
	return true
}

// bindingType computes the static type of a binding tree: literals by
// inference, references by the declared type of their target.
func (v *validator) bindingType(n *refs.Node) (*typesys.Type, bool) {
	switch n.Kind {
	case refs.KindLiteral:
		return typesys.Infer(n.Literal), true
	case refs.KindRef:
		if param, ok := v.params[n.Ref.Target]; ok {
			return param.Type, param.Type != nil
		}
		if target, ok := v.steps[n.Ref.Target]; ok {
			t, ok := target.OutputType(n.Ref.Field)
			return t, ok
		}
		return nil, false
	case refs.KindList:
		elems := make([]*typesys.Type, 0, len(n.List))
		for _, elem := range n.List {
			et, ok := v.bindingType(elem)
			if !ok {
				return nil, false
			}
			elems = append(elems, et)
		}
		return &typesys.Type{Kind: typesys.KindTuple, Elems: elems}, true
	case refs.KindMap:
		// Mapping bindings type-check loosely; per-key checks happen at
		// resolution time when concrete values exist.
		return &typesys.Type{
			Kind:  typesys.KindMapping,
			Key:   &typesys.Type{Kind: typesys.KindPrimitive, Prim: typesys.String},
			Value: &typesys.Type{Kind: typesys.KindPrimitive, Prim: typesys.Any},
		}, true
	default:
		return nil, false
	}
}

// sortSteps computes the final topological execution order.
func (v *validator) sortSteps() []*Step {
	order, err := v.deps.TopoSort()
	if err != nil {
		if cyc, ok := err.(*dag.CycleError); ok {
			v.errf(&CyclicGraphError{Path: cyc.Path})
		} else {
			v.errf(err)
		}
		return nil
	}

	out := make([]*Step, 0, len(order))
	for _, name := range order {
		step := v.steps[name]
		if step == nil {
			continue
		}
		if deps, err := v.deps.Dependencies(name); err == nil {
			step.DependsOn = deps
		}
		out = append(out, step)
	}
	return out
}
