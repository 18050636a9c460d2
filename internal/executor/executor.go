// Package executor runs a validated graph serially in topological order,
// resolving reference bindings against parameter values and upstream step
// results, and invoking plugin handlers through the registry.
package executor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/ctyconv"
	"github.com/vk/taskgrid/internal/graph"
	"github.com/vk/taskgrid/internal/refs"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/typesys"
)

// Executor drives one validated graph. It is stateless across runs; each
// Execute call produces a fresh Result.
type Executor struct {
	graph *graph.ValidatedGraph
	reg   *registry.Registry
}

// New creates an executor for a validated graph.
func New(g *graph.ValidatedGraph, reg *registry.Registry) *Executor {
	return &Executor{graph: g, reg: reg}
}

// Execute runs every step of the graph in topological order. Overrides
// replace parameter defaults for this run and are checked against the
// declared parameter types before any step starts; a bad override is a
// submission error and aborts the run. Step failures never abort: the
// failing step is recorded, its dependents are skipped, and the walk
// continues with independent steps.
func (e *Executor) Execute(ctx context.Context, overrides map[string]any) (*Result, error) {
	params, err := e.resolveParameters(overrides)
	if err != nil {
		return nil, err
	}

	log := ctxlog.FromContext(ctx)
	res := &Result{
		RunID: uuid.NewString(),
		Steps: make(map[string]*StepResult, len(e.graph.Steps)),
	}
	log.Info("▶️ Starting graph run", "run_id", res.RunID, "steps", len(e.graph.Steps))

	for _, step := range e.graph.Steps {
		res.Order = append(res.Order, step.Name)

		if sr, ok := res.Steps[step.Name]; ok && sr.Status == StepSkipped {
			log.Warn("Skipping step", "step", step.Name, "reason", sr.Err)
			continue
		}
		if dep, ok := e.blockedOn(res, step); ok {
			res.Steps[step.Name] = &StepResult{
				Status: StepSkipped,
				Err:    &SkippedError{Step: step.Name, Dependency: dep},
			}
			log.Warn("Skipping step", "step", step.Name, "dependency", dep)
			continue
		}

		res.Steps[step.Name] = &StepResult{Status: StepReady}
		log.Debug("Step ready", "step", step.Name)
		res.Steps[step.Name].Status = StepRunning

		sr := e.runStep(ctx, step, params, res)
		res.Steps[step.Name] = sr
		if sr.Status == StepFailed {
			log.Error("❌ Step failed", "step", step.Name, "error", sr.Err)
			if res.FirstFailed == "" {
				res.FirstFailed = step.Name
			}
			e.markDependentsSkipped(res, step.Name)
			continue
		}
		log.Info("✅ Step finished", "step", step.Name)
	}

	res.computeStatus()
	log.Info("Graph run finished", "run_id", res.RunID, "status", res.Status)
	return res, nil
}

// resolveParameters merges run overrides over the declared defaults and
// type-checks every override before execution starts.
func (e *Executor) resolveParameters(overrides map[string]any) (map[string]cty.Value, error) {
	params := make(map[string]cty.Value, len(e.graph.Parameters))
	for _, p := range e.graph.Parameters {
		params[p.Name] = p.Default
	}
	for name, raw := range overrides {
		p, ok := e.graph.Parameter(name)
		if !ok {
			return nil, &ParameterTypeError{Name: name, Detail: "no such parameter"}
		}
		v, err := ctyconv.ToCty(raw)
		if err != nil {
			return nil, &ParameterTypeError{Name: name, Detail: err.Error()}
		}
		if err := typesys.Explain(p.Type, v); err != nil {
			return nil, &ParameterTypeError{
				Name:   name,
				Detail: fmt.Sprintf("does not match declared type %s: %v", p.Type, err),
			}
		}
		params[name] = v
	}
	return params, nil
}

// blockedOn reports the first dependency of the step that did not
// succeed, in the sorted dependency order.
func (e *Executor) blockedOn(res *Result, step *graph.Step) (string, bool) {
	for _, dep := range step.DependsOn {
		sr, ok := res.Steps[dep]
		if !ok || sr.Status != StepSucceeded {
			return dep, true
		}
	}
	return "", false
}

// markDependentsSkipped pre-marks every downstream step of a failed step
// so later visits attribute the skip to the original failure.
func (e *Executor) markDependentsSkipped(res *Result, failed string) {
	for _, name := range e.graph.TransitiveDependents(failed) {
		if sr, ok := res.Steps[name]; ok && sr.Status.Terminal() {
			continue
		}
		res.Steps[name] = &StepResult{
			Status: StepSkipped,
			Err:    &SkippedError{Step: name, Dependency: failed},
		}
	}
}

// runStep resolves the step's inputs, invokes the plugin handler, and
// splits the returned value across the declared outputs. All failure
// modes collapse into a failed StepResult.
func (e *Executor) runStep(ctx context.Context, step *graph.Step, params map[string]cty.Value, res *Result) *StepResult {
	args, err := e.resolveArgs(step, params, res)
	if err != nil {
		return &StepResult{Status: StepFailed, Err: &StepExecutionError{Step: step.Name, Err: err}}
	}

	ret, err := e.invoke(ctx, step, args)
	if err != nil {
		return &StepResult{Status: StepFailed, Err: &StepExecutionError{Step: step.Name, Err: err}}
	}

	sr := &StepResult{Status: StepSucceeded, Value: ret}
	if err := splitOutputs(step, ret, sr); err != nil {
		return &StepResult{Status: StepFailed, Err: &StepExecutionError{Step: step.Name, Err: err}}
	}
	return sr
}

// resolveArgs materializes the step's bindings into concrete argument
// values, then fills unbound optional plugin parameters from their
// declared defaults.
func (e *Executor) resolveArgs(step *graph.Step, params map[string]cty.Value, res *Result) (map[string]cty.Value, error) {
	args := make(map[string]cty.Value, len(step.Inputs))
	for _, name := range step.InputOrder {
		v, err := refs.Resolve(step.Inputs[name], func(ref *refs.Reference) (cty.Value, error) {
			return e.lookup(ref, params, res)
		})
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}
		args[name] = v
	}
	for _, p := range step.Fn.Params {
		if _, bound := args[p.Name]; !bound && p.HasDefault() {
			args[p.Name] = p.Default
		}
	}
	return args, nil
}

// lookup resolves one `$name` or `$name.field` reference against the
// parameter values and finished step results of the current run.
func (e *Executor) lookup(ref *refs.Reference, params map[string]cty.Value, res *Result) (cty.Value, error) {
	if v, ok := params[ref.Target]; ok {
		return v, nil
	}
	if v, ok := res.Output(ref.Target, ref.Field); ok {
		return v, nil
	}
	return cty.NilVal, fmt.Errorf("reference %s: target value unavailable", ref)
}

// invoke calls the plugin handler, converting a panic into a plain error
// so a misbehaving handler stays contained to its step.
func (e *Executor) invoke(ctx context.Context, step *graph.Step, args map[string]cty.Value) (ret cty.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return e.reg.Invoke(ctx, step.Fn, args)
}

// splitOutputs distributes a handler's return value across the step's
// declared named outputs. Aggregates arrive either as an object keyed by
// output name or as a tuple in declaration order.
func splitOutputs(step *graph.Step, ret cty.Value, sr *StepResult) error {
	named := make([]*graph.Output, 0, len(step.Outputs))
	for _, out := range step.Outputs {
		if out.Name != "" {
			named = append(named, out)
		}
	}
	if len(named) == 0 {
		return nil
	}

	sr.Outputs = make(map[string]cty.Value, len(named))
	if len(named) == 1 && len(step.Outputs) == 1 {
		sr.Outputs[named[0].Name] = ret
		return nil
	}

	ty := ret.Type()
	switch {
	case ty.IsObjectType():
		for _, out := range named {
			if !ty.HasAttribute(out.Name) {
				return fmt.Errorf("result object is missing output %q", out.Name)
			}
			sr.Outputs[out.Name] = ret.GetAttr(out.Name)
		}
	case ty.IsTupleType():
		if ret.LengthInt() != len(named) {
			return fmt.Errorf("result tuple has %d elements, want %d outputs", ret.LengthInt(), len(named))
		}
		for i, out := range named {
			sr.Outputs[out.Name] = ret.Index(cty.NumberIntVal(int64(i)))
		}
	default:
		return fmt.Errorf("result %s cannot fill %d named outputs", ty.FriendlyName(), len(named))
	}
	return nil
}
