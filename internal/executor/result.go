package executor

import (
	"github.com/zclconf/go-cty/cty"
)

// StepResult is the terminal record of one step: the resolved value (or
// named-output mapping) on success, the wrapped error otherwise.
type StepResult struct {
	Status StepStatus
	// Value is the single result value. For multi-output tasks it holds
	// the whole aggregate as returned by the plugin.
	Value cty.Value
	// Outputs holds named output values for multi-output tasks.
	Outputs map[string]cty.Value
	// Err is set for failed and skipped steps.
	Err error
}

// Result is the structured outcome of one graph run. The per-step map is
// always complete regardless of overall status.
type Result struct {
	RunID  string
	Status Status
	Steps  map[string]*StepResult
	// Order lists the steps in the order execution was attempted.
	Order []string
	// FirstFailed names the earliest step in execution order that failed,
	// or is empty when no step failed.
	FirstFailed string
}

// Output returns the value behind a step reference, selecting a named
// output when field is non-empty.
func (r *Result) Output(step, field string) (cty.Value, bool) {
	sr, ok := r.Steps[step]
	if !ok || sr.Status != StepSucceeded {
		return cty.NilVal, false
	}
	if field == "" {
		return sr.Value, true
	}
	v, ok := sr.Outputs[field]
	return v, ok
}

func (r *Result) computeStatus() {
	succeeded, failed := 0, 0
	for _, sr := range r.Steps {
		switch sr.Status {
		case StepSucceeded:
			succeeded++
		case StepFailed, StepSkipped:
			failed++
		}
	}
	switch {
	case failed == 0:
		r.Status = StatusCompleted
	case succeeded == 0:
		r.Status = StatusFailed
	default:
		r.Status = StatusPartiallyFailed
	}
}
