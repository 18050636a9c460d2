package executor

import "fmt"

// ParameterTypeError reports a submission-time override that fails the
// declared parameter type check, or names no declared parameter. These
// fail fast before any step runs.
type ParameterTypeError struct {
	Name   string
	Detail string
}

func (e *ParameterTypeError) Error() string {
	return fmt.Sprintf("parameter override %q: %s", e.Name, e.Detail)
}

// StepExecutionError wraps an error raised by a plugin invocation with
// the failing step's name. Execution errors are step-local: they surface
// in the result, never out of Execute.
type StepExecutionError struct {
	Step string
	Err  error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepExecutionError) Unwrap() error { return e.Err }

// SkippedError marks a step that never executed because an upstream
// dependency failed.
type SkippedError struct {
	Step       string
	Dependency string
}

func (e *SkippedError) Error() string {
	return fmt.Sprintf("step %q skipped: dependency %q did not succeed", e.Step, e.Dependency)
}
