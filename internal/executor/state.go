package executor

// StepStatus is the runtime execution state of one step.
//
// Lifecycle: pending -> ready -> running -> succeeded | failed. A step
// whose direct or transitive dependency failed is marked skipped, a
// terminal non-executing state.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepReady     StepStatus = "ready"
	StepRunning   StepStatus = "running"
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// Terminal reports whether the status is final.
func (s StepStatus) Terminal() bool {
	switch s {
	case StepSucceeded, StepFailed, StepSkipped:
		return true
	}
	return false
}

// Status is the overall outcome of a graph run.
type Status string

const (
	// StatusCompleted means every step succeeded.
	StatusCompleted Status = "completed"
	// StatusPartiallyFailed means at least one step failed or was skipped
	// while others succeeded.
	StatusPartiallyFailed Status = "partially_failed"
	// StatusFailed means no step succeeded.
	StatusFailed Status = "failed"
)
