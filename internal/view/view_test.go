package view

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgrid/internal/executor"
)

func TestRenderResult(t *testing.T) {
	res := &executor.Result{
		RunID:  "run-1",
		Status: executor.StatusPartiallyFailed,
		Order:  []string{"ok_step", "bad_step", "skipped_step"},
		Steps: map[string]*executor.StepResult{
			"ok_step": {
				Status: executor.StepSucceeded,
				Value:  cty.StringVal("fine"),
			},
			"bad_step": {
				Status: executor.StepFailed,
				Err:    errors.New("exploded"),
			},
			"skipped_step": {
				Status: executor.StepSkipped,
				Err:    errors.New("dependency did not succeed"),
			},
		},
	}

	var buf bytes.Buffer
	New(&buf).RenderResult(res)
	out := buf.String()

	assert.Contains(t, out, "ok_step")
	assert.Contains(t, out, "fine")
	assert.Contains(t, out, "bad_step")
	assert.Contains(t, out, "exploded")
	assert.Contains(t, out, "skipped_step")
	assert.Contains(t, out, "Partially failed")
}

func TestRenderResult_NamedOutputs(t *testing.T) {
	res := &executor.Result{
		Status: executor.StatusCompleted,
		Order:  []string{"multi"},
		Steps: map[string]*executor.StepResult{
			"multi": {
				Status: executor.StepSucceeded,
				Outputs: map[string]cty.Value{
					"seed": cty.NumberIntVal(42),
					"rng":  cty.StringVal("handle"),
				},
			},
		},
	}

	var buf bytes.Buffer
	New(&buf).RenderResult(res)
	out := buf.String()

	assert.Contains(t, out, "rng=handle")
	assert.Contains(t, out, "seed=42")
	assert.Contains(t, out, "Completed")
}

func TestRenderErrorsAndValid(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.RenderErrors("graph.yaml", []error{errors.New("first"), errors.New("second")})
	r.RenderValid("graph.yaml")
	out := buf.String()

	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
	assert.Contains(t, out, "Valid!")
}
