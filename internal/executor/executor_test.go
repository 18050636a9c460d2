package executor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgrid/internal/executor"
	"github.com/vk/taskgrid/internal/testutil"
)

const probeTasks = `
tasks:
  emit:
    plugin: probe.probe.emit
    inputs:
      - name: value
        type: any
    output: any
  fail:
    plugin: probe.probe.fail
    output: any
  pair:
    plugin: probe.probe.pair
    inputs:
      - name: first
        type: any
      - name: second
        type: any
    outputs:
      - name: first
        type: any
      - name: second
        type: any
`

func TestExecute_HappyPath(t *testing.T) {
	doc := probeTasks + `
parameters:
  greeting: hello

graph:
  start:
    emit:
      value: $greeting
  next:
    emit:
      value: $start
`
	probe := &testutil.ProbeModule{}
	reg := testutil.Registry(t, probe)
	res := testutil.Run(t, doc, reg, nil)

	assert.Equal(t, executor.StatusCompleted, res.Status)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"start", "next"}, res.Order)
	assert.Equal(t, []string{"hello", "hello"}, probe.Calls())

	v, ok := res.Output("next", "")
	require.True(t, ok)
	assert.True(t, v.RawEquals(cty.StringVal("hello")))
}

func TestExecute_ParameterOverride(t *testing.T) {
	doc := probeTasks + `
parameters:
  greeting: hello

graph:
  start:
    emit:
      value: $greeting
`
	probe := &testutil.ProbeModule{}
	reg := testutil.Registry(t, probe)
	res := testutil.Run(t, doc, reg, map[string]any{"greeting": "goodbye"})

	assert.Equal(t, executor.StatusCompleted, res.Status)
	assert.Equal(t, []string{"goodbye"}, probe.Calls())
}

func TestExecute_UnknownOverrideFailsFast(t *testing.T) {
	doc := probeTasks + `
graph:
  start:
    emit:
      value: 1
`
	probe := &testutil.ProbeModule{}
	reg := testutil.Registry(t, probe)
	vg := testutil.MustValidate(t, doc, reg)

	_, err := executor.New(vg, reg).Execute(testutil.Context(t), map[string]any{"ghost": 1})
	var paramErr *executor.ParameterTypeError
	require.ErrorAs(t, err, &paramErr)
	assert.Equal(t, "ghost", paramErr.Name)
	assert.Empty(t, probe.Calls(), "no step may run after a submission error")
}

func TestExecute_OverrideTypeCheckedAgainstDeclaredType(t *testing.T) {
	doc := probeTasks + `
parameters:
  count:
    type: integer
    default: 1

graph:
  start:
    emit:
      value: $count
`
	reg := testutil.Registry(t, &testutil.ProbeModule{})
	vg := testutil.MustValidate(t, doc, reg)

	_, err := executor.New(vg, reg).Execute(testutil.Context(t), map[string]any{"count": "three"})
	var paramErr *executor.ParameterTypeError
	require.ErrorAs(t, err, &paramErr)
	assert.Equal(t, "count", paramErr.Name)

	// A fractional value must not narrow into a declared integer.
	_, err = executor.New(vg, reg).Execute(testutil.Context(t), map[string]any{"count": 2.5})
	require.ErrorAs(t, err, &paramErr)

	res, err := executor.New(vg, reg).Execute(testutil.Context(t), map[string]any{"count": 7})
	require.NoError(t, err)
	assert.Equal(t, executor.StatusCompleted, res.Status)
}

func TestExecute_PartialFailureContainment(t *testing.T) {
	doc := probeTasks + `
graph:
  a:
    emit:
      value: 1
  b:
    fail: {}
    dependencies: [a]
  downstream:
    emit:
      value: $b
  independent:
    emit:
      value: 2
`
	reg := testutil.Registry(t, &testutil.ProbeModule{})
	res := testutil.Run(t, doc, reg, nil)

	assert.Equal(t, executor.StatusPartiallyFailed, res.Status)
	assert.Equal(t, executor.StepSucceeded, res.Steps["a"].Status)
	assert.Equal(t, executor.StepFailed, res.Steps["b"].Status)
	assert.Equal(t, executor.StepSkipped, res.Steps["downstream"].Status)
	assert.Equal(t, executor.StepSucceeded, res.Steps["independent"].Status)
	assert.Equal(t, "b", res.FirstFailed)

	var stepErr *executor.StepExecutionError
	require.ErrorAs(t, res.Steps["b"].Err, &stepErr)
	assert.Equal(t, "b", stepErr.Step)

	var skipErr *executor.SkippedError
	require.ErrorAs(t, res.Steps["downstream"].Err, &skipErr)
	assert.Equal(t, "b", skipErr.Dependency)
}

func TestExecute_AllStepsFail(t *testing.T) {
	doc := probeTasks + `
graph:
  only:
    fail: {}
`
	reg := testutil.Registry(t, &testutil.ProbeModule{})
	res := testutil.Run(t, doc, reg, nil)
	assert.Equal(t, executor.StatusFailed, res.Status)
}

func TestExecute_MultiOutputSplitting(t *testing.T) {
	doc := probeTasks + `
graph:
  p:
    pair:
      first: alpha
      second: 2
  pickFirst:
    emit:
      value: $p.first
  pickSecond:
    emit:
      value: $p.second
`
	reg := testutil.Registry(t, &testutil.ProbeModule{})
	res := testutil.Run(t, doc, reg, nil)

	require.Equal(t, executor.StatusCompleted, res.Status)

	first, ok := res.Output("p", "first")
	require.True(t, ok)
	assert.True(t, first.RawEquals(cty.StringVal("alpha")))

	second, ok := res.Output("p", "second")
	require.True(t, ok)
	assert.True(t, second.RawEquals(cty.NumberIntVal(2)))

	got, ok := res.Output("pickSecond", "")
	require.True(t, ok)
	assert.True(t, got.RawEquals(cty.NumberIntVal(2)))
}

func TestExecute_OptionalInputDefaultApplies(t *testing.T) {
	// fail's message parameter defaults in the manifest; the step binds
	// nothing, so the default must reach the handler.
	doc := probeTasks + `
graph:
  boom:
    fail: {}
`
	reg := testutil.Registry(t, &testutil.ProbeModule{})
	res := testutil.Run(t, doc, reg, nil)

	require.Equal(t, executor.StepFailed, res.Steps["boom"].Status)
	assert.Contains(t, res.Steps["boom"].Err.Error(), "probe failure")
}

func TestExecute_ResultContainsEveryStep(t *testing.T) {
	doc := probeTasks + `
graph:
  a:
    fail: {}
  b:
    emit:
      value: $a
  c:
    emit:
      value: $b
`
	reg := testutil.Registry(t, &testutil.ProbeModule{})
	res := testutil.Run(t, doc, reg, nil)

	assert.Len(t, res.Steps, 3)
	assert.Equal(t, []string{"a", "b", "c"}, res.Order)
	assert.Equal(t, executor.StepSkipped, res.Steps["b"].Status)
	assert.Equal(t, executor.StepSkipped, res.Steps["c"].Status)

	// Transitive skips are attributed to the step that failed.
	var skipErr *executor.SkippedError
	require.ErrorAs(t, res.Steps["c"].Err, &skipErr)
	assert.Equal(t, "a", skipErr.Dependency)
}
