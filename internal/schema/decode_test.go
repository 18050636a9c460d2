package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/taskgrid/internal/refs"
)

const sampleDoc = `
types:
  rngenerator:
  port: integer
  id: integer|string
  matrix:
    list:
      list: number

parameters:
  rng_seed: -1
  greeting:
    type: string
    default: hello

tasks:
  init:
    plugin: random.rng.init_rng
    inputs:
      - name: seed
        type: integer
        required: false
    outputs:
      - name: seed
        type: integer
      - name: rng
        type: rngenerator
  draw:
    plugin: random.rng.draw_uniform
    inputs:
      - name: rng
        type: rngenerator
      - name: low
        type: number
      - name: high
        type: number
    output: list<number>

graph:
  setup:
    init:
      seed: $rng_seed
  sample:
    draw:
      rng: $setup.rng
      low: 0
      high: 1
    dependencies: [setup]
`

func TestDecode_FullDocument(t *testing.T) {
	def, errs := Decode([]byte(sampleDoc))
	require.Empty(t, errs)
	require.NotNil(t, def)

	assert.Len(t, def.Types, 4)
	assert.True(t, def.Types["rngenerator"].Alias)
	assert.Equal(t, "integer", def.Types["port"].Named)
	assert.Len(t, def.Types["id"].Union, 2)
	require.NotNil(t, def.Types["matrix"].List)
	assert.NotNil(t, def.Types["matrix"].List.List)

	require.Len(t, def.Parameters, 2)
	assert.Equal(t, "rng_seed", def.Parameters[0].Name)
	assert.Equal(t, -1, def.Parameters[0].Default)
	assert.Empty(t, def.Parameters[0].Type)
	assert.Equal(t, "greeting", def.Parameters[1].Name)
	assert.Equal(t, "string", def.Parameters[1].Type)
	assert.Equal(t, "hello", def.Parameters[1].Default)

	require.Len(t, def.Tasks, 2)
	init := def.Tasks["init"]
	assert.Equal(t, PluginRef{Collection: "random", Plugin: "rng", Function: "init_rng"}, init.Plugin)
	require.Len(t, init.Inputs, 1)
	assert.False(t, init.Inputs[0].Required)
	require.Len(t, init.Outputs, 2)
	assert.Equal(t, "rng", init.Outputs[1].Name)

	draw := def.Tasks["draw"]
	require.Len(t, draw.Outputs, 1)
	assert.Empty(t, draw.Outputs[0].Name, "singular output form is unnamed")
	assert.Equal(t, "list<number>", draw.Outputs[0].Type)

	require.Len(t, def.Steps, 2)
	assert.Equal(t, "setup", def.Steps[0].Name, "step declaration order must be preserved")
	assert.Equal(t, "sample", def.Steps[1].Name)

	sample := def.Steps[1]
	assert.Equal(t, "draw", sample.Task)
	assert.Equal(t, []string{"rng", "low", "high"}, sample.InputOrder)
	assert.Equal(t, []string{"setup"}, sample.Dependencies)
	require.Equal(t, refs.KindRef, sample.Inputs["rng"].Kind)
	assert.Equal(t, "setup", sample.Inputs["rng"].Ref.Target)
	assert.Equal(t, "rng", sample.Inputs["rng"].Ref.Field)
}

func TestDecode_ShorthandParameterMapping(t *testing.T) {
	doc := `
parameters:
  labels:
    env: dev
    team: core
`
	def, errs := Decode([]byte(doc))
	require.Empty(t, errs)
	require.Len(t, def.Parameters, 1)

	// A mapping without a type key is a shorthand default value.
	assert.Empty(t, def.Parameters[0].Type)
	assert.Equal(t, map[string]any{"env": "dev", "team": "core"}, def.Parameters[0].Default)
}

func TestDecode_DuplicateStepName(t *testing.T) {
	doc := `
tasks:
  noop:
    plugin: echo.echo.echo
graph:
  a:
    noop:
  a:
    noop:
`
	_, errs := Decode([]byte(doc))
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "duplicate step name")
}

func TestDecode_StepWithTwoTasks(t *testing.T) {
	doc := `
graph:
  confused:
    first_task:
    second_task:
`
	_, errs := Decode([]byte(doc))
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "more than one task")
}

func TestDecode_CollectsMultipleErrors(t *testing.T) {
	doc := `
types:
  string: integer

tasks:
  broken:
    inputs:
      - name: x
        type: string

graph:
  orphan: {}
`
	_, errs := Decode([]byte(doc))
	require.GreaterOrEqual(t, len(errs), 3)

	all := ""
	for _, err := range errs {
		all += err.Error() + "\n"
	}
	assert.Contains(t, all, "shadows a built-in primitive")
	assert.Contains(t, all, "missing plugin reference")
	assert.Contains(t, all, "does not invoke a task")
}

func TestDecode_MalformedReferenceInBinding(t *testing.T) {
	doc := `
tasks:
  noop:
    plugin: echo.echo.echo
graph:
  a:
    noop:
      value: "$not.a.valid.ref"
`
	_, errs := Decode([]byte(doc))
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "malformed reference")
}

func TestDecode_ErrorsIncludeLineNumbers(t *testing.T) {
	doc := "types:\n  weird: \"list<\"\n"
	_, errs := Decode([]byte(doc))
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "line 2")
}

func TestParsePluginRef(t *testing.T) {
	ref, err := ParsePluginRef("fsops.files.write_text_file")
	require.NoError(t, err)
	assert.Equal(t, "fsops", ref.Collection)
	assert.Equal(t, "files", ref.Plugin)
	assert.Equal(t, "write_text_file", ref.Function)

	for _, in := range []string{"", "a", "a.b", "a.b.c.d", "a..c"} {
		_, err := ParsePluginRef(in)
		assert.Error(t, err, "input %q", in)
	}
}
