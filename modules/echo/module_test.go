package echo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgrid/internal/executor"
	"github.com/vk/taskgrid/internal/testutil"
	"github.com/vk/taskgrid/modules/echo"
)

func TestEchoPassesValuesThrough(t *testing.T) {
	doc := `
tasks:
  say:
    plugin: echo.echo.echo
    inputs:
      - name: value
        type: any
    output: any

graph:
  structured:
    say:
      value:
        numbers: [1, 2, 3]
        label: mixed
  chained:
    say:
      value: $structured
`
	reg := testutil.Registry(t, &echo.Module{})
	res := testutil.Run(t, doc, reg, nil)

	require.Equal(t, executor.StatusCompleted, res.Status)

	want := cty.ObjectVal(map[string]cty.Value{
		"numbers": cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2), cty.NumberIntVal(3)}),
		"label":   cty.StringVal("mixed"),
	})
	got, ok := res.Output("chained", "")
	require.True(t, ok)
	assert.True(t, got.RawEquals(want))
}
