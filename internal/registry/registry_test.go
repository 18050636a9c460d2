package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgrid/internal/schema"
)

const testManifest = `
plugin "math" {
  function "add" {
    handler = "OnRunAdd"
    param "a" { type = "number" }
    param "b" {
      type    = "number"
      default = 0
    }
    result { type = "number" }
  }

  function "divmod" {
    handler = "OnRunDivMod"
    param "a" { type = "integer" }
    param "b" { type = "integer" }
    returns "quotient"  { type = "integer" }
    returns "remainder" { type = "integer" }
  }
}
`

func addHandler(_ context.Context, args map[string]cty.Value) (cty.Value, error) {
	a, _ := args["a"].AsBigFloat().Float64()
	b, _ := args["b"].AsBigFloat().Float64()
	return cty.NumberFloatVal(a + b), nil
}

func divModHandler(_ context.Context, args map[string]cty.Value) (cty.Value, error) {
	a, _ := args["a"].AsBigFloat().Int64()
	b, _ := args["b"].AsBigFloat().Int64()
	return cty.ObjectVal(map[string]cty.Value{
		"quotient":  cty.NumberIntVal(a / b),
		"remainder": cty.NumberIntVal(a % b),
	}), nil
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := New()
	require.NoError(t, r.RegisterManifest("mathx", "mathx.hcl", testManifest))
	r.RegisterHandler("OnRunAdd", addHandler)
	r.RegisterHandler("OnRunDivMod", divModHandler)
	return r
}

func TestRegisterManifest_SignatureDecoding(t *testing.T) {
	r := newTestRegistry(t)

	fn, err := r.Lookup(schema.PluginRef{Collection: "mathx", Plugin: "math", Function: "add"})
	require.NoError(t, err)
	assert.Equal(t, "OnRunAdd", fn.Handler)
	require.Len(t, fn.Params, 2)

	assert.Equal(t, "a", fn.Params[0].Name)
	assert.True(t, fn.Params[0].Required, "a parameter without a default is required")
	assert.False(t, fn.Params[0].HasDefault())

	assert.Equal(t, "b", fn.Params[1].Name)
	assert.False(t, fn.Params[1].Required, "a parameter with a default is optional")
	require.True(t, fn.Params[1].HasDefault())
	assert.True(t, fn.Params[1].Default.RawEquals(cty.NumberIntVal(0)))

	require.Len(t, fn.Returns, 1)
	assert.Empty(t, fn.Returns[0].Name, "single result form is unnamed")

	divmod, err := r.Lookup(schema.PluginRef{Collection: "mathx", Plugin: "math", Function: "divmod"})
	require.NoError(t, err)
	require.Len(t, divmod.Returns, 2)
	assert.Equal(t, "quotient", divmod.Returns[0].Name)
}

func TestLookup_Errors(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Lookup(schema.PluginRef{Collection: "ghost", Plugin: "math", Function: "add"})
	var unknownPlugin *UnknownPluginError
	require.ErrorAs(t, err, &unknownPlugin)
	assert.Equal(t, "ghost", unknownPlugin.Collection)

	_, err = r.Lookup(schema.PluginRef{Collection: "mathx", Plugin: "ghost", Function: "add"})
	var unknownFn *UnknownPluginFunctionError
	require.ErrorAs(t, err, &unknownFn)

	_, err = r.Lookup(schema.PluginRef{Collection: "mathx", Plugin: "math", Function: "ghost"})
	require.ErrorAs(t, err, &unknownFn)
}

func TestValidate_ParityViolations(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterManifest("mathx", "mathx.hcl", testManifest))
	// OnRunDivMod is deliberately missing; OnRunOrphan has no manifest.
	r.RegisterHandler("OnRunAdd", addHandler)
	r.RegisterHandler("OnRunOrphan", addHandler)

	errs := r.Validate(context.Background())
	require.Len(t, errs, 2)

	all := ""
	for _, err := range errs {
		var sigErr *SignatureAnalysisError
		require.ErrorAs(t, err, &sigErr)
		all += err.Error() + "\n"
	}
	assert.Contains(t, all, "OnRunDivMod")
	assert.Contains(t, all, "OnRunOrphan")
}

func TestValidate_BadTypeString(t *testing.T) {
	manifest := `
plugin "p" {
  function "f" {
    handler = "OnRunF"
    param "x" { type = "list<" }
    result { type = "number" }
  }
}
`
	r := New()
	require.NoError(t, r.RegisterManifest("c", "c.hcl", manifest))
	r.RegisterHandler("OnRunF", addHandler)

	errs := r.Validate(context.Background())
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), `param "x"`)
}

func TestRegisterManifest_RejectsResultAndReturns(t *testing.T) {
	manifest := `
plugin "p" {
  function "f" {
    handler = "OnRunF"
    result { type = "number" }
    returns "x" { type = "number" }
  }
}
`
	r := New()
	err := r.RegisterManifest("c", "c.hcl", manifest)
	var sigErr *SignatureAnalysisError
	require.ErrorAs(t, err, &sigErr)
	assert.Contains(t, err.Error(), "both a single result and named returns")
}

func TestRegisterManifest_MalformedHCL(t *testing.T) {
	r := New()
	err := r.RegisterManifest("c", "c.hcl", `plugin "p" {`)
	var sigErr *SignatureAnalysisError
	require.ErrorAs(t, err, &sigErr)
}

func TestInvoke(t *testing.T) {
	r := newTestRegistry(t)
	fn, err := r.Lookup(schema.PluginRef{Collection: "mathx", Plugin: "math", Function: "add"})
	require.NoError(t, err)

	got, err := r.Invoke(context.Background(), fn, map[string]cty.Value{
		"a": cty.NumberFloatVal(1.5),
		"b": cty.NumberFloatVal(2.5),
	})
	require.NoError(t, err)
	assert.True(t, got.RawEquals(cty.NumberFloatVal(4)))
}

func TestRegisterHandler_DuplicatePanics(t *testing.T) {
	r := New()
	r.RegisterHandler("OnRunAdd", addHandler)
	assert.Panics(t, func() { r.RegisterHandler("OnRunAdd", addHandler) })
}
