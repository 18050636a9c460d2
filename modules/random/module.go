// Package random provides the builtin `random` collection: seeded random
// number generators carried between steps as opaque values.
package random

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/ctyconv"
	"github.com/vk/taskgrid/internal/registry"
)

// RNGTypeName is the opaque type name generators travel under.
const RNGTypeName = "rngenerator"

const manifest = `
plugin "rng" {
  function "init_rng" {
    handler = "OnRunInitRNG"
    param "seed" {
      type    = "integer"
      default = -1
    }
    returns "seed" { type = "integer" }
    returns "rng"  { type = "rngenerator" }
  }

  function "draw_uniform" {
    handler = "OnRunDrawUniform"
    param "rng"  { type = "rngenerator" }
    param "low"  { type = "number" }
    param "high" { type = "number" }
    param "n" {
      type    = "integer"
      default = 1
    }
    result { type = "list<number>" }
  }
}
`

// Module implements the registry.Module interface for this collection.
type Module struct{}

// Register installs the manifest and the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.MustRegisterManifest("random", "random.hcl", manifest)
	r.RegisterHandler("OnRunInitRNG", OnRunInitRNG)
	r.RegisterHandler("OnRunDrawUniform", OnRunDrawUniform)
}

// OnRunInitRNG creates a seeded generator. A negative seed selects a
// time-derived one; the effective seed is returned alongside the
// generator so runs can be reproduced.
func OnRunInitRNG(ctx context.Context, args map[string]cty.Value) (cty.Value, error) {
	seed, err := ctyconv.Int64Arg(args, "seed")
	if err != nil {
		return cty.NilVal, err
	}
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	ctxlog.FromContext(ctx).Debug("Initializing random generator", "seed", seed)

	rng := rand.New(rand.NewSource(seed))
	return cty.ObjectVal(map[string]cty.Value{
		"seed": cty.NumberIntVal(seed),
		"rng":  ctyconv.OpaqueVal(RNGTypeName, rng),
	}), nil
}

// OnRunDrawUniform samples n uniform values from [low, high).
func OnRunDrawUniform(ctx context.Context, args map[string]cty.Value) (cty.Value, error) {
	rng, err := generatorArg(args, "rng")
	if err != nil {
		return cty.NilVal, err
	}
	low, err := ctyconv.Float64Arg(args, "low")
	if err != nil {
		return cty.NilVal, err
	}
	high, err := ctyconv.Float64Arg(args, "high")
	if err != nil {
		return cty.NilVal, err
	}
	n, err := ctyconv.Int64Arg(args, "n")
	if err != nil {
		return cty.NilVal, err
	}
	if high < low {
		return cty.NilVal, fmt.Errorf("bounds inverted: low %v exceeds high %v", low, high)
	}
	if n < 0 {
		return cty.NilVal, fmt.Errorf("sample count must not be negative, got %d", n)
	}
	if n == 0 {
		return cty.ListValEmpty(cty.Number), nil
	}

	out := make([]cty.Value, 0, n)
	for i := int64(0); i < n; i++ {
		out = append(out, cty.NumberFloatVal(low+rng.Float64()*(high-low)))
	}
	return cty.ListVal(out), nil
}

func generatorArg(args map[string]cty.Value, name string) (*rand.Rand, error) {
	v, ok := args[name]
	if !ok || v.IsNull() {
		return nil, fmt.Errorf("argument %q is not set", name)
	}
	inner, ok := ctyconv.OpaqueValue(v)
	if !ok {
		return nil, fmt.Errorf("argument %q is %s, want %s", name, v.Type().FriendlyName(), RNGTypeName)
	}
	rng, ok := inner.(*rand.Rand)
	if !ok {
		return nil, fmt.Errorf("argument %q holds %T, want a random generator", name, inner)
	}
	return rng, nil
}
