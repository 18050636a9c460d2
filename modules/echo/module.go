// Package echo provides the builtin `echo` collection, a pass-through
// plugin useful for wiring and testing graphs.
package echo

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/ctyconv"
	"github.com/vk/taskgrid/internal/registry"
)

const manifest = `
plugin "echo" {
  function "echo" {
    handler = "OnRunEcho"
    param "value" { type = "any" }
    result { type = "any" }
  }
}
`

// Module implements the registry.Module interface for this collection.
type Module struct{}

// Register installs the manifest and the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.MustRegisterManifest("echo", "echo.hcl", manifest)
	r.RegisterHandler("OnRunEcho", OnRunEcho)
}

// OnRunEcho logs and returns its argument unchanged.
func OnRunEcho(ctx context.Context, args map[string]cty.Value) (cty.Value, error) {
	v, ok := args["value"]
	if !ok {
		v = cty.NullVal(cty.DynamicPseudoType)
	}
	ctxlog.FromContext(ctx).Info("echo", "value", ctyconv.FromCty(v))
	return v, nil
}
