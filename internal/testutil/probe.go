package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgrid/internal/registry"
)

const probeManifest = `
plugin "probe" {
  function "emit" {
    handler = "OnRunProbeEmit"
    param "value" { type = "any" }
    result { type = "any" }
  }

  function "fail" {
    handler = "OnRunProbeFail"
    param "message" {
      type    = "string"
      default = "probe failure"
    }
    result { type = "any" }
  }

  function "pair" {
    handler = "OnRunProbePair"
    param "first"  { type = "any" }
    param "second" { type = "any" }
    returns "first"  { type = "any" }
    returns "second" { type = "any" }
  }
}
`

// ProbeModule is a test-only plugin collection. Its emit function passes
// values through while recording the invocation order, fail always
// returns an error, and pair exercises multi-output splitting.
type ProbeModule struct {
	mu    sync.Mutex
	calls []string
}

// Register installs the probe manifest and handlers.
func (m *ProbeModule) Register(r *registry.Registry) {
	r.MustRegisterManifest("probe", "probe.hcl", probeManifest)
	r.RegisterHandler("OnRunProbeEmit", m.onEmit)
	r.RegisterHandler("OnRunProbeFail", m.onFail)
	r.RegisterHandler("OnRunProbePair", m.onPair)
}

// Calls returns the recorded emit invocations in order.
func (m *ProbeModule) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *ProbeModule) record(v cty.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.Type() == cty.String && !v.IsNull() {
		m.calls = append(m.calls, v.AsString())
		return
	}
	m.calls = append(m.calls, v.GoString())
}

func (m *ProbeModule) onEmit(_ context.Context, args map[string]cty.Value) (cty.Value, error) {
	v, ok := args["value"]
	if !ok {
		v = cty.NullVal(cty.DynamicPseudoType)
	}
	m.record(v)
	return v, nil
}

func (m *ProbeModule) onFail(_ context.Context, args map[string]cty.Value) (cty.Value, error) {
	msg := "probe failure"
	if v, ok := args["message"]; ok && !v.IsNull() {
		msg = v.AsString()
	}
	return cty.NilVal, fmt.Errorf("%s", msg)
}

func (m *ProbeModule) onPair(_ context.Context, args map[string]cty.Value) (cty.Value, error) {
	return cty.ObjectVal(map[string]cty.Value{
		"first":  args["first"],
		"second": args["second"],
	}), nil
}
