// Package testutil provides shared helpers for engine tests: a decode,
// validate, execute harness for inline graph documents and a probe module
// that records plugin invocations.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/executor"
	"github.com/vk/taskgrid/internal/graph"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/schema"
)

// Context returns a context carrying a quiet test logger.
func Context(t *testing.T) context.Context {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

// Registry builds a registry from the given modules and requires it to
// pass integrity validation.
func Registry(t *testing.T, modules ...registry.Module) *registry.Registry {
	t.Helper()
	reg := registry.New()
	reg.Install(modules...)
	errs := reg.Validate(Context(t))
	require.Empty(t, errs, "registry integrity validation failed")
	return reg
}

// Validate decodes and statically validates an inline graph document,
// returning every collected error.
func Validate(t *testing.T, src string, reg *registry.Registry) (*graph.ValidatedGraph, []error) {
	t.Helper()
	def, errs := schema.Decode([]byte(src))
	if len(errs) > 0 {
		return nil, errs
	}
	return graph.Validate(Context(t), def, reg)
}

// MustValidate is Validate for documents the test expects to be valid.
func MustValidate(t *testing.T, src string, reg *registry.Registry) *graph.ValidatedGraph {
	t.Helper()
	vg, errs := Validate(t, src, reg)
	require.Empty(t, errs, "expected a valid graph document")
	require.NotNil(t, vg)
	return vg
}

// Run validates and executes an inline graph document with the given
// parameter overrides. Submission errors fail the test; step failures
// surface in the result.
func Run(t *testing.T, src string, reg *registry.Registry, overrides map[string]any) *executor.Result {
	t.Helper()
	vg := MustValidate(t, src, reg)
	res, err := executor.New(vg, reg).Execute(Context(t), overrides)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}
