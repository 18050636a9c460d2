// Package fsops provides the builtin `fsops` collection for filesystem
// side effects inside graph runs.
package fsops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/ctyconv"
	"github.com/vk/taskgrid/internal/registry"
)

const manifest = `
plugin "dirs" {
  function "make_directories" {
    handler = "OnRunMakeDirectories"
    param "paths" { type = "list<string>" }
    result { type = "boolean" }
  }
}

plugin "files" {
  function "write_text_file" {
    handler = "OnRunWriteTextFile"
    param "path"     { type = "path" }
    param "contents" { type = "string" }
    result { type = "path" }
  }
}
`

// Module implements the registry.Module interface for this collection.
type Module struct{}

// Register installs the manifest and the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.MustRegisterManifest("fsops", "fsops.hcl", manifest)
	r.RegisterHandler("OnRunMakeDirectories", OnRunMakeDirectories)
	r.RegisterHandler("OnRunWriteTextFile", OnRunWriteTextFile)
}

// OnRunMakeDirectories creates every listed directory, parents included.
func OnRunMakeDirectories(ctx context.Context, args map[string]cty.Value) (cty.Value, error) {
	paths, err := ctyconv.StringsArg(args, "paths")
	if err != nil {
		return cty.NilVal, err
	}
	log := ctxlog.FromContext(ctx)
	for _, p := range paths {
		log.Debug("Creating directory", "path", p)
		if err := os.MkdirAll(p, 0o755); err != nil {
			return cty.NilVal, fmt.Errorf("failed to create directory %q: %w", p, err)
		}
	}
	return cty.True, nil
}

// OnRunWriteTextFile writes contents to path, creating parent directories
// as needed, and returns the path written.
func OnRunWriteTextFile(ctx context.Context, args map[string]cty.Value) (cty.Value, error) {
	path, err := ctyconv.StringArg(args, "path")
	if err != nil {
		return cty.NilVal, err
	}
	contents, err := ctyconv.StringArg(args, "contents")
	if err != nil {
		return cty.NilVal, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return cty.NilVal, fmt.Errorf("failed to create parent directory for %q: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return cty.NilVal, fmt.Errorf("failed to write %q: %w", path, err)
	}
	ctxlog.FromContext(ctx).Info("Wrote file", "path", path, "bytes", len(contents))
	return cty.StringVal(path), nil
}
