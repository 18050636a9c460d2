// Package app wires the engine together: it owns the logger, the plugin
// registry, and the load, validate, execute, render lifecycle of one
// graph run.
package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/view"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	renderer *view.Renderer
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Passing no modules installs the builtin collections.
func NewApp(outW io.Writer, errW io.Writer, appConfig *Config, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, errW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.Install(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	// A manifest out of step with its handlers is a programming error.
	if errs := reg.Validate(ctx); len(errs) > 0 {
		for _, err := range errs {
			logger.Error("Registry validation failed.", "error", err)
		}
		panic(errs[0])
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		renderer: view.New(outW),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
