package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/executor"
	"github.com/vk/taskgrid/internal/graph"
	"github.com/vk/taskgrid/internal/schema"
)

// InvalidDefinitionError carries every definition error collected while
// loading or validating a graph document.
type InvalidDefinitionError struct {
	Path string
	Errs []error
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("%s: %d definition error(s)", e.Path, len(e.Errs))
}

// RunFailedError reports a run that finished with failed or skipped steps.
type RunFailedError struct {
	Status executor.Status
}

func (e *RunFailedError) Error() string {
	return fmt.Sprintf("run finished with status %s", e.Status)
}

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	src, err := os.ReadFile(appConfig.GraphPath)
	if err != nil {
		return fmt.Errorf("failed to read graph document: %w", err)
	}

	def, errs := schema.Decode(src)
	if len(errs) > 0 {
		a.renderer.RenderErrors(appConfig.GraphPath, errs)
		return &InvalidDefinitionError{Path: appConfig.GraphPath, Errs: errs}
	}
	a.logger.Debug("Graph document decoded.", "steps", len(def.Steps), "tasks", len(def.Tasks))

	vg, errs := graph.Validate(ctx, def, a.registry)
	if len(errs) > 0 {
		a.renderer.RenderErrors(appConfig.GraphPath, errs)
		return &InvalidDefinitionError{Path: appConfig.GraphPath, Errs: errs}
	}
	a.logger.Debug("Graph validated.", "steps", len(vg.Steps))

	if appConfig.ValidateOnly {
		a.renderer.RenderValid(appConfig.GraphPath)
		return nil
	}

	exec := executor.New(vg, a.registry)
	res, err := exec.Execute(ctx, appConfig.Params)
	if err != nil {
		return fmt.Errorf("execution aborted: %w", err)
	}

	a.renderer.RenderResult(res)
	if res.Status != executor.StatusCompleted {
		return &RunFailedError{Status: res.Status}
	}
	return nil
}
