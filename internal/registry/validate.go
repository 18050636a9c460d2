package registry

import (
	"context"
	"fmt"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/typesys"
)

// Validate performs a strict parity check between manifests and Go
// handlers, and verifies that every declared type string parses. All
// violations are collected and returned together.
func (r *Registry) Validate(ctx context.Context) []error {
	logger := ctxlog.FromContext(ctx)
	var errs []error

	referenced := make(map[string]bool, len(r.handlers))
	for _, fn := range r.Functions() {
		subject := fn.Ref().String()

		if _, ok := r.handlers[fn.Handler]; !ok {
			errs = append(errs, &SignatureAnalysisError{
				Subject: subject,
				Err:     fmt.Errorf("manifest names handler %q, but no such handler is registered", fn.Handler),
			})
		}
		referenced[fn.Handler] = true

		for _, p := range fn.Params {
			if _, err := typesys.ParseString(p.Type); err != nil {
				errs = append(errs, &SignatureAnalysisError{
					Subject: subject,
					Err:     fmt.Errorf("param %q: %w", p.Name, err),
				})
			}
		}
		for _, ret := range fn.Returns {
			if _, err := typesys.ParseString(ret.Type); err != nil {
				errs = append(errs, &SignatureAnalysisError{
					Subject: subject,
					Err:     fmt.Errorf("return %q: %w", ret.Name, err),
				})
			}
		}
	}

	for name := range r.handlers {
		if !referenced[name] {
			errs = append(errs, &SignatureAnalysisError{
				Subject: name,
				Err:     fmt.Errorf("handler is registered but no manifest function references it"),
			})
		}
	}

	if len(errs) == 0 {
		logger.Debug("Registry parity check passed.", "functions", len(r.Functions()))
	}
	return errs
}
