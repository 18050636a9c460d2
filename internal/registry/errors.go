package registry

import (
	"fmt"

	"github.com/vk/taskgrid/internal/schema"
)

// UnknownPluginError reports a lookup against a collection that was never
// registered.
type UnknownPluginError struct {
	Collection string
}

func (e *UnknownPluginError) Error() string {
	return fmt.Sprintf("unknown plugin collection %q", e.Collection)
}

// UnknownPluginFunctionError reports a lookup of a plugin or function
// that does not exist within a known collection.
type UnknownPluginFunctionError struct {
	Ref schema.PluginRef
}

func (e *UnknownPluginFunctionError) Error() string {
	return fmt.Sprintf("unknown plugin function %s", e.Ref)
}

// SignatureAnalysisError reports malformed signature metadata: a manifest
// that cannot be decoded, a type string that does not parse, or a
// manifest/handler parity violation.
type SignatureAnalysisError struct {
	Subject string
	Err     error
}

func (e *SignatureAnalysisError) Error() string {
	return fmt.Sprintf("signature analysis failed for %s: %v", e.Subject, e.Err)
}

func (e *SignatureAnalysisError) Unwrap() error { return e.Err }
