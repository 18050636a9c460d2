// Package registry implements the plugin registry: named collections of
// plugin functions with declared signatures (HCL manifests) backed by
// registered Go handlers. The engine treats the registry as read-only
// during validation and execution.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgrid/internal/schema"
)

// Handler is the callable behind a plugin function. Arguments arrive as
// resolved keyword inputs; the returned value carries either the single
// result or an aggregate to be split across named outputs.
type Handler func(ctx context.Context, args map[string]cty.Value) (cty.Value, error)

// Module is the interface builtin plugin collections implement to be
// registered with the engine.
type Module interface {
	Register(r *Registry)
}

// Param is one declared parameter of a plugin function.
type Param struct {
	Name     string
	Type     string
	Required bool
	// Default is cty.NilVal when the parameter has no default.
	Default cty.Value
}

// HasDefault reports whether the parameter declares a default value.
func (p *Param) HasDefault() bool {
	return p.Default != cty.NilVal
}

// Return is one declared return value. Name is empty for a function with
// a single implicit result.
type Return struct {
	Name string
	Type string
}

// Function is the resolved signature of one plugin function.
type Function struct {
	Collection string
	Plugin     string
	Name       string
	// Handler names the registered Go handler that implements the function.
	Handler string
	Params  []*Param
	Returns []*Return
}

// Ref returns the dotted address of the function.
func (f *Function) Ref() schema.PluginRef {
	return schema.PluginRef{Collection: f.Collection, Plugin: f.Plugin, Function: f.Name}
}

// Registry holds all registered collections and handlers for one engine
// instance.
type Registry struct {
	collections map[string]map[string]map[string]*Function
	handlers    map[string]Handler
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		collections: make(map[string]map[string]map[string]*Function),
		handlers:    make(map[string]Handler),
	}
}

// Install registers every provided module.
func (r *Registry) Install(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// RegisterHandler registers a Go handler under a name referenced by
// manifest `handler` attributes. Duplicate registration is a programming
// error.
func (r *Registry) RegisterHandler(name string, h Handler) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("handler %q already registered", name))
	}
	slog.Debug("Registering plugin handler.", "name", name)
	r.handlers[name] = h
}

// addFunction records a function signature parsed from a manifest.
func (r *Registry) addFunction(fn *Function) error {
	plugins, ok := r.collections[fn.Collection]
	if !ok {
		plugins = make(map[string]map[string]*Function)
		r.collections[fn.Collection] = plugins
	}
	functions, ok := plugins[fn.Plugin]
	if !ok {
		functions = make(map[string]*Function)
		plugins[fn.Plugin] = functions
	}
	if _, exists := functions[fn.Name]; exists {
		return fmt.Errorf("function %s already registered", fn.Ref())
	}
	functions[fn.Name] = fn
	return nil
}

// Lookup resolves a plugin reference to its declared signature.
func (r *Registry) Lookup(ref schema.PluginRef) (*Function, error) {
	plugins, ok := r.collections[ref.Collection]
	if !ok {
		return nil, &UnknownPluginError{Collection: ref.Collection}
	}
	functions, ok := plugins[ref.Plugin]
	if !ok {
		return nil, &UnknownPluginFunctionError{Ref: ref}
	}
	fn, ok := functions[ref.Function]
	if !ok {
		return nil, &UnknownPluginFunctionError{Ref: ref}
	}
	return fn, nil
}

// Invoke calls the handler backing a function with resolved arguments.
func (r *Registry) Invoke(ctx context.Context, fn *Function, args map[string]cty.Value) (cty.Value, error) {
	handler, ok := r.handlers[fn.Handler]
	if !ok {
		return cty.NilVal, &SignatureAnalysisError{
			Subject: fn.Ref().String(),
			Err:     fmt.Errorf("handler %q not registered", fn.Handler),
		}
	}
	return handler(ctx, args)
}

// Functions returns every registered function in deterministic order.
func (r *Registry) Functions() []*Function {
	var out []*Function
	for _, plugins := range r.collections {
		for _, functions := range plugins {
			for _, fn := range functions {
				out = append(out, fn)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Ref().String() < out[j].Ref().String()
	})
	return out
}
