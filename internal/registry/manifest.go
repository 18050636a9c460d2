package registry

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Manifest schema. Each builtin collection ships an HCL manifest
// declaring its plugins and function signatures, e.g.:
//
//	plugin "rng" {
//	  function "init_rng" {
//	    handler = "OnRunInitRNG"
//	    param "seed" {
//	      type    = "integer"
//	      default = -1
//	    }
//	    returns "seed" { type = "integer" }
//	    returns "rng"  { type = "rngenerator" }
//	  }
//	}
//
// A function with a single implicit result uses a `result` block instead
// of named `returns` blocks.
type manifestFile struct {
	Plugins []*manifestPlugin `hcl:"plugin,block"`
}

type manifestPlugin struct {
	Name      string              `hcl:"name,label"`
	Functions []*manifestFunction `hcl:"function,block"`
}

type manifestFunction struct {
	Name    string            `hcl:"name,label"`
	Handler string            `hcl:"handler"`
	Params  []*manifestParam  `hcl:"param,block"`
	Result  *manifestResult   `hcl:"result,block"`
	Returns []*manifestReturn `hcl:"returns,block"`
}

type manifestParam struct {
	Name     string     `hcl:"name,label"`
	Type     string     `hcl:"type"`
	Required *bool      `hcl:"required,optional"`
	Default  *cty.Value `hcl:"default,optional"`
}

type manifestResult struct {
	Type string `hcl:"type"`
}

type manifestReturn struct {
	Name string `hcl:"name,label"`
	Type string `hcl:"type"`
}

// RegisterManifest parses an HCL manifest and records the declared
// function signatures under the given collection name.
func (r *Registry) RegisterManifest(collection, filename string, src string) error {
	file, diags := hclparse.NewParser().ParseHCL([]byte(src), filename)
	if diags.HasErrors() {
		return &SignatureAnalysisError{Subject: collection, Err: diags}
	}
	var mf manifestFile
	if diags := gohcl.DecodeBody(file.Body, nil, &mf); diags.HasErrors() {
		return &SignatureAnalysisError{Subject: collection, Err: diags}
	}

	for _, plugin := range mf.Plugins {
		for _, mfn := range plugin.Functions {
			fn, err := buildFunction(collection, plugin.Name, mfn)
			if err != nil {
				return err
			}
			if err := r.addFunction(fn); err != nil {
				return &SignatureAnalysisError{Subject: fn.Ref().String(), Err: err}
			}
		}
	}
	return nil
}

// MustRegisterManifest is RegisterManifest for module init paths, where a
// bad builtin manifest is a programming error.
func (r *Registry) MustRegisterManifest(collection, filename string, src string) {
	if err := r.RegisterManifest(collection, filename, src); err != nil {
		panic(err)
	}
}

func buildFunction(collection, plugin string, mfn *manifestFunction) (*Function, error) {
	subject := fmt.Sprintf("%s.%s.%s", collection, plugin, mfn.Name)

	if mfn.Result != nil && len(mfn.Returns) > 0 {
		return nil, &SignatureAnalysisError{
			Subject: subject,
			Err:     fmt.Errorf("declares both a single result and named returns"),
		}
	}

	fn := &Function{
		Collection: collection,
		Plugin:     plugin,
		Name:       mfn.Name,
		Handler:    mfn.Handler,
	}

	for _, mp := range mfn.Params {
		p := &Param{
			Name:    mp.Name,
			Type:    mp.Type,
			Default: cty.NilVal,
		}
		if mp.Default != nil {
			p.Default = *mp.Default
		}
		if mp.Required != nil {
			p.Required = *mp.Required
		} else {
			// Parameters without a default are required by default.
			p.Required = mp.Default == nil
		}
		fn.Params = append(fn.Params, p)
	}

	if mfn.Result != nil {
		fn.Returns = append(fn.Returns, &Return{Type: mfn.Result.Type})
	}
	for _, mr := range mfn.Returns {
		if mr.Name == "" {
			return nil, &SignatureAnalysisError{
				Subject: subject,
				Err:     fmt.Errorf("named return must not have an empty name"),
			}
		}
		fn.Returns = append(fn.Returns, &Return{Name: mr.Name, Type: mr.Type})
	}
	return fn, nil
}
