// Package httpx provides the builtin `httpx` collection for making HTTP
// requests from graph steps.
package httpx

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"resty.dev/v3"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/ctyconv"
	"github.com/vk/taskgrid/internal/registry"
)

const manifest = `
plugin "client" {
  function "http_request" {
    handler = "OnRunHttpRequest"
    param "method" {
      type    = "string"
      default = "GET"
    }
    param "url" { type = "string" }
    param "headers" {
      type     = "mapping<string, string>"
      required = false
    }
    param "body" {
      type     = "string"
      required = false
    }
    returns "status_code" { type = "integer" }
    returns "body"        { type = "string" }
  }
}
`

// Module implements the registry.Module interface for this collection.
type Module struct {
	// Client overrides the default resty client, used by tests to point
	// requests at a local server.
	Client *resty.Client
}

// Register installs the manifest and the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.MustRegisterManifest("httpx", "httpx.hcl", manifest)
	r.RegisterHandler("OnRunHttpRequest", m.OnRunHttpRequest)
}

// OnRunHttpRequest performs one HTTP request and returns the status code
// and the response body.
func (m *Module) OnRunHttpRequest(ctx context.Context, args map[string]cty.Value) (cty.Value, error) {
	method, err := ctyconv.StringArg(args, "method")
	if err != nil {
		return cty.NilVal, err
	}
	url, err := ctyconv.StringArg(args, "url")
	if err != nil {
		return cty.NilVal, err
	}
	headers, err := ctyconv.StringMapArg(args, "headers")
	if err != nil {
		return cty.NilVal, err
	}

	client := m.Client
	if client == nil {
		client = resty.New()
		defer client.Close()
	}

	ctxlog.FromContext(ctx).Info("Making HTTP request", "method", method, "url", url)

	req := client.R().SetContext(ctx).SetHeaders(headers)
	if body, ok := args["body"]; ok && !body.IsNull() {
		req.SetBody(body.AsString())
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return cty.NilVal, fmt.Errorf("request failed: %w", err)
	}

	ctxlog.FromContext(ctx).Info("Received HTTP response", "status", resp.Status())

	return cty.ObjectVal(map[string]cty.Value{
		"status_code": cty.NumberIntVal(int64(resp.StatusCode())),
		"body":        cty.StringVal(resp.String()),
	}), nil
}
